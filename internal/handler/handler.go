package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Yusufdydx/vv-ng/internal/config"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

type Handler struct {
	cfg         *config.Config
	userSvc     *service.UserService
	balanceSvc  *service.BalanceService
	transferSvc *service.TransferService
	paymentSvc  *service.PaymentService
}

func New(
	cfg *config.Config,
	userSvc *service.UserService,
	balanceSvc *service.BalanceService,
	transferSvc *service.TransferService,
	paymentSvc *service.PaymentService,
) *Handler {
	return &Handler{
		cfg:         cfg,
		userSvc:     userSvc,
		balanceSvc:  balanceSvc,
		transferSvc: transferSvc,
		paymentSvc:  paymentSvc,
	}
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
