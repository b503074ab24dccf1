package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/middleware"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

// GetPaymentMethods lists active payment methods plus the bank details
// for manual transfers.
func (h *Handler) GetPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.paymentSvc.GetActivePaymentMethods(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get payment methods",
		})
	}

	bank, err := h.paymentSvc.GetManualBankDetails(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get bank details",
		})
	}

	return c.JSON(fiber.Map{
		"payment_methods": methods,
		"manual_account":  bank,
	})
}

type ManualDepositRequest struct {
	Amount        string    `json:"amount"`
	Screenshot    string    `json:"screenshot"`
	DepositorName string    `json:"depositor_name"`
	DepositDate   time.Time `json:"deposit_date"`
}

// SubmitManualDeposit records a proof-of-payment for review.
func (h *Handler) SubmitManualDeposit(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req ManualDepositRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid amount",
		})
	}
	if req.DepositDate.IsZero() {
		req.DepositDate = time.Now()
	}

	deposit, err := h.paymentSvc.SubmitManualDeposit(c.Context(), userID, amount, req.Screenshot, req.DepositorName, req.DepositDate)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
		case errors.Is(err, service.ErrDepositorNameRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "depositor name is required"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to submit deposit: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"deposit": deposit,
	})
}

// GetManualDeposits lists the user's deposit submissions.
func (h *Handler) GetManualDeposits(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	deposits, err := h.paymentSvc.GetDeposits(c.Context(), userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get deposits",
		})
	}

	return c.JSON(fiber.Map{
		"deposits": deposits,
	})
}
