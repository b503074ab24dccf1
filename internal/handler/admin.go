package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Yusufdydx/vv-ng/internal/middleware"
	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

type AdminHandler struct {
	repo          *repository.Repository
	balanceSvc    *service.BalanceService
	moderationSvc *service.ModerationService
}

func NewAdminHandler(repo *repository.Repository, balanceSvc *service.BalanceService, moderationSvc *service.ModerationService) *AdminHandler {
	return &AdminHandler{
		repo:          repo,
		balanceSvc:    balanceSvc,
		moderationSvc: moderationSvc,
	}
}

// GetStats returns headline numbers for the admin dashboard.
func (h *AdminHandler) GetStats(c *fiber.Ctx) error {
	balance, err := h.balanceSvc.GetPlatformBalance(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get platform balance",
		})
	}

	total, err := h.repo.CountTransactions(c.Context(), "")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count transactions",
		})
	}
	pending, err := h.repo.CountTransactions(c.Context(), model.StatusPending)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to count transactions",
		})
	}

	return c.JSON(fiber.Map{
		"platform_balance":     balance,
		"total_transactions":   total,
		"pending_transactions": pending,
	})
}

// GetPlatformBalance returns the platform-wide derived balance.
func (h *AdminHandler) GetPlatformBalance(c *fiber.Ctx) error {
	balance, err := h.balanceSvc.GetPlatformBalance(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get platform balance",
		})
	}

	return c.JSON(fiber.Map{
		"balance":  balance,
		"currency": model.DefaultCurrency,
	})
}

// ListPendingTransactions lists transactions awaiting review.
func (h *AdminHandler) ListPendingTransactions(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	transactions, err := h.moderationSvc.PendingTransactions(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get pending transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
	})
}

// ApproveTransaction finalizes a pending transaction.
func (h *AdminHandler) ApproveTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("txn_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid transaction id",
		})
	}

	txn, err := h.moderationSvc.ApproveTransaction(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTransactionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
		case errors.Is(err, repository.ErrAlreadyFinalized):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "transaction already finalized"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to approve transaction: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"transaction": txn,
	})
}

type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectTransaction rejects a pending transaction with a reason.
func (h *AdminHandler) RejectTransaction(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("txn_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid transaction id",
		})
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.moderationSvc.RejectTransaction(c.Context(), id, req.Reason); err != nil {
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rejection reason is required"})
		case errors.Is(err, repository.ErrTransactionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
		case errors.Is(err, repository.ErrAlreadyFinalized):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "transaction already finalized"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to reject transaction: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// ListPendingDeposits lists manual deposits awaiting review.
func (h *AdminHandler) ListPendingDeposits(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	deposits, err := h.moderationSvc.PendingDeposits(c.Context(), limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get pending deposits",
		})
	}

	return c.JSON(fiber.Map{
		"deposits": deposits,
	})
}

type ApproveDepositRequest struct {
	Notes string `json:"notes,omitempty"`
}

// ApproveDeposit approves a manual deposit and credits the claimed
// amount in the same database transaction.
func (h *AdminHandler) ApproveDeposit(c *fiber.Ctx) error {
	reviewerID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Params("deposit_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid deposit id",
		})
	}

	var req ApproveDepositRequest
	_ = c.BodyParser(&req)

	txn, err := h.moderationSvc.ApproveDeposit(c.Context(), id, reviewerID, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDepositNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "deposit not found"})
		case errors.Is(err, repository.ErrAlreadyFinalized):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "deposit already reviewed"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to approve deposit: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"transaction": txn,
	})
}

// RejectDeposit rejects a manual deposit with a reason. No ledger row
// is created.
func (h *AdminHandler) RejectDeposit(c *fiber.Ctx) error {
	reviewerID := middleware.GetUserID(c)

	id, err := uuid.Parse(c.Params("deposit_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid deposit id",
		})
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.moderationSvc.RejectDeposit(c.Context(), id, reviewerID, req.Reason); err != nil {
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "rejection reason is required"})
		case errors.Is(err, repository.ErrDepositNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "deposit not found"})
		case errors.Is(err, repository.ErrAlreadyFinalized):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "deposit already reviewed"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to reject deposit: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// GetSettings returns all site settings, fee percentages included.
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.repo.GetAllSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get settings",
		})
	}

	return c.JSON(fiber.Map{
		"settings": settings,
	})
}

type SetSettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SetSetting updates one site setting. Fee changes apply only to
// transactions created afterwards; existing rows keep the percentage
// captured in their metadata.
func (h *AdminHandler) SetSetting(c *fiber.Ctx) error {
	var req SetSettingRequest
	if err := c.BodyParser(&req); err != nil || req.Key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.repo.SetSetting(c.Context(), req.Key, req.Value); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update setting",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// ListPaymentMethods returns all payment methods, inactive included.
func (h *AdminHandler) ListPaymentMethods(c *fiber.Ctx) error {
	methods, err := h.repo.ListPaymentMethods(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get payment methods",
		})
	}

	return c.JSON(fiber.Map{
		"payment_methods": methods,
	})
}

type CreatePaymentMethodRequest struct {
	Name         string `json:"name"`
	MethodType   string `json:"method_type"`
	IsActive     *bool  `json:"is_active,omitempty"`
	Instructions string `json:"instructions,omitempty"`
}

// CreatePaymentMethod registers a new payment method.
func (h *AdminHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	var req CreatePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	methodType := model.PaymentMethodType(req.MethodType)
	if methodType != model.MethodTypeAuto && methodType != model.MethodTypeManual {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "method_type must be 'auto' or 'manual'",
		})
	}

	method := &model.PaymentMethod{
		Name:         req.Name,
		MethodType:   methodType,
		IsActive:     true,
		Instructions: req.Instructions,
	}
	if req.IsActive != nil {
		method.IsActive = *req.IsActive
	}

	if err := h.repo.CreatePaymentMethod(c.Context(), method); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create payment method",
		})
	}

	return c.JSON(fiber.Map{
		"payment_method": method,
	})
}

type TogglePaymentMethodRequest struct {
	IsActive bool `json:"is_active"`
}

// TogglePaymentMethod activates or deactivates a payment method.
func (h *AdminHandler) TogglePaymentMethod(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("method_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid payment method id",
		})
	}

	var req TogglePaymentMethodRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := h.repo.SetPaymentMethodActive(c.Context(), id, req.IsActive); err != nil {
		if errors.Is(err, repository.ErrPaymentMethodNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "payment method not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to update payment method",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
