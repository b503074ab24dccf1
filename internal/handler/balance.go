package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Yusufdydx/vv-ng/internal/middleware"
	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

// GetBalance returns the user's derived balance.
func (h *Handler) GetBalance(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	balance, err := h.balanceSvc.GetBalance(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get balance",
		})
	}

	return c.JSON(fiber.Map{
		"balance":  balance,
		"currency": model.DefaultCurrency,
	})
}

// GetTransactions returns the user's transaction history.
func (h *Handler) GetTransactions(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	transactions, err := h.balanceSvc.GetTransactions(c.Context(), userID, limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get transactions",
		})
	}

	return c.JSON(fiber.Map{
		"transactions": transactions,
	})
}

// GetTransaction looks up one of the user's transactions by its
// ledger reference.
func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	txn, err := h.balanceSvc.GetTransaction(c.Context(), userID, c.Params("reference"))
	if err != nil {
		if errors.Is(err, repository.ErrTransactionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "transaction not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get transaction",
		})
	}

	return c.JSON(fiber.Map{
		"transaction": txn,
	})
}

type TransferRequest struct {
	Recipient   string `json:"recipient"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

// Transfer moves money to another user.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req TransferRequest
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

	result, err := h.transferSvc.Transfer(c.Context(), userID, req.Recipient, amount, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
		case errors.Is(err, service.ErrInvalidRecipient):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "recipient not found or invalid"})
		case errors.Is(err, repository.ErrInsufficientBalance):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient balance"})
		case errors.Is(err, service.ErrConfigurationUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "fee configuration unavailable"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "transfer failed: " + err.Error(),
		})
	}

	balance, _ := h.balanceSvc.GetBalance(c.Context(), userID)

	return c.JSON(fiber.Map{
		"success":     true,
		"reference":   result.Debit.Reference,
		"new_balance": balance,
	})
}

type WithdrawRequest struct {
	Amount          string `json:"amount"`
	PaymentMethodID string `json:"payment_method_id,omitempty"`
}

// Withdraw creates a pending withdrawal request.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req WithdrawRequest
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

	var methodID *uuid.UUID
	if req.PaymentMethodID != "" {
		id, err := uuid.Parse(req.PaymentMethodID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid payment method id",
			})
		}
		methodID = &id
	}

	txn, err := h.paymentSvc.RequestWithdrawal(c.Context(), userID, amount, methodID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
		case errors.Is(err, repository.ErrPaymentMethodNotFound):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "payment method not found or inactive"})
		case errors.Is(err, repository.ErrInsufficientBalance):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient balance"})
		case errors.Is(err, service.ErrConfigurationUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "fee configuration unavailable"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "withdrawal failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"transaction": txn,
	})
}

type MentorshipPaymentRequest struct {
	MentorID       int64  `json:"mentor_id"`
	Amount         string `json:"amount"`
	ApplicationRef string `json:"application_ref"`
	Title          string `json:"title"`
}

// PayMentorship creates the student's pending payment for a mentorship
// engagement. Funds move only once a reviewer approves it.
func (h *Handler) PayMentorship(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	var req MentorshipPaymentRequest
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

	txn, err := h.paymentSvc.CreateMentorshipPayment(c.Context(), userID, req.MentorID, amount, req.ApplicationRef, req.Title)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
		case errors.Is(err, service.ErrInvalidRecipient):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "mentor not found"})
		case errors.Is(err, repository.ErrInsufficientBalance):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": "insufficient balance"})
		case errors.Is(err, service.ErrConfigurationUnavailable):
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "fee configuration unavailable"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "mentorship payment failed: " + err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"transaction": txn,
	})
}
