package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Yusufdydx/vv-ng/internal/middleware"
	"github.com/Yusufdydx/vv-ng/internal/model"
	"github.com/Yusufdydx/vv-ng/internal/repository"
	"github.com/Yusufdydx/vv-ng/internal/service"
)

// GetMe returns the authenticated user's profile together with the
// derived balance. The email is masked for display.
func (h *Handler) GetMe(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "authentication required",
		})
	}

	user, err := h.userSvc.GetUser(c.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "user not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get user",
		})
	}

	balance, err := h.balanceSvc.GetBalance(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get balance",
		})
	}

	rate, err := h.balanceSvc.GetDisplayRate(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to get display rate",
		})
	}

	return c.JSON(fiber.Map{
		"id":              user.ID,
		"username":        user.Username,
		"email":           service.MaskEmail(user.Email),
		"role":            user.Role,
		"balance":         balance,
		"display_balance": service.ToDisplayCurrency(balance, model.DefaultCurrency, rate),
		"currency":        model.DefaultCurrency,
	})
}

type RegisterUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisterUser creates a member account. Admin only.
func (h *Handler) RegisterUser(c *fiber.Ctx) error {
	var req RegisterUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	user, err := h.userSvc.Register(c.Context(), req.Username, req.Email)
	if err != nil {
		if errors.Is(err, service.ErrUsernameRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "username is required",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create user",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}
