package middleware_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Yusufdydx/vv-ng/internal/config"
	"github.com/Yusufdydx/vv-ng/internal/middleware"
)

func testApp(cfg *config.Config) *fiber.App {
	app := fiber.New()
	app.Get("/me", middleware.Auth(cfg), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": middleware.GetUserID(c)})
	})
	return app
}

func TestAuthRoundTrip(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test-secret"
	app := testApp(cfg)

	token, err := middleware.NewToken(cfg, 42, time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test-secret"
	app := testApp(cfg)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("missing token status = %d, want 401", resp.StatusCode)
	}

	other := &config.Config{}
	other.Server.JWTSecret = "different-secret"
	token, err := middleware.NewToken(other, 42, time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("forged token status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.JWTSecret = "test-secret"
	app := testApp(cfg)

	token, err := middleware.NewToken(cfg, 42, -time.Minute)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expired token status = %d, want 401", resp.StatusCode)
	}
}
