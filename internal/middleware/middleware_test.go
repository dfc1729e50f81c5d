package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/services"
	"github.com/example/tastetab/internal/utils"
)

const testSecret = "test-secret"

func gatedApp(roles ...models.Role) *fiber.App {
	app := fiber.New()
	app.Get("/gated", RequireRole(testSecret, roles...), func(c *fiber.Ctx) error {
		claims, ok := GetClaims(c)
		if !ok {
			return fiber.ErrInternalServerError
		}
		return c.JSON(claims)
	})
	return app
}

func token(t *testing.T, role models.Role, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateToken(testSecret, uuid.New(), role, ttl)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	return tok
}

func TestRequireRole(t *testing.T) {
	adminToken := token(t, models.RoleAdmin, time.Hour)
	userToken := token(t, models.RoleUser, time.Hour)
	expired := token(t, models.RoleAdmin, -time.Minute)

	tests := []struct {
		name   string
		roles  []models.Role
		header string
		want   int
	}{
		{"missing header", []models.Role{models.RoleAdmin}, "", fiber.StatusUnauthorized},
		{"empty bearer", []models.Role{models.RoleAdmin}, "Bearer ", fiber.StatusUnauthorized},
		{"wrong scheme", []models.Role{models.RoleAdmin}, "Basic " + adminToken, fiber.StatusUnauthorized},
		{"garbage token", []models.Role{models.RoleAdmin}, "Bearer abc.def.ghi", fiber.StatusBadRequest},
		{"expired token", []models.Role{models.RoleAdmin}, "Bearer " + expired, fiber.StatusBadRequest},
		{"user on admin route", []models.Role{models.RoleAdmin}, "Bearer " + userToken, fiber.StatusForbidden},
		{"admin on user route", []models.Role{models.RoleUser}, "Bearer " + adminToken, fiber.StatusForbidden},
		{"admin on admin route", []models.Role{models.RoleAdmin}, "Bearer " + adminToken, fiber.StatusOK},
		{"lowercase scheme", []models.Role{models.RoleAdmin}, "bearer " + adminToken, fiber.StatusOK},
		{"user on shared route", []models.Role{models.RoleAdmin, models.RoleUser}, "Bearer " + userToken, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/gated", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := gatedApp(tt.roles...).Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestRequireRoleStoresClaims(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, models.RoleUser, time.Hour))

	resp, err := gatedApp(models.RoleUser).Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	var claims utils.Claims
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		t.Fatalf("decode claims: %v", err)
	}
	if claims.Role != models.RoleUser || claims.UserID == "" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestInvalidTokenBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.Header.Set("Authorization", "Bearer nope")

	resp, _ := gatedApp(models.RoleAdmin).Test(req)
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	if body["error"] != "Invalid token" || body["details"] == "" {
		t.Errorf("unexpected body %v", body)
	}
}

func TestRazorpayWebhookAuth(t *testing.T) {
	payload := `{"event":"payment.captured"}`

	tests := []struct {
		name      string
		secret    string
		signature string
		want      int
	}{
		{"no secret configured", "", services.Sign([]byte(payload), "whsec"), fiber.StatusServiceUnavailable},
		{"missing signature", "whsec", "", fiber.StatusBadRequest},
		{"bad signature", "whsec", services.Sign([]byte(payload), "other"), fiber.StatusBadRequest},
		{"valid signature", "whsec", services.Sign([]byte(payload), "whsec"), fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Post("/hook", RazorpayWebhookAuth(tt.secret), func(c *fiber.Ctx) error {
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			if tt.signature != "" {
				req.Header.Set(RazorpaySignatureHeader, tt.signature)
			}

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
