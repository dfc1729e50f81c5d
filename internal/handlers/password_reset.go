package handlers

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tastetab/internal/config"
	"github.com/example/tastetab/internal/services"
	"github.com/example/tastetab/internal/store"
	"github.com/example/tastetab/internal/utils"
)

// PasswordResetHandler manages the emailed one-time code flow.
type PasswordResetHandler struct {
	users  store.UserStore
	mailer services.Mailer
	cfg    *config.Config
	now    func() time.Time
}

// NewPasswordResetHandler constructs a PasswordResetHandler.
func NewPasswordResetHandler(users store.UserStore, mailer services.Mailer, cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{users: users, mailer: mailer, cfg: cfg, now: time.Now}
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword stores a fresh six digit code on the account and mails it.
func (h *PasswordResetHandler) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Field == "email" {
			apiErr.Message = "Valid email is required"
		}
		return err
	}

	ctx := c.UserContext()
	user, err := h.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("email", "Email not found")
		}
		return err
	}

	code, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	if err := h.users.SetUserOTP(ctx, user.ID, code, h.now()); err != nil {
		return err
	}

	if err := h.mailer.Send(ctx, user.Email, services.OTPSubject, services.OTPBody(code)); err != nil {
		slog.Error("otp email failed", "email", user.Email, "error", err)
		return &APIError{
			Status:  fiber.StatusInternalServerError,
			Message: "Failed to send OTP email. Please try again later.",
			Field:   "email",
			Details: err.Error(),
		}
	}

	return c.JSON(fiber.Map{"message": "OTP sent to email"})
}

type verifyOTPRequest struct {
	Email           string `json:"email" validate:"required"`
	OTP             string `json:"otp" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
	ConfirmPassword string `json:"confirmPassword"`
}

// VerifyOTP replaces the password when the code matches. The code is
// single-use.
func (h *PasswordResetHandler) VerifyOTP(c *fiber.Ctx) error {
	var req verifyOTPRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if req.ConfirmPassword != "" && req.ConfirmPassword != req.NewPassword {
		return badRequest("confirmPassword", "Passwords do not match")
	}
	if !utils.StrongPassword(req.NewPassword) {
		return badRequest("newPassword", "Password must be 8+ characters with 1 uppercase, 1 number, 1 special character")
	}

	ctx := c.UserContext()
	user, err := h.users.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("email", "Email not found")
		}
		return err
	}

	if user.OTP == nil || *user.OTP != req.OTP {
		return badRequest("otp", "Invalid OTP")
	}
	if ttl := h.cfg.OTPTTL; ttl > 0 {
		if user.OTPIssuedAt == nil || h.now().Sub(*user.OTPIssuedAt) > ttl {
			return badRequest("otp", "OTP has expired")
		}
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := h.users.ResetUserPassword(ctx, user.ID, passwordHash); err != nil {
		return err
	}

	slog.Info("password reset", "email", user.Email)
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
