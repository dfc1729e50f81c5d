package handlers

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tastetab/internal/config"
	"github.com/example/tastetab/internal/models"
	"github.com/example/tastetab/internal/store"
	"github.com/example/tastetab/internal/utils"
)

// AuthHandler bundles dependencies for registration and login.
type AuthHandler struct {
	users store.UserStore
	cfg   *config.Config
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(users store.UserStore, cfg *config.Config) *AuthHandler {
	return &AuthHandler{users: users, cfg: cfg}
}

type registerRequest struct {
	Username        string `json:"username" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Role            string `json:"role" validate:"required"`
	Phone           string `json:"phone"`
}

// Register creates a new account. No token is issued; the client logs in
// separately.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if req.Password != req.ConfirmPassword {
		return badRequest("confirmPassword", "Passwords do not match")
	}
	role := models.Role(req.Role)
	if !role.Valid() {
		return badRequest("role", `Invalid role. Must be "admin" or "user"`)
	}
	if req.Phone != "" && !utils.ValidPhone(req.Phone) {
		return badRequest("phone", "Phone must be a valid 10-digit number")
	}

	ctx := c.UserContext()
	existing, err := h.users.FindConflictingUser(ctx, req.Username, req.Email, req.Phone)
	switch {
	case err == nil:
		field := store.ConflictField(existing, req.Username, req.Email, req.Phone)
		return alreadyExists(field)
	case !errors.Is(err, store.ErrNotFound):
		return err
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if req.Phone != "" {
		phone := req.Phone
		user.Phone = &phone
	}

	if err := h.users.CreateUser(ctx, user); err != nil {
		var dup *store.DuplicateError
		if errors.As(err, &dup) {
			return alreadyExists(dup.Field)
		}
		return err
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

func alreadyExists(field string) *APIError {
	if field == "" {
		return badRequest("", "User already exists")
	}
	return badRequest(field, strings.ToUpper(field[:1])+field[1:]+" already exists")
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login checks the credentials and issues a session token. Unknown email and
// wrong password produce the same response.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	invalid := &APIError{Status: fiber.StatusUnauthorized, Message: "Invalid credentials", Field: "password"}

	user, err := h.users.FindUserByEmail(c.UserContext(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return invalid
		}
		return err
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		return invalid
	}

	token, err := utils.GenerateToken(h.cfg.JWTSecret, user.ID, user.Role, h.cfg.TokenExpires)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"token":   token,
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
