package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

// APIError is a client-facing failure. Field names the offending request
// field when there is one.
type APIError struct {
	Status  int
	Message string
	Field   string
	Details string
}

func (e *APIError) Error() string {
	return e.Message
}

func badRequest(field, message string) *APIError {
	return &APIError{Status: fiber.StatusBadRequest, Message: message, Field: field}
}

func notFound(field, message string) *APIError {
	return &APIError{Status: fiber.StatusNotFound, Message: message, Field: field}
}

type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

// ErrorHandler renders every error returned by a handler as JSON.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.Status).JSON(errorBody{
			Error:   apiErr.Message,
			Field:   apiErr.Field,
			Details: apiErr.Details,
		})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(errorBody{Error: fiberErr.Message})
	}

	slog.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(errorBody{Error: "Internal server error"})
}
