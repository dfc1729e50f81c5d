package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tastetab/internal/middleware"
)

// AdminDashboard confirms an admin session.
func AdminDashboard(c *fiber.Ctx) error {
	return welcome(c, "Welcome to Admin Dashboard")
}

// UserDashboard confirms a user session.
func UserDashboard(c *fiber.Ctx) error {
	return welcome(c, "Welcome to User Dashboard")
}

func welcome(c *fiber.Ctx, message string) error {
	claims, _ := middleware.GetClaims(c)
	return c.JSON(fiber.Map{"message": message, "user": claims})
}

// Health answers the root liveness probe.
func Health(c *fiber.Ctx) error {
	return c.SendString("Server is running...")
}
