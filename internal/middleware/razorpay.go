package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tastetab/internal/services"
)

// RazorpaySignatureHeader carries the webhook body signature.
const RazorpaySignatureHeader = "X-Razorpay-Signature"

// RazorpayWebhookAuth verifies the webhook body against the shared secret.
// Without a configured secret every webhook is refused with 503.
func RazorpayWebhookAuth(webhookSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if webhookSecret == "" {
			return fiber.NewError(fiber.StatusServiceUnavailable, "webhook secret not configured")
		}

		signature := c.Get(RazorpaySignatureHeader)
		if signature == "" || !services.VerifyWebhookSignature(c.Body(), signature, webhookSecret) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid webhook signature")
		}

		return c.Next()
	}
}
