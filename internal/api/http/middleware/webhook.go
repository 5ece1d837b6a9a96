package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v3"
)

const HeaderWebhookToken = "X-Webhook-Token"

// WebhookToken rejects requests that do not carry the shared secret. An empty
// secret disables the check.
func WebhookToken(secret string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if secret == "" {
			return c.Next()
		}
		got := c.Get(HeaderWebhookToken)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}
