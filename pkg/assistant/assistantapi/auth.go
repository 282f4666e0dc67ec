package assistantapi

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
)

// TokenAuth rejects requests that do not present token, either as a bearer
// token or in X-API-Key. An empty token disables the check.
func TokenAuth(token string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token == "" {
			return c.Next()
		}
		presented := extractToken(c)
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			return errx.New(errx.CodeAuth, "missing or invalid bridge token")
		}
		return c.Next()
	}
}

func extractToken(c *fiber.Ctx) string {
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1]
		}
	}
	return c.Get("X-API-Key")
}
