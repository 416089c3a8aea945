package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const userIDLocal = "userID"

// RequireUser reads the authenticated user ID from the X-User-ID header set
// by the gateway and stores it in locals. Requests without it are rejected.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || id == 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
		}
		c.Locals(userIDLocal, uint(id))
		return c.Next()
	}
}

// currentUserID returns the acting user stored by RequireUser, 0 when the
// route was mounted without it.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals(userIDLocal).(uint); ok {
		return id
	}
	return 0
}
