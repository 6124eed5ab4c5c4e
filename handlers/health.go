package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/learnhubhq/learnhub-api/database"
)

// HandleCheckHealth reports process and database liveness.
func HandleCheckHealth(store *database.GORMStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"db":     "unreachable",
			})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
