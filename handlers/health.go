package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/shDavlatbek/uni-list/database"
	"github.com/shDavlatbek/uni-list/utils/response"
)

// HandleCheckHealth reports whether the service and its database are up.
func HandleCheckHealth(c *fiber.Ctx, store database.Storage) error {
	if err := store.HealthCheck(); err != nil {
		return response.ServiceUnavailable(c, "database unreachable")
	}
	return response.Success(c, fiber.Map{"status": "ok"})
}
