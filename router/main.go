package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/database"
	"github.com/shDavlatbek/uni-list/handlers"
	direction_handlers "github.com/shDavlatbek/uni-list/handlers/direction"
	filter_handlers "github.com/shDavlatbek/uni-list/handlers/filters"
	university_handlers "github.com/shDavlatbek/uni-list/handlers/university"
	"github.com/shDavlatbek/uni-list/utils"
	"github.com/shDavlatbek/uni-list/utils/cache"
)

// SetupRoutes registers all routes. redisCache is the process-wide client
// (shared with the cron jobs) and may be nil, in which case the filter
// options are served without caching.
func SetupRoutes(app *fiber.App, store database.Storage, redisCache *cache.RedisCache) {
	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	universityHandler := university_handlers.NewUniversityHandler(db)
	directionHandler := direction_handlers.NewDirectionHandler(db)
	filterHandler := filter_handlers.NewFilterHandler(db, redisCache)

	// Health check endpoint (public)
	app.Get("/health", utils.MakeHTTPHandleFunc(handlers.HandleCheckHealth, store))

	// API v1 group
	api := app.Group("/api/v1")

	// Universities routes
	universities := api.Group("/universities")
	universities.Get("/", universityHandler.ListUniversities)
	universities.Get("/:slug", universityHandler.GetUniversity)

	// Directions routes
	directions := api.Group("/directions")
	directions.Get("/", directionHandler.ListDirections)
	directions.Get("/:slug", directionHandler.GetDirection)

	// Filter options for listing pages
	api.Get("/filters", filterHandler.GetFilterOptions)
}
