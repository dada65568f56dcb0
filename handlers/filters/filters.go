package filters

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/services/catalog"
	"github.com/shDavlatbek/uni-list/utils/cache"
	"github.com/shDavlatbek/uni-list/utils/response"
)

// FilterHandler serves the filter-options payload for listing pages.
type FilterHandler struct {
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewFilterHandler creates a new filter handler. cache may be nil.
func NewFilterHandler(db *gorm.DB, redisCache *cache.RedisCache) *FilterHandler {
	return &FilterHandler{db: db, cache: redisCache}
}

// GetFilterOptions handles GET /api/v1/filters
func (h *FilterHandler) GetFilterOptions(c *fiber.Ctx) error {
	opts, err := catalog.CachedOptions(c.Context(), h.db, h.cache)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch filter options")
	}
	return response.Success(c, opts)
}
