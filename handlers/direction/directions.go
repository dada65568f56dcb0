package direction

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/handlers/serialize"
	"github.com/shDavlatbek/uni-list/model"
	"github.com/shDavlatbek/uni-list/utils/query"
	"github.com/shDavlatbek/uni-list/utils/response"
)

// DirectionHandler handles direction-related requests
type DirectionHandler struct {
	db *gorm.DB
}

// NewDirectionHandler creates a new direction handler
func NewDirectionHandler(db *gorm.DB) *DirectionHandler {
	return &DirectionHandler{db: db}
}

// ListDirections handles GET /api/v1/directions
func (h *DirectionHandler) ListDirections(c *fiber.Ctx) error {
	filter := query.ParseDirectionFilter(c)

	var total int64
	if err := filter.Apply(h.db).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count directions")
	}

	pagination := response.CalculatePagination(filter.Page, query.DirectionPageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var directions []model.Direction
	err := filter.OrderBy(filter.Apply(h.db)).
		Preload("University").
		Preload("Category").
		Preload("TuitionFees").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&directions).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch directions")
	}

	items := make([]serialize.DirectionListItem, len(directions))
	for i := range directions {
		items[i] = serialize.DirectionItem(&directions[i])
	}

	return response.Paginated(c, items, pagination)
}

// GetDirection handles GET /api/v1/directions/:slug
func (h *DirectionHandler) GetDirection(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var direction model.Direction
	err := h.db.
		Preload("University").
		Preload("University.Location").
		Preload("Category").
		Preload("EducationTypes").
		Preload("EducationLanguages").
		Preload("Degrees").
		Preload("TuitionFees.EducationType").
		Where("direction_slug = ?", slug).
		First(&direction).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "Direction not found")
		}
		return response.InternalServerError(c, "Failed to fetch direction")
	}

	return response.Success(c, direction)
}
