package university

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/handlers/serialize"
	"github.com/shDavlatbek/uni-list/model"
	"github.com/shDavlatbek/uni-list/utils/query"
	"github.com/shDavlatbek/uni-list/utils/response"
)

// UniversityHandler handles university-related requests
type UniversityHandler struct {
	db *gorm.DB
}

// NewUniversityHandler creates a new university handler
func NewUniversityHandler(db *gorm.DB) *UniversityHandler {
	return &UniversityHandler{db: db}
}

// ListUniversities handles GET /api/v1/universities
func (h *UniversityHandler) ListUniversities(c *fiber.Ctx) error {
	filter := query.ParseUniversityFilter(c)

	var total int64
	if err := filter.Apply(h.db).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count universities")
	}

	pagination := response.CalculatePagination(filter.Page, query.UniversityPageSize, total)
	offset := (pagination.CurrentPage - 1) * pagination.PerPage

	var universities []model.University
	err := filter.OrderBy(filter.Apply(h.db)).
		Preload("InstitutionCategory").
		Preload("Location").
		Preload("EducationTypes").
		Preload("EducationLanguages").
		Preload("Degrees").
		Limit(pagination.PerPage).
		Offset(offset).
		Find(&universities).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch universities")
	}

	items := make([]serialize.UniversityListItem, len(universities))
	for i := range universities {
		items[i] = serialize.UniversityItem(&universities[i])
	}

	return response.Paginated(c, items, pagination)
}

// GetUniversity handles GET /api/v1/universities/:slug
func (h *UniversityHandler) GetUniversity(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var university model.University
	err := h.db.
		Preload("InstitutionCategory").
		Preload("Location").
		Preload("EducationTypes").
		Preload("EducationLanguages").
		Preload("Degrees").
		Preload("GalleryItems").
		Preload("Directions").
		Where("slug = ?", slug).
		First(&university).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return response.NotFound(c, "University not found")
		}
		return response.InternalServerError(c, "Failed to fetch university")
	}

	return response.Success(c, university)
}
