package query

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shDavlatbek/uni-list/database"
	"github.com/shDavlatbek/uni-list/model"
)

func ptr[T any](v T) *T { return &v }

// seedListingData builds a small fixed dataset: two locations, two
// institution categories, two education types and three universities with
// directions hanging off the first two.
func seedListingData(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	require.NoError(t, db.Create(&[]model.Location{
		{ID: 1, Name: "Toshkent"},
		{ID: 2, Name: "Samarqand"},
	}).Error)
	require.NoError(t, db.Create(&[]model.InstitutionCategory{
		{ID: 1, Name: "Davlat"},
		{ID: 2, Name: "Xususiy"},
	}).Error)
	require.NoError(t, db.Create(&[]model.EducationType{
		{ID: 1, Name: "Kunduzgi"},
		{ID: 2, Name: "Sirtqi"},
	}).Error)
	require.NoError(t, db.Create(&[]model.Category{
		{ID: 1, Name: "IT"},
		{ID: 2, Name: "Huquq"},
	}).Error)

	require.NoError(t, db.Create(&model.University{
		ID: 1, FullName: "Axborot Texnologiyalari Universiteti", Slug: "atu",
		LocationID: ptr(uint(1)), InstitutionCategoryID: ptr(uint(1)),
		MinimalTuitionFee: ptr(uint(10000000)), MaximalTuitionFee: ptr(uint(20000000)),
		HasGrant: true, IsOpenForAdmission: true,
		EducationTypes: []model.EducationType{{ID: 1}, {ID: 2}},
	}).Error)
	require.NoError(t, db.Create(&model.University{
		ID: 2, FullName: "Biznes Maktabi", Slug: "biznes-maktabi",
		LocationID: ptr(uint(2)), InstitutionCategoryID: ptr(uint(2)),
		MinimalTuitionFee: ptr(uint(5000000)), MaximalTuitionFee: ptr(uint(8000000)),
		EducationTypes: []model.EducationType{{ID: 1}},
	}).Error)
	require.NoError(t, db.Create(&model.University{
		ID: 3, FullName: "Chekka Universitet", Slug: "chekka",
	}).Error)

	require.NoError(t, db.Create(&model.Direction{
		ID: 1, UniversityID: 1, DirectionName: "Dasturiy Injiniring",
		DirectionSlug: "atu-dasturiy-injiniring", Status: "active",
		CategoryID: ptr(uint(1)), HasStipend: true,
		EducationTypes: []model.EducationType{{ID: 1}, {ID: 2}},
	}).Error)
	require.NoError(t, db.Create(&model.Direction{
		ID: 2, UniversityID: 2, DirectionName: "Menejment",
		DirectionSlug: "biznes-maktabi-menejment", Status: "active",
		CategoryID: ptr(uint(2)),
	}).Error)

	return db
}

func universityIDs(t *testing.T, f UniversityFilter, db *gorm.DB) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, f.OrderBy(f.Apply(db)).Pluck("universities.id", &ids).Error)
	return ids
}

func directionIDs(t *testing.T, f DirectionFilter, db *gorm.DB) []uint {
	t.Helper()
	var ids []uint
	require.NoError(t, f.OrderBy(f.Apply(db)).Pluck("directions.id", &ids).Error)
	return ids
}

func TestUniversityFilterSearch(t *testing.T) {
	db := seedListingData(t)

	ids := universityIDs(t, UniversityFilter{Search: "TEXNOLOGIYA"}, db)
	assert.Equal(t, []uint{1}, ids)

	ids = universityIDs(t, UniversityFilter{Search: "zzz"}, db)
	assert.Empty(t, ids)
}

func TestUniversityFilterTaxonomyByIDAndName(t *testing.T) {
	db := seedListingData(t)

	// Numeric value matches the foreign key directly.
	ids := universityIDs(t, UniversityFilter{Location: "2"}, db)
	assert.Equal(t, []uint{2}, ids)

	// Text matches the taxonomy name by substring, case-insensitive.
	ids = universityIDs(t, UniversityFilter{Location: "toshk"}, db)
	assert.Equal(t, []uint{1}, ids)

	ids = universityIDs(t, UniversityFilter{InstitutionCategory: "xususiy"}, db)
	assert.Equal(t, []uint{2}, ids)
}

func TestUniversityFilterRelationSetDeduplicates(t *testing.T) {
	db := seedListingData(t)

	// University 1 matches both requested education types but must come
	// back exactly once.
	ids := universityIDs(t, UniversityFilter{EducationTypes: []uint{1, 2}}, db)
	assert.Equal(t, []uint{1, 2}, ids)

	var total int64
	f := UniversityFilter{EducationTypes: []uint{1, 2}}
	require.NoError(t, f.Apply(db).Count(&total).Error)
	assert.EqualValues(t, 2, total)
}

func TestUniversityFilterPriceAndFlags(t *testing.T) {
	db := seedListingData(t)

	ids := universityIDs(t, UniversityFilter{MinPrice: ptr(uint(9000000))}, db)
	assert.Equal(t, []uint{1}, ids)

	ids = universityIDs(t, UniversityFilter{MaxPrice: ptr(uint(9000000))}, db)
	assert.Equal(t, []uint{2}, ids)

	ids = universityIDs(t, UniversityFilter{HasGrant: ptr(true)}, db)
	assert.Equal(t, []uint{1}, ids)
}

func TestUniversityFilterSorts(t *testing.T) {
	db := seedListingData(t)

	ids := universityIDs(t, UniversityFilter{Sort: SortPriceAsc}, db)
	// NULL fees sort first in sqlite ASC; the priced rows follow in order.
	assert.Equal(t, []uint{3, 2, 1}, ids)

	ids = universityIDs(t, UniversityFilter{Sort: SortPriceDesc}, db)
	assert.Equal(t, []uint{1, 2, 3}, ids)

	ids = universityIDs(t, UniversityFilter{}, db)
	assert.Equal(t, []uint{1, 2, 3}, ids) // alphabetical by name
}

func TestDirectionFilterInheritsUniversityFilters(t *testing.T) {
	db := seedListingData(t)

	// Search reaches both the direction and its university name.
	ids := directionIDs(t, DirectionFilter{Search: "biznes"}, db)
	assert.Equal(t, []uint{2}, ids)

	ids = directionIDs(t, DirectionFilter{Location: "Toshkent"}, db)
	assert.Equal(t, []uint{1}, ids)

	ids = directionIDs(t, DirectionFilter{UniversityID: ptr(uint(2))}, db)
	assert.Equal(t, []uint{2}, ids)

	ids = directionIDs(t, DirectionFilter{Category: "IT"}, db)
	assert.Equal(t, []uint{1}, ids)

	ids = directionIDs(t, DirectionFilter{HasStipend: ptr(true)}, db)
	assert.Equal(t, []uint{1}, ids)

	ids = directionIDs(t, DirectionFilter{EducationTypes: []uint{1, 2}}, db)
	assert.Equal(t, []uint{1}, ids)
}

func TestParseUniversityFilterDropsGarbage(t *testing.T) {
	app := fiber.New()

	var parsed UniversityFilter
	app.Get("/", func(c *fiber.Ctx) error {
		parsed = ParseUniversityFilter(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET",
		"/?min_price=abc&max_price=-5&has_grant=maybe&sort=bogus&edu_type=1&edu_type=x&edu_type=2&page=3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Nil(t, parsed.MinPrice)
	assert.Nil(t, parsed.MaxPrice)
	assert.Nil(t, parsed.HasGrant)
	assert.Equal(t, SortName, parsed.Sort)
	assert.Equal(t, []uint{1, 2}, parsed.EducationTypes)
	assert.Equal(t, 3, parsed.Page)
}

func TestParseDirectionFilterQueryAlias(t *testing.T) {
	app := fiber.New()

	var parsed DirectionFilter
	app.Get("/", func(c *fiber.Ctx) error {
		parsed = ParseDirectionFilter(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "/?query=huquq&has_stipend=true&university_id=7", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, "huquq", parsed.Search)
	require.NotNil(t, parsed.HasStipend)
	assert.True(t, *parsed.HasStipend)
	require.NotNil(t, parsed.UniversityID)
	assert.EqualValues(t, 7, *parsed.UniversityID)
}
