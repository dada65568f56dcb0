// Package query translates listing query parameters into gorm predicates.
//
// All active filters combine with AND; values inside one repeated
// parameter combine with OR. Relation-set filters go through IN-subqueries
// on the join tables, so the result set never carries join duplicates and
// needs no DISTINCT pass. Invalid values (non-numeric prices, unknown
// booleans) are dropped, never rejected.
package query

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/model"
)

// Fixed page sizes per listing type.
const (
	UniversityPageSize = 15
	DirectionPageSize  = 20
)

// Recognized sort keys. Anything else falls back to SortName.
const (
	SortName      = "name"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortLocation  = "location"
)

// UniversityFilter holds the recognized parameters of the university listing.
type UniversityFilter struct {
	Search              string
	InstitutionCategory string
	Location            string
	EducationTypes      []uint
	EducationLanguages  []uint
	Degrees             []uint
	HasGrant            *bool
	HasAccomodation     *bool
	OpenForAdmission    *bool
	MinPrice            *uint
	MaxPrice            *uint
	Sort                string
	Page                int
}

// DirectionFilter holds the recognized parameters of the direction listing.
// Institution category and location apply to the owning university.
type DirectionFilter struct {
	Search              string
	UniversityID        *uint
	Category            string
	InstitutionCategory string
	Location            string
	EducationTypes      []uint
	EducationLanguages  []uint
	Degrees             []uint
	HasStipend          *bool
	OpenForAdmission    *bool
	MinPrice            *uint
	MaxPrice            *uint
	Sort                string
	Page                int
}

// ParseUniversityFilter reads the university listing parameters from the
// request. Unrecognized parameters are ignored.
func ParseUniversityFilter(c *fiber.Ctx) UniversityFilter {
	return UniversityFilter{
		Search:              textParam(c, "search", "query"),
		InstitutionCategory: strings.TrimSpace(c.Query("institution_category_id")),
		Location:            strings.TrimSpace(c.Query("location")),
		EducationTypes:      idListParam(c, "edu_type"),
		EducationLanguages:  idListParam(c, "edu_lang"),
		Degrees:             idListParam(c, "degree"),
		HasGrant:            boolParam(c.Query("has_grant")),
		HasAccomodation:     boolParam(c.Query("has_accomodation")),
		OpenForAdmission:    boolParam(c.Query("is_open_for_admission")),
		MinPrice:            uintParam(c.Query("min_price")),
		MaxPrice:            uintParam(c.Query("max_price")),
		Sort:                sortParam(c.Query("sort")),
		Page:                c.QueryInt("page", 1),
	}
}

// ParseDirectionFilter reads the direction listing parameters from the request.
func ParseDirectionFilter(c *fiber.Ctx) DirectionFilter {
	return DirectionFilter{
		Search:              textParam(c, "search", "query"),
		UniversityID:        uintParam(c.Query("university_id")),
		Category:            strings.TrimSpace(c.Query("category")),
		InstitutionCategory: strings.TrimSpace(c.Query("institution_category_id")),
		Location:            strings.TrimSpace(c.Query("location")),
		EducationTypes:      idListParam(c, "edu_type"),
		EducationLanguages:  idListParam(c, "edu_lang"),
		Degrees:             idListParam(c, "degree"),
		HasStipend:          boolParam(c.Query("has_stipend")),
		OpenForAdmission:    boolParam(c.Query("is_open_for_admission")),
		MinPrice:            uintParam(c.Query("min_price")),
		MaxPrice:            uintParam(c.Query("max_price")),
		Sort:                sortParam(c.Query("sort")),
		Page:                c.QueryInt("page", 1),
	}
}

// Apply composes the filter onto a university query.
func (f UniversityFilter) Apply(db *gorm.DB) *gorm.DB {
	q := db.Model(&model.University{})

	if f.Search != "" {
		q = q.Where("LOWER(universities.full_name) LIKE ?", contains(f.Search))
	}

	q = taxonomyRef(q, db, "universities.institution_category_id", "institution_categories", f.InstitutionCategory)
	q = taxonomyRef(q, db, "universities.location_id", "locations", f.Location)

	q = relationSet(q, db, "universities.id", "university_education_types", "university_id", "education_type_id", f.EducationTypes)
	q = relationSet(q, db, "universities.id", "university_education_languages", "university_id", "education_language_id", f.EducationLanguages)
	q = relationSet(q, db, "universities.id", "university_degrees", "university_id", "degree_id", f.Degrees)

	if f.HasGrant != nil {
		q = q.Where("universities.has_grant = ?", *f.HasGrant)
	}
	if f.HasAccomodation != nil {
		q = q.Where("universities.has_accomodation = ?", *f.HasAccomodation)
	}
	if f.OpenForAdmission != nil {
		q = q.Where("universities.is_open_for_admission = ?", *f.OpenForAdmission)
	}

	if f.MinPrice != nil {
		q = q.Where("universities.minimal_tuition_fee >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("universities.maximal_tuition_fee <= ?", *f.MaxPrice)
	}

	return q
}

// OrderBy attaches the ORDER BY clause for the selected sort key. Kept
// separate from Apply so a COUNT can run on the bare filtered query.
func (f UniversityFilter) OrderBy(q *gorm.DB) *gorm.DB {
	switch f.Sort {
	case SortPriceAsc:
		return q.Order("universities.minimal_tuition_fee ASC, universities.full_name ASC")
	case SortPriceDesc:
		return q.Order("universities.maximal_tuition_fee DESC, universities.full_name ASC")
	case SortLocation:
		return q.Joins("LEFT JOIN locations ON locations.id = universities.location_id").
			Order("locations.name ASC, universities.full_name ASC")
	default:
		return q.Order("universities.full_name ASC")
	}
}

// Apply composes the filter onto a direction query. The owning university
// is always joined: search, inherited filters, prices and the default
// ordering all reach through it.
func (f DirectionFilter) Apply(db *gorm.DB) *gorm.DB {
	q := db.Model(&model.Direction{}).
		Joins("JOIN universities ON universities.id = directions.university_id")

	if f.Search != "" {
		pattern := contains(f.Search)
		q = q.Where("LOWER(directions.direction_name) LIKE ? OR LOWER(universities.full_name) LIKE ?", pattern, pattern)
	}
	if f.UniversityID != nil {
		q = q.Where("directions.university_id = ?", *f.UniversityID)
	}

	q = taxonomyRef(q, db, "directions.category_id", "categories", f.Category)
	q = taxonomyRef(q, db, "universities.institution_category_id", "institution_categories", f.InstitutionCategory)
	q = taxonomyRef(q, db, "universities.location_id", "locations", f.Location)

	q = relationSet(q, db, "directions.id", "direction_education_types", "direction_id", "education_type_id", f.EducationTypes)
	q = relationSet(q, db, "directions.id", "direction_education_languages", "direction_id", "education_language_id", f.EducationLanguages)
	q = relationSet(q, db, "directions.id", "direction_degrees", "direction_id", "degree_id", f.Degrees)

	if f.HasStipend != nil {
		q = q.Where("directions.has_stipend = ?", *f.HasStipend)
	}
	if f.OpenForAdmission != nil {
		q = q.Where("directions.is_open_for_admission = ?", *f.OpenForAdmission)
	}

	if f.MinPrice != nil {
		q = q.Where("universities.minimal_tuition_fee >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("universities.maximal_tuition_fee <= ?", *f.MaxPrice)
	}

	return q
}

// OrderBy attaches the ORDER BY clause for the selected sort key.
func (f DirectionFilter) OrderBy(q *gorm.DB) *gorm.DB {
	switch f.Sort {
	case SortPriceAsc:
		return q.Order("universities.minimal_tuition_fee ASC, directions.direction_name ASC")
	case SortPriceDesc:
		return q.Order("universities.maximal_tuition_fee DESC, directions.direction_name ASC")
	case SortLocation:
		return q.Joins("LEFT JOIN locations ON locations.id = universities.location_id").
			Order("locations.name ASC, directions.direction_name ASC")
	default:
		return q.Order("universities.full_name ASC, directions.direction_name ASC")
	}
}

// taxonomyRef filters by a single taxonomy reference: numeric values match
// the foreign key, anything else matches the taxonomy name by substring.
func taxonomyRef(q, base *gorm.DB, fkColumn, table, value string) *gorm.DB {
	if value == "" {
		return q
	}
	if id, err := strconv.ParseUint(value, 10, 32); err == nil {
		return q.Where(fkColumn+" = ?", id)
	}
	sub := base.Session(&gorm.Session{NewDB: true}).
		Table(table).Select("id").Where("LOWER(name) LIKE ?", contains(value))
	return q.Where(fkColumn+" IN (?)", sub)
}

// relationSet filters by a many-to-many value set through an IN-subquery
// over the join table, so matching several related rows still yields the
// owner exactly once.
func relationSet(q, base *gorm.DB, ownerColumn, joinTable, ownerKey, refKey string, ids []uint) *gorm.DB {
	if len(ids) == 0 {
		return q
	}
	sub := base.Session(&gorm.Session{NewDB: true}).
		Table(joinTable).Select(ownerKey).Where(refKey+" IN ?", ids)
	return q.Where(ownerColumn+" IN (?)", sub)
}

func contains(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}

func textParam(c *fiber.Ctx, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.Query(name)); v != "" {
			return v
		}
	}
	return ""
}

// idListParam collects a repeated parameter into a list of ids, dropping
// values that are not numeric.
func idListParam(c *fiber.Ctx, name string) []uint {
	var ids []uint
	for _, raw := range c.Context().QueryArgs().PeekMulti(name) {
		if id, err := strconv.ParseUint(string(raw), 10, 32); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids
}

func boolParam(v string) *bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true":
		b := true
		return &b
	case "false":
		b := false
		return &b
	}
	return nil
}

func uintParam(v string) *uint {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return nil
	}
	u := uint(parsed)
	return &u
}

func sortParam(v string) string {
	switch v {
	case SortName, SortPriceAsc, SortPriceDesc, SortLocation:
		return v
	}
	return SortName
}
