// Package serialize holds the fixed-field list representations returned by
// the listing endpoints. Detail endpoints return full models; listings
// return these trimmed items with long text truncated.
package serialize

import (
	"strings"

	"github.com/shDavlatbek/uni-list/model"
)

// descriptionPreviewLen caps listing descriptions, in runes.
const descriptionPreviewLen = 220

// UniversityListItem is the listing representation of a university.
type UniversityListItem struct {
	ID                  uint   `json:"id"`
	FullName            string `json:"full_name"`
	Slug                string `json:"slug"`
	Logo                string `json:"logo"`
	Address             string `json:"address"`
	Description         string `json:"description"`
	Location            string `json:"location"`
	InstitutionCategory string `json:"institution_category"`
	MinimalTuitionFee   *uint  `json:"minimal_tuition_fee"`
	MaximalTuitionFee   *uint  `json:"maximal_tuition_fee"`
	HasGrant            bool   `json:"has_grant"`
	HasAccomodation     bool   `json:"has_accomodation"`
	IsOpenForAdmission  bool   `json:"is_open_for_admission"`
	AdmissionDeadline   string `json:"admission_deadline"`
	DirectionCount      *uint  `json:"direction_count"`
}

// DirectionListItem is the listing representation of a direction.
type DirectionListItem struct {
	ID                  uint   `json:"id"`
	DirectionName       string `json:"direction_name"`
	DirectionSlug       string `json:"direction_slug"`
	Description         string `json:"direction_description"`
	UniversityName      string `json:"university_name"`
	UniversitySlug      string `json:"university_slug"`
	Category            string `json:"category"`
	HasStipend          bool   `json:"has_stipend"`
	IsOpenForAdmission  bool   `json:"is_open_for_admission"`
	ApplicationDeadline string `json:"application_deadline"`
	Status              string `json:"status"`
	IsPromoted          int    `json:"is_promoted"`
}

// UniversityItem converts a model to its listing representation.
func UniversityItem(u *model.University) UniversityListItem {
	item := UniversityListItem{
		ID:                 u.ID,
		FullName:           u.FullName,
		Slug:               u.Slug,
		Logo:               u.Logo,
		Address:            u.Address,
		Description:        Truncate(u.Description, descriptionPreviewLen),
		MinimalTuitionFee:  u.MinimalTuitionFee,
		MaximalTuitionFee:  u.MaximalTuitionFee,
		HasGrant:           u.HasGrant,
		HasAccomodation:    u.HasAccomodation,
		IsOpenForAdmission: u.IsOpenForAdmission,
		AdmissionDeadline:  u.AdmissionDeadline,
		DirectionCount:     u.DirectionCount,
	}
	if u.Location != nil {
		item.Location = u.Location.Name
	}
	if u.InstitutionCategory != nil {
		item.InstitutionCategory = u.InstitutionCategory.Name
	}
	return item
}

// DirectionItem converts a model to its listing representation.
func DirectionItem(d *model.Direction) DirectionListItem {
	item := DirectionListItem{
		ID:                  d.ID,
		DirectionName:       d.DirectionName,
		DirectionSlug:       d.DirectionSlug,
		Description:         Truncate(d.DirectionDescription, descriptionPreviewLen),
		HasStipend:          d.HasStipend,
		IsOpenForAdmission:  d.IsOpenForAdmission,
		ApplicationDeadline: d.ApplicationDeadline,
		Status:              d.Status,
		IsPromoted:          d.IsPromoted,
	}
	if d.University != nil {
		item.UniversityName = d.University.FullName
		item.UniversitySlug = d.University.Slug
	}
	if d.Category != nil {
		item.Category = d.Category.Name
	}
	return item
}

// Truncate cuts s to max runes, appending an ellipsis when something was
// cut. Cuts happen at word boundaries where possible.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	cut := string(runes[:max])
	if idx := strings.LastIndexByte(cut, ' '); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "…"
}
