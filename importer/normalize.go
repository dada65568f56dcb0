package importer

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shDavlatbek/uni-list/utils/validation"
)

// The feeds are loosely structured: keys come and go, numbers arrive as
// strings, names repeat per locale. Everything is normalized into typed
// records here, in one place, before any row is touched. Missing keys map
// to zero values, never errors.

// RelationRef is a loosely-keyed reference to a taxonomy row: candidate
// names in priority order, with the id as a fallback.
type RelationRef struct {
	ID    uint
	Names []string
}

// UniversityRecord is a normalized university feed entry.
type UniversityRecord struct {
	ID                 uint
	FullName           string `validate:"required"`
	Slug               string
	Description        string
	AboutGrant         string
	Address            string
	FoundedYear        string
	StudentsCount      *uint
	CurrentQuota       *uint
	HasAccomodation    bool
	HasGrant           bool
	AdmissionPhone     string
	WebSite            string
	InstagramUsername  string
	TelegramUsername   string
	FacebookUsername   string
	YoutubeUsername    string
	SupportEmail       string
	AdmissionStartDate string
	AdmissionDeadline  string
	MinimalTuitionFee  *uint
	MaximalTuitionFee  *uint
	Latitude           string
	Longitude          string
	IsOpenForAdmission bool
	Rating             string
	RatingTotalPupil   *uint
	MtdtTitle          string
	MtdtDescription    string
	DirectionCount     *uint

	InstitutionCategoryID *uint
	LocationName          string

	Logo        string
	LicenseFile string
	Gallery     []string

	// nil means the key was absent from the feed; an empty non-nil slice
	// means "present and empty", which clears the relation.
	EducationTypes     []RelationRef
	EducationLanguages []RelationRef
	Degrees            []RelationRef
}

// DirectionRecord is a normalized direction feed entry.
type DirectionRecord struct {
	ID                   uint
	UniversityID         uint   `validate:"required"`
	DirectionName        string `validate:"required"`
	Slug                 string
	Description          string
	Requirement          string
	FirstSubject         string
	SecondSubject        string
	HasMandatorySubjects bool
	HasStipend           bool
	IsOpenForAdmission   bool
	ApplicationStartDate string
	ApplicationDeadline  string
	Status               string
	IsPromoted           int
	ContractTypes        json.RawMessage

	CategoryID *uint

	EducationTypes     []RelationRef
	EducationLanguages []RelationRef
	Degrees            []RelationRef

	TuitionFees []TuitionFeeRecord
}

// TuitionFeeRecord is a nested tuition-fee entry of a direction record.
type TuitionFeeRecord struct {
	EducationType           RelationRef
	AcademicYear            string
	LocalTuitionFee         *uint
	InternationalTuitionFee *uint
}

func normalizeUniversity(m map[string]any) UniversityRecord {
	rec := UniversityRecord{
		FullName:           validation.SanitizeString(stringAt(m, "full_name_uz", "full_name_ru", "full_name_en")),
		Slug:               stringAt(m, "slug"),
		Description:        stringAt(m, "description_uz"),
		AboutGrant:         stringAt(m, "about_grant_uz"),
		Address:            stringAt(m, "address_uz"),
		FoundedYear:        stringAt(m, "founded_year"),
		StudentsCount:      uintAt(m, "students_count"),
		CurrentQuota:       uintAt(m, "current_quota"),
		HasAccomodation:    boolAt(m, "has_accomodation"),
		HasGrant:           boolAt(m, "has_grant"),
		AdmissionPhone:     stringAt(m, "admission_phone"),
		WebSite:            stringAt(m, "web_site"),
		InstagramUsername:  stringAt(m, "instagram_username"),
		TelegramUsername:   stringAt(m, "telegram_username"),
		FacebookUsername:   stringAt(m, "facebook_username"),
		YoutubeUsername:    stringAt(m, "youtube_username"),
		SupportEmail:       stringAt(m, "support_email"),
		AdmissionStartDate: stringAt(m, "admission_start_date"),
		AdmissionDeadline:  stringAt(m, "admission_deadline"),
		MinimalTuitionFee:  uintAt(m, "minimal_tuition_fee"),
		MaximalTuitionFee:  uintAt(m, "maximal_tuition_fee"),
		Latitude:           stringAt(m, "latitude"),
		Longitude:          stringAt(m, "longitude"),
		IsOpenForAdmission: boolAt(m, "is_open_for_admission"),
		Rating:             stringAt(m, "rating"),
		RatingTotalPupil:   uintAt(m, "rating_total_pupil"),
		MtdtTitle:          stringAt(m, "mtdt_title"),
		MtdtDescription:    stringAt(m, "mtdt_description"),
		DirectionCount:     uintAt(m, "direction_count"),

		InstitutionCategoryID: uintAt(m, "institution_category_id"),
		LocationName:          validation.SanitizeString(stringAt(m, "location_uz")),

		Logo:        stringAt(m, "logo"),
		LicenseFile: stringAt(m, "accreditation_certificate", "certification_link", "license_file"),

		EducationTypes:     relationRefs(m["education_type"], "id", "name_uz", "name_ru", "name_en", "name"),
		EducationLanguages: relationRefs(m["education_language"], "id", "name_uz", "name_ru", "name_en", "name"),
		Degrees:            relationRefs(m["degree"], "id", "name_uz", "name_ru", "name_en", "name"),
	}

	if id := uintAt(m, "id"); id != nil {
		rec.ID = *id
	}

	if items, ok := m["gallery"].([]any); ok {
		for _, item := range items {
			if s, ok := item.(string); ok {
				rec.Gallery = append(rec.Gallery, s)
			}
		}
	}

	return rec
}

func normalizeDirection(m map[string]any) DirectionRecord {
	rec := DirectionRecord{
		DirectionName:        validation.SanitizeString(stringAt(m, "direction_name_uz", "direction_name_ru")),
		Slug:                 stringAt(m, "direction_slug"),
		Description:          stringAt(m, "direction_description_uz"),
		Requirement:          stringAt(m, "requirement_uz"),
		FirstSubject:         stringAt(m, "first_subject"),
		SecondSubject:        stringAt(m, "second_subject"),
		HasMandatorySubjects: boolAt(m, "has_mandatory_subjects"),
		HasStipend:           boolAt(m, "has_stipend"),
		IsOpenForAdmission:   boolAt(m, "is_open_for_admission"),
		ApplicationStartDate: stringAt(m, "application_start_date"),
		ApplicationDeadline:  stringAt(m, "application_deadline"),
		Status:               stringAt(m, "status"),
		IsPromoted:           intAt(m, "is_promoted"),

		CategoryID: uintAt(m, "category_id"),

		EducationTypes: relationRefs(m["education_types"], "education_type_id",
			"education_type_name_uz", "education_type_name_ru", "education_type_name_en"),
		EducationLanguages: relationRefs(m["education_languages"], "education_language_id",
			"education_language_name_uz", "education_language_name_ru", "education_language_name_en"),
		Degrees: relationRefs(m["degrees"], "degree_id",
			"degree_name_uz", "degree_name_ru", "degree_name_en"),
	}

	if id := uintAt(m, "direction_id"); id != nil {
		rec.ID = *id
	}
	if id := uintAt(m, "university_id"); id != nil {
		rec.UniversityID = *id
	}
	if rec.DirectionName == "" {
		rec.DirectionName = "Unnamed"
	}
	if rec.Status == "" {
		rec.Status = "active"
	}

	if raw, ok := m["contract_types"]; ok && raw != nil {
		if data, err := json.Marshal(raw); err == nil {
			rec.ContractTypes = data
		}
	}

	if fees, ok := m["tuition_fees"].([]any); ok {
		for _, f := range fees {
			fm, ok := f.(map[string]any)
			if !ok {
				continue
			}
			ref := RelationRef{Names: namesAt(fm,
				"education_type_name_uz", "education_type_name_ru", "education_type_name_en")}
			if id := uintAt(fm, "education_type_id"); id != nil {
				ref.ID = *id
			}
			rec.TuitionFees = append(rec.TuitionFees, TuitionFeeRecord{
				EducationType:           ref,
				AcademicYear:            stringAt(fm, "academic_year"),
				LocalTuitionFee:         uintAt(fm, "local_tuition_fee"),
				InternationalTuitionFee: uintAt(fm, "international_tuition_fee"),
			})
		}
	}

	return rec
}

// relationRefs converts a feed relation array into refs. Returns nil when
// the value is absent or not a list, and an empty non-nil slice for a
// present-but-empty list.
func relationRefs(v any, idKey string, nameKeys ...string) []RelationRef {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	refs := make([]RelationRef, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		ref := RelationRef{Names: namesAt(m, nameKeys...)}
		if id := uintAt(m, idKey); id != nil {
			ref.ID = *id
		}
		if ref.ID == 0 && len(ref.Names) == 0 {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}

func namesAt(m map[string]any, keys ...string) []string {
	var names []string
	for _, key := range keys {
		if name := validation.SanitizeString(stringAt(m, key)); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// stringAt returns the first non-empty string value among keys. Numeric
// values are formatted; anything else counts as absent.
func stringAt(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			return strconv.FormatBool(v)
		}
	}
	return ""
}

// uintAt reads a non-negative integer that may arrive as a JSON number or
// a numeric string. Returns nil when absent or unparseable.
func uintAt(m map[string]any, key string) *uint {
	switch v := m[key].(type) {
	case float64:
		if v < 0 {
			return nil
		}
		u := uint(v)
		return &u
	case string:
		parsed, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil
		}
		u := uint(parsed)
		return &u
	}
	return nil
}

func intAt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return parsed
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// boolAt accepts JSON booleans and the string "true" (any case).
func boolAt(m map[string]any, key string) bool {
	switch v := m[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}
