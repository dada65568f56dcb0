package model

import "gorm.io/datatypes"

// Direction represents an educational program offered by a university.
type Direction struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	UniversityID         uint   `gorm:"not null;index" json:"university_id"`
	DirectionName        string `gorm:"size:255;not null" json:"direction_name"`
	DirectionSlug        string `gorm:"size:255;uniqueIndex;not null" json:"direction_slug"`
	DirectionDescription string `gorm:"type:text" json:"direction_description"`
	Requirement          string `gorm:"type:text" json:"requirement"`
	FirstSubject         string `gorm:"size:100" json:"first_subject"`
	SecondSubject        string `gorm:"size:100" json:"second_subject"`
	HasMandatorySubjects bool   `gorm:"default:false" json:"has_mandatory_subjects"`
	HasStipend           bool   `gorm:"default:false" json:"has_stipend"`
	IsOpenForAdmission   bool   `gorm:"default:false" json:"is_open_for_admission"`
	ApplicationStartDate string `gorm:"size:50" json:"application_start_date"`
	ApplicationDeadline  string `gorm:"size:50" json:"application_deadline"`
	Status               string `gorm:"size:50;default:active" json:"status"`
	IsPromoted           int    `gorm:"default:0" json:"is_promoted"`

	// Raw contract-type snapshot from the feed, kept as-is for the frontend.
	ContractTypes datatypes.JSON `json:"contract_types,omitempty"`

	University *University `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"university,omitempty"`
	CategoryID *uint       `gorm:"index" json:"category_id"`
	Category   *Category   `json:"category,omitempty"`

	EducationTypes     []EducationType     `gorm:"many2many:direction_education_types" json:"education_types,omitempty"`
	EducationLanguages []EducationLanguage `gorm:"many2many:direction_education_languages" json:"education_languages,omitempty"`
	Degrees            []Degree            `gorm:"many2many:direction_degrees" json:"degrees,omitempty"`

	TuitionFees []TuitionFee `gorm:"foreignKey:DirectionID;constraint:OnDelete:CASCADE" json:"tuition_fees,omitempty"`
}

// TuitionFee holds the yearly fee of a direction for one education type.
// At most one row may exist per (direction, education type) pair; the
// importer upserts on that pair, never blind-inserts.
type TuitionFee struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	DirectionID     uint   `gorm:"not null;uniqueIndex:idx_direction_education_type" json:"direction_id"`
	EducationTypeID uint   `gorm:"not null;uniqueIndex:idx_direction_education_type" json:"education_type_id"`
	AcademicYear    string `gorm:"size:50" json:"academic_year"`

	LocalTuitionFee         *uint `json:"local_tuition_fee"`
	InternationalTuitionFee *uint `json:"international_tuition_fee"`

	Direction     Direction      `gorm:"foreignKey:DirectionID;constraint:OnDelete:CASCADE" json:"-"`
	EducationType *EducationType `gorm:"foreignKey:EducationTypeID" json:"education_type,omitempty"`
}
