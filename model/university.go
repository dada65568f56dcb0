package model

// University represents an educational institution imported from the
// universities feed. IDs are the original feed ids.
type University struct {
	ID                 uint   `gorm:"primaryKey" json:"id"`
	FullName           string `gorm:"size:255;not null;uniqueIndex" json:"full_name"`
	Slug               string `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Logo               string `gorm:"size:255" json:"logo"`
	Description        string `gorm:"type:text" json:"description"`
	AboutGrant         string `gorm:"type:text" json:"about_grant"`
	Address            string `gorm:"size:255" json:"address"`
	FoundedYear        string `gorm:"size:50" json:"founded_year"` // kept as string, feed format varies
	StudentsCount      *uint  `json:"students_count"`
	CurrentQuota       *uint  `json:"current_quota"`
	HasAccomodation    bool   `gorm:"default:false" json:"has_accomodation"`
	HasGrant           bool   `gorm:"default:false" json:"has_grant"`
	AdmissionPhone     string `gorm:"size:100" json:"admission_phone"`
	WebSite            string `gorm:"size:255" json:"web_site"`
	InstagramUsername  string `gorm:"size:255" json:"instagram_username"`
	TelegramUsername   string `gorm:"size:255" json:"telegram_username"`
	FacebookUsername   string `gorm:"size:255" json:"facebook_username"`
	YoutubeUsername    string `gorm:"size:255" json:"youtube_username"`
	SupportEmail       string `gorm:"size:255" json:"support_email"`
	AdmissionStartDate string `gorm:"size:50" json:"admission_start_date"`
	AdmissionDeadline  string `gorm:"size:50" json:"admission_deadline"`
	MinimalTuitionFee  *uint  `json:"minimal_tuition_fee"`
	MaximalTuitionFee  *uint  `json:"maximal_tuition_fee"`
	Latitude           string `gorm:"size:50" json:"latitude"`
	Longitude          string `gorm:"size:50" json:"longitude"`
	IsOpenForAdmission bool   `gorm:"default:false" json:"is_open_for_admission"`
	Rating             string `gorm:"size:10" json:"rating"`
	RatingTotalPupil   *uint  `json:"rating_total_pupil"`
	MtdtTitle          string `gorm:"size:255" json:"mtdt_title"`
	MtdtDescription    string `gorm:"type:text" json:"mtdt_description"`
	DirectionCount     *uint  `json:"direction_count"`
	LicenseFile        string `gorm:"size:255" json:"license_file"`

	InstitutionCategoryID *uint                `gorm:"index" json:"institution_category_id"`
	InstitutionCategory   *InstitutionCategory `json:"institution_category,omitempty"`
	LocationID            *uint                `gorm:"index" json:"location_id"`
	Location              *Location            `json:"location,omitempty"`

	EducationTypes     []EducationType     `gorm:"many2many:university_education_types" json:"education_types,omitempty"`
	EducationLanguages []EducationLanguage `gorm:"many2many:university_education_languages" json:"education_languages,omitempty"`
	Degrees            []Degree            `gorm:"many2many:university_degrees" json:"degrees,omitempty"`

	Directions   []Direction `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"directions,omitempty"`
	GalleryItems []Gallery   `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"gallery_items,omitempty"`
}

// Gallery is a single gallery entry of a university: either a stored image
// or an external link. Duplicates (same link, same image basename) are
// filtered out by the importer, not by the schema.
type Gallery struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	UniversityID uint   `gorm:"not null;index" json:"university_id"`
	Image        string `gorm:"size:255" json:"image"`
	Link         string `gorm:"size:255" json:"link"`

	University University `gorm:"foreignKey:UniversityID;constraint:OnDelete:CASCADE" json:"-"`
}
