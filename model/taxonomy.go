package model

// Lookup tables referenced by universities and directions. Their IDs come
// from the incoming filters feed and must stay stable across imports:
// main entities reference these rows by id.

// InstitutionCategory represents the type of institution (e.g., Private, State)
type InstitutionCategory struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Location represents a geographical location (region/city)
type Location struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Category represents the category of an educational direction (e.g., IT, Medicine)
type Category struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:200;uniqueIndex;not null" json:"name"`
}

// EducationType represents the type of education (e.g., Full-time, Part-time)
type EducationType struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// EducationLanguage represents the language of instruction
type EducationLanguage struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}

// Degree represents the degree level (e.g., Bachelor, Master)
type Degree struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:100;uniqueIndex;not null" json:"name"`
}
