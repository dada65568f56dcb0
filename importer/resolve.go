package importer

import (
	"errors"

	"gorm.io/gorm"
)

// taxonomyTables maps feed filter keys to their lookup tables. The keys
// match the `name` field of the filters feed.
var taxonomyTables = map[string]string{
	"institution_category_id": "institution_categories",
	"location":                "locations",
	"category":                "categories",
	"edu_type":                "education_types",
	"edu_lang":                "education_languages",
	"degree":                  "degrees",
}

// taxonomyRow is the shared shape of all six lookup tables.
type taxonomyRow struct {
	ID   uint
	Name string
}

// resolveRef finds a taxonomy row by trying the candidate names in
// priority order, then falling back to the id. Returns false when nothing
// matches; callers treat that as a skippable condition.
func resolveRef(tx *gorm.DB, table string, ref RelationRef) (uint, bool) {
	var row taxonomyRow
	for _, name := range ref.Names {
		err := tx.Table(table).Where("name = ?", name).Take(&row).Error
		if err == nil {
			return row.ID, true
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false
		}
	}

	if ref.ID != 0 {
		if err := tx.Table(table).Where("id = ?", ref.ID).Take(&row).Error; err == nil {
			return row.ID, true
		}
	}
	return 0, false
}

// resolveRefs resolves a relation set, dropping refs that match nothing.
func resolveRefs(tx *gorm.DB, table string, refs []RelationRef) []uint {
	var ids []uint
	for _, ref := range refs {
		if id, ok := resolveRef(tx, table, ref); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// lookupID confirms a taxonomy row with the given id exists.
func lookupID(tx *gorm.DB, table string, id uint) (uint, bool) {
	var row taxonomyRow
	if err := tx.Table(table).Where("id = ?", id).Take(&row).Error; err != nil {
		return 0, false
	}
	return row.ID, true
}
