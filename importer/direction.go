package importer

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/model"
	"github.com/shDavlatbek/uni-list/utils/slug"
)

// ImportDirections loads the directions feed. Every record must reference
// an already-imported university by id; records whose university is
// missing are skipped and tallied, the rest of the run continues. The
// natural key is (direction name, university).
func (imp *Importer) ImportDirections(ctx context.Context, path string) (Stats, error) {
	records, err := readFeed(path)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	err = imp.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockImports(tx); err != nil {
			return err
		}

		for _, m := range records {
			rec := normalizeDirection(m)
			if err := imp.validate.ValidateStruct(&rec); err != nil {
				stats.Skipped++
				continue
			}

			var uni model.University
			err := tx.First(&uni, rec.UniversityID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("direction %q: university %d not found, skipping", rec.DirectionName, rec.UniversityID)
				stats.Skipped++
				continue
			}
			if err != nil {
				return err
			}

			created, err := imp.upsertDirection(tx, &uni, rec)
			if err != nil {
				return err
			}
			if created {
				stats.Created++
			} else {
				stats.Updated++
			}
		}
		return nil
	})
	return stats, err
}

func (imp *Importer) upsertDirection(tx *gorm.DB, uni *model.University, rec DirectionRecord) (bool, error) {
	var dir model.Direction
	err := tx.Where("direction_name = ? AND university_id = ?", rec.DirectionName, uni.ID).
		First(&dir).Error

	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
		dir = model.Direction{ID: rec.ID, UniversityID: uni.ID, DirectionName: rec.DirectionName}

		base := rec.Slug
		if base == "" {
			base = slug.Make(uni.Slug + "-" + rec.DirectionName)
		}
		unique, err := slug.EnsureUnique(tx, "directions", "direction_slug", base, 0)
		if err != nil {
			return false, err
		}
		dir.DirectionSlug = unique
	case err != nil:
		return false, err
	}

	dir.DirectionDescription = rec.Description
	dir.Requirement = rec.Requirement
	dir.FirstSubject = rec.FirstSubject
	dir.SecondSubject = rec.SecondSubject
	dir.HasMandatorySubjects = rec.HasMandatorySubjects
	dir.HasStipend = rec.HasStipend
	dir.IsOpenForAdmission = rec.IsOpenForAdmission
	dir.ApplicationStartDate = rec.ApplicationStartDate
	dir.ApplicationDeadline = rec.ApplicationDeadline
	dir.Status = rec.Status
	dir.IsPromoted = rec.IsPromoted
	if rec.ContractTypes != nil {
		dir.ContractTypes = []byte(rec.ContractTypes)
	}

	dir.CategoryID = nil
	if rec.CategoryID != nil {
		if id, ok := lookupID(tx, "categories", *rec.CategoryID); ok {
			dir.CategoryID = &id
		}
	}

	if created {
		if err := tx.Create(&dir).Error; err != nil {
			return false, err
		}
	} else if err := tx.Save(&dir).Error; err != nil {
		return false, err
	}

	if err := imp.syncDirectionRelations(tx, &dir, rec); err != nil {
		return false, err
	}

	for _, fee := range rec.TuitionFees {
		if err := upsertTuitionFee(tx, dir.ID, fee); err != nil {
			return false, err
		}
	}
	return created, nil
}

func (imp *Importer) syncDirectionRelations(tx *gorm.DB, dir *model.Direction, rec DirectionRecord) error {
	ids := resolveRefs(tx, "education_types", rec.EducationTypes)
	types := make([]model.EducationType, len(ids))
	for i, id := range ids {
		types[i] = model.EducationType{ID: id}
	}
	if err := replaceAssociation(tx, dir, "EducationTypes", &types, len(ids)); err != nil {
		return err
	}

	ids = resolveRefs(tx, "education_languages", rec.EducationLanguages)
	langs := make([]model.EducationLanguage, len(ids))
	for i, id := range ids {
		langs[i] = model.EducationLanguage{ID: id}
	}
	if err := replaceAssociation(tx, dir, "EducationLanguages", &langs, len(ids)); err != nil {
		return err
	}

	ids = resolveRefs(tx, "degrees", rec.Degrees)
	degrees := make([]model.Degree, len(ids))
	for i, id := range ids {
		degrees[i] = model.Degree{ID: id}
	}
	return replaceAssociation(tx, dir, "Degrees", &degrees, len(ids))
}

// upsertTuitionFee keeps at most one fee row per (direction, education
// type) pair. Fees whose education type cannot be resolved are skipped.
func upsertTuitionFee(tx *gorm.DB, directionID uint, rec TuitionFeeRecord) error {
	etID, ok := resolveRef(tx, "education_types", rec.EducationType)
	if !ok {
		return nil
	}

	var fee model.TuitionFee
	err := tx.Where("direction_id = ? AND education_type_id = ?", directionID, etID).
		First(&fee).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		fee = model.TuitionFee{DirectionID: directionID, EducationTypeID: etID}
	} else if err != nil {
		return err
	}

	fee.AcademicYear = rec.AcademicYear
	fee.LocalTuitionFee = rec.LocalTuitionFee
	fee.InternationalTuitionFee = rec.InternationalTuitionFee
	return tx.Save(&fee).Error
}
