package importer

import (
	"context"
	"errors"
	"log"
	"strings"

	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/model"
	"github.com/shDavlatbek/uni-list/services/media"
	"github.com/shDavlatbek/uni-list/utils/slug"
	"github.com/shDavlatbek/uni-list/utils/validation"
)

// ImportUniversities loads the universities feed. Records resolve by full
// name (the natural key); a matching row is updated in place, anything
// else is created. Media fields attach only while unset, and the gallery
// is populated exactly once.
func (imp *Importer) ImportUniversities(ctx context.Context, path string) (Stats, error) {
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
			rec := normalizeUniversity(m)
			if err := imp.validate.ValidateStruct(&rec); err != nil {
				stats.Skipped++
				continue
			}

			created, err := imp.upsertUniversity(ctx, tx, rec)
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

func (imp *Importer) upsertUniversity(ctx context.Context, tx *gorm.DB, rec UniversityRecord) (bool, error) {
	var uni model.University
	err := tx.Where("full_name = ?", rec.FullName).First(&uni).Error

	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		created = true
		uni = model.University{ID: rec.ID, FullName: rec.FullName}

		base := rec.Slug
		if base == "" {
			base = slug.Make(rec.FullName)
		}
		unique, err := slug.EnsureUnique(tx, "universities", "slug", base, 0)
		if err != nil {
			return false, err
		}
		uni.Slug = unique
	case err != nil:
		return false, err
	}

	applyUniversitySnapshot(&uni, rec)

	uni.InstitutionCategoryID = nil
	if rec.InstitutionCategoryID != nil {
		if id, ok := lookupID(tx, "institution_categories", *rec.InstitutionCategoryID); ok {
			uni.InstitutionCategoryID = &id
		}
	}

	uni.LocationID = nil
	if rec.LocationName != "" {
		var loc model.Location
		if err := tx.Where("name = ?", rec.LocationName).Take(&loc).Error; err == nil {
			uni.LocationID = &loc.ID
		}
	}

	// logo / license only when blank
	if uni.Logo == "" && rec.Logo != "" {
		if stored, ok := imp.fetchAndStore(ctx, rec.Logo); ok {
			uni.Logo = stored
		}
	}
	if uni.LicenseFile == "" && rec.LicenseFile != "" {
		if stored, ok := imp.fetchAndStore(ctx, rec.LicenseFile); ok {
			uni.LicenseFile = stored
		}
	}

	if created {
		if err := tx.Create(&uni).Error; err != nil {
			return false, err
		}
	} else if err := tx.Save(&uni).Error; err != nil {
		return false, err
	}

	// gallery is populated once, only while empty
	var galleryCount int64
	if err := tx.Model(&model.Gallery{}).Where("university_id = ?", uni.ID).Count(&galleryCount).Error; err != nil {
		return false, err
	}
	if galleryCount == 0 {
		for _, item := range rec.Gallery {
			if err := imp.addGalleryItem(ctx, tx, &uni, item); err != nil {
				return false, err
			}
		}
	}

	if err := imp.syncUniversityRelations(tx, &uni, rec); err != nil {
		return false, err
	}
	return created, nil
}

func applyUniversitySnapshot(uni *model.University, rec UniversityRecord) {
	uni.Description = rec.Description
	uni.AboutGrant = rec.AboutGrant
	uni.Address = rec.Address
	uni.FoundedYear = rec.FoundedYear
	uni.StudentsCount = rec.StudentsCount
	uni.CurrentQuota = rec.CurrentQuota
	uni.HasAccomodation = rec.HasAccomodation
	uni.HasGrant = rec.HasGrant
	uni.AdmissionPhone = rec.AdmissionPhone
	uni.WebSite = rec.WebSite
	uni.InstagramUsername = rec.InstagramUsername
	uni.TelegramUsername = rec.TelegramUsername
	uni.FacebookUsername = rec.FacebookUsername
	uni.YoutubeUsername = rec.YoutubeUsername
	uni.SupportEmail = rec.SupportEmail
	uni.AdmissionStartDate = rec.AdmissionStartDate
	uni.AdmissionDeadline = rec.AdmissionDeadline
	uni.MinimalTuitionFee = rec.MinimalTuitionFee
	uni.MaximalTuitionFee = rec.MaximalTuitionFee
	uni.Latitude = rec.Latitude
	uni.Longitude = rec.Longitude
	uni.IsOpenForAdmission = rec.IsOpenForAdmission
	uni.Rating = rec.Rating
	uni.RatingTotalPupil = rec.RatingTotalPupil
	uni.MtdtTitle = rec.MtdtTitle
	uni.MtdtDescription = rec.MtdtDescription
	uni.DirectionCount = rec.DirectionCount
}

// addGalleryItem adds one gallery entry, never duplicating. URLs not
// pointing at an image become external links; everything else is a remote
// image to download.
func (imp *Importer) addGalleryItem(ctx context.Context, tx *gorm.DB, uni *model.University, raw string) error {
	raw = validation.SanitizeString(raw)
	if raw == "" {
		return nil
	}

	isLink := (strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")) &&
		!media.IsImagePath(raw)

	if isLink {
		var count int64
		if err := tx.Model(&model.Gallery{}).
			Where("university_id = ? AND link = ?", uni.ID, raw).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}
		return tx.Create(&model.Gallery{UniversityID: uni.ID, Link: raw}).Error
	}

	base := media.SafeBasename(raw)
	var count int64
	if err := tx.Model(&model.Gallery{}).
		Where("university_id = ? AND image LIKE ?", uni.ID, "%"+base).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	item := model.Gallery{UniversityID: uni.ID}
	if stored, ok := imp.fetchAndStore(ctx, raw); ok {
		item.Image = stored
	}
	return tx.Create(&item).Error
}

// fetchAndStore downloads and persists one media file. Any failure is
// logged and reported as "not attached"; it never aborts the run.
func (imp *Importer) fetchAndStore(ctx context.Context, raw string) (string, bool) {
	if imp.fetcher == nil || imp.store == nil {
		return "", false
	}

	data, err := imp.fetcher.Fetch(ctx, raw)
	if err != nil {
		log.Printf("media fetch failed for %q: %v", raw, err)
		return "", false
	}

	stored, err := imp.store.Save(ctx, raw, data)
	if err != nil {
		log.Printf("media store failed for %q: %v", raw, err)
		return "", false
	}
	return stored, true
}

func (imp *Importer) syncUniversityRelations(tx *gorm.DB, uni *model.University, rec UniversityRecord) error {
	if rec.EducationTypes != nil {
		ids := resolveRefs(tx, "education_types", rec.EducationTypes)
		types := make([]model.EducationType, len(ids))
		for i, id := range ids {
			types[i] = model.EducationType{ID: id}
		}
		if err := replaceAssociation(tx, uni, "EducationTypes", &types, len(ids)); err != nil {
			return err
		}
	}
	if rec.EducationLanguages != nil {
		ids := resolveRefs(tx, "education_languages", rec.EducationLanguages)
		langs := make([]model.EducationLanguage, len(ids))
		for i, id := range ids {
			langs[i] = model.EducationLanguage{ID: id}
		}
		if err := replaceAssociation(tx, uni, "EducationLanguages", &langs, len(ids)); err != nil {
			return err
		}
	}
	if rec.Degrees != nil {
		ids := resolveRefs(tx, "degrees", rec.Degrees)
		degrees := make([]model.Degree, len(ids))
		for i, id := range ids {
			degrees[i] = model.Degree{ID: id}
		}
		if err := replaceAssociation(tx, uni, "Degrees", &degrees, len(ids)); err != nil {
			return err
		}
	}
	return nil
}

// replaceAssociation swaps a many-to-many set; an empty set clears it.
func replaceAssociation(tx *gorm.DB, owner any, name string, values any, count int) error {
	assoc := tx.Model(owner).Association(name)
	if count == 0 {
		return assoc.Clear()
	}
	return assoc.Replace(values)
}
