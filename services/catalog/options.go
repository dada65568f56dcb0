// Package catalog builds the filter-options payload used by listing pages:
// every taxonomy ordered by name plus the tuition-fee bounds. The payload
// is small, read on every listing render, and changes only on import, so
// it is cached in redis and refreshed by a cron job.
package catalog

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/model"
	"github.com/shDavlatbek/uni-list/utils/cache"
)

// OptionsCacheKey is the redis key holding the serialized payload.
const OptionsCacheKey = "filters:options"

// OptionsCacheTTL bounds staleness when the refresh job is not running.
const OptionsCacheTTL = 15 * time.Minute

// FilterOptions is the full set of choices a listing page can filter by.
type FilterOptions struct {
	InstitutionCategories []model.InstitutionCategory `json:"institution_categories"`
	Locations             []model.Location            `json:"locations"`
	Categories            []model.Category            `json:"categories"`
	EducationTypes        []model.EducationType       `json:"education_types"`
	EducationLanguages    []model.EducationLanguage   `json:"education_languages"`
	Degrees               []model.Degree              `json:"degrees"`
	MinPrice              uint                        `json:"min_price"`
	MaxPrice              uint                        `json:"max_price"`
}

// defaultMaxPrice is used when no university carries a fee yet.
const defaultMaxPrice = 100000000

// BuildOptions reads the filter options straight from the database.
func BuildOptions(db *gorm.DB) (*FilterOptions, error) {
	opts := &FilterOptions{}

	if err := db.Order("name").Find(&opts.InstitutionCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Order("name").Find(&opts.Locations).Error; err != nil {
		return nil, err
	}
	if err := db.Order("name").Find(&opts.Categories).Error; err != nil {
		return nil, err
	}
	if err := db.Order("name").Find(&opts.EducationTypes).Error; err != nil {
		return nil, err
	}
	if err := db.Order("name").Find(&opts.EducationLanguages).Error; err != nil {
		return nil, err
	}
	if err := db.Order("name").Find(&opts.Degrees).Error; err != nil {
		return nil, err
	}

	var bounds struct {
		Min *uint
		Max *uint
	}
	err := db.Model(&model.University{}).
		Select("MIN(minimal_tuition_fee) AS min, MAX(maximal_tuition_fee) AS max").
		Scan(&bounds).Error
	if err != nil {
		return nil, err
	}
	if bounds.Min != nil {
		opts.MinPrice = *bounds.Min
	}
	if bounds.Max != nil {
		opts.MaxPrice = *bounds.Max
	} else {
		opts.MaxPrice = defaultMaxPrice
	}

	return opts, nil
}

// CachedOptions serves the payload from redis when warm, rebuilding and
// re-caching on a miss. A nil or failing cache degrades to direct reads.
func CachedOptions(ctx context.Context, db *gorm.DB, redisCache *cache.RedisCache) (*FilterOptions, error) {
	if redisCache != nil {
		var cached FilterOptions
		if err := redisCache.GetJSON(ctx, OptionsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	opts, err := BuildOptions(db)
	if err != nil {
		return nil, err
	}

	if redisCache != nil {
		if err := redisCache.SetJSON(ctx, OptionsCacheKey, opts, OptionsCacheTTL); err != nil {
			log.Printf("filter options cache write failed: %v", err)
		}
	}
	return opts, nil
}

// RefreshOptions rebuilds the payload and overwrites the cached copy.
func RefreshOptions(ctx context.Context, db *gorm.DB, redisCache *cache.RedisCache) error {
	opts, err := BuildOptions(db)
	if err != nil {
		return err
	}
	if redisCache == nil {
		return nil
	}
	return redisCache.SetJSON(ctx, OptionsCacheKey, opts, OptionsCacheTTL)
}
