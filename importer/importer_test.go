package importer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shDavlatbek/uni-list/database"
	"github.com/shDavlatbek/uni-list/model"
	"github.com/shDavlatbek/uni-list/services/media"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func writeFeed(t *testing.T, v any) string {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "feed.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// seedTaxonomies loads a small filters feed so resolution has something to
// hit: two education types, one language, one degree, a location, a
// category and an institution category.
func seedTaxonomies(t *testing.T, imp *Importer) {
	t.Helper()

	feed := writeFeed(t, []map[string]any{
		{"name": "edu_type", "value": []map[string]any{
			{"id": 1, "name": "Kunduzgi"},
			{"id": 2, "name": "Sirtqi"},
		}},
		{"name": "edu_lang", "value": []map[string]any{
			{"id": 1, "name": "O'zbek"},
		}},
		{"name": "degree", "value": []map[string]any{
			{"id": 1, "name": "Bakalavr"},
		}},
		{"name": "location", "value": []map[string]any{
			{"id": 1, "name": "Toshkent"},
		}},
		{"name": "category", "value": []map[string]any{
			{"id": 1, "name": "IT"},
		}},
		{"name": "institution_category_id", "value": []map[string]any{
			{"id": 1, "name": "Xususiy"},
		}},
	})

	_, err := imp.ImportFilters(context.Background(), feed)
	require.NoError(t, err)
}

func TestImportFiltersPreservesFeedIDs(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)

	feed := writeFeed(t, []map[string]any{
		{"name": "edu_type", "value": []map[string]any{
			{"id": 7, "name": "Kechki"},
			{"id": 3, "name": "Kunduzgi"},
		}},
	})

	stats, err := imp.ImportFilters(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	var row model.EducationType
	require.NoError(t, db.First(&row, 7).Error)
	assert.Equal(t, "Kechki", row.Name)

	// A rename under the same id must update in place, not reassign.
	renamed := writeFeed(t, []map[string]any{
		{"name": "edu_type", "value": []map[string]any{
			{"id": 7, "name": "Kechki (yangi)"},
		}},
	})
	stats, err = imp.ImportFilters(context.Background(), renamed)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Updated)

	require.NoError(t, db.First(&row, 7).Error)
	assert.Equal(t, "Kechki (yangi)", row.Name)

	var count int64
	require.NoError(t, db.Model(&model.EducationType{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestImportFiltersSkipsUnusableEntries(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)

	feed := writeFeed(t, []any{
		map[string]any{"name": "no_such_section", "value": []map[string]any{{"name": "x"}}},
		map[string]any{"name": "edu_type", "value": "not a list"},
		map[string]any{"name": "degree", "value": []map[string]any{
			{"name": "   "},
			{"name": "Magistr"},
		}},
	})

	stats, err := imp.ImportFilters(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 3, stats.Skipped)
}

func TestImportUniversitiesIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)
	seedTaxonomies(t, imp)

	feed := writeFeed(t, []map[string]any{
		{
			"id":                      10,
			"full_name_uz":            "Toshkent Axborot Texnologiyalari Universiteti",
			"description_uz":          "Eng yirik IT universiteti",
			"location_uz":             "Toshkent",
			"institution_category_id": 1,
			"has_grant":               true,
			"minimal_tuition_fee":     12000000,
			"maximal_tuition_fee":     18000000,
			"education_type": []map[string]any{
				{"id": 1, "name_uz": "Kunduzgi"},
			},
		},
	})

	stats, err := imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)

	var uni model.University
	require.NoError(t, db.Preload("EducationTypes").Where("id = ?", 10).First(&uni).Error)
	assert.Equal(t, "toshkent-axborot-texnologiyalari-universiteti", uni.Slug)
	assert.True(t, uni.HasGrant)
	require.NotNil(t, uni.LocationID)
	assert.EqualValues(t, 1, *uni.LocationID)
	assert.Len(t, uni.EducationTypes, 1)

	// Second run updates the same row and keeps the slug stable.
	stats, err = imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Created)
	assert.Equal(t, 1, stats.Updated)

	var count int64
	require.NoError(t, db.Model(&model.University{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var again model.University
	require.NoError(t, db.Where("id = ?", 10).First(&again).Error)
	assert.Equal(t, uni.Slug, again.Slug)
}

func TestImportUniversitiesSlugCollision(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)

	feed := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Yangi Asr Universiteti!"},
		{"id": 2, "full_name_uz": "Yangi-Asr Universiteti"},
	})

	stats, err := imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Created)

	var slugs []string
	require.NoError(t, db.Model(&model.University{}).Order("id").Pluck("slug", &slugs).Error)
	assert.Equal(t, []string{"yangi-asr-universiteti", "yangi-asr-universiteti-1"}, slugs)
}

func TestImportUniversitiesSkipsNameless(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)

	feed := writeFeed(t, []map[string]any{
		{"id": 1},
		{"id": 2, "full_name_uz": "Nomli Universitet"},
	})

	stats, err := imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Skipped)
}

func TestImportUniversitiesMediaAttachOnce(t *testing.T) {
	var fetches int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fetches, 1)
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	db := newTestDB(t)
	store, err := media.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	imp := New(db, media.NewFetcher(server.URL), store)

	feed := writeFeed(t, []map[string]any{
		{
			"id":           1,
			"full_name_uz": "Media Universiteti",
			"logo":         "logos/media uni.png",
			"gallery": []string{
				"gallery/building.jpg",
				"gallery/building.jpg",
				"https://example.com/virtual-tour",
			},
		},
	})

	_, err = imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)

	var uni model.University
	require.NoError(t, db.First(&uni, 1).Error)
	assert.Equal(t, "media uni.png", uni.Logo)

	// Duplicate image collapses; the non-image URL lands as a link.
	var items []model.Gallery
	require.NoError(t, db.Where("university_id = ?", uni.ID).Order("id").Find(&items).Error)
	require.Len(t, items, 2)
	assert.Equal(t, "building.jpg", items[0].Image)
	assert.Equal(t, "https://example.com/virtual-tour", items[1].Link)

	firstRun := atomic.LoadInt32(&fetches)
	assert.EqualValues(t, 2, firstRun) // logo + one gallery image

	// Re-running must not touch the network: logo is set, gallery is
	// populated.
	_, err = imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, firstRun, atomic.LoadInt32(&fetches))

	var count int64
	require.NoError(t, db.Model(&model.Gallery{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestImportUniversitiesMediaFetchFailureLeavesFieldUnset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	db := newTestDB(t)
	store, err := media.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	imp := New(db, media.NewFetcher(server.URL), store)

	feed := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Oflayn Universitet", "logo": "logos/missing.png"},
	})

	stats, err := imp.ImportUniversities(context.Background(), feed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)

	var uni model.University
	require.NoError(t, db.First(&uni, 1).Error)
	assert.Empty(t, uni.Logo)
}

func TestImportUniversitiesRelationSync(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)
	seedTaxonomies(t, imp)

	withTypes := writeFeed(t, []map[string]any{
		{
			"id":           1,
			"full_name_uz": "Sinxron Universitet",
			"education_type": []map[string]any{
				{"id": 1, "name_uz": "Kunduzgi"},
				{"id": 2, "name_uz": "Sirtqi"},
			},
		},
	})
	_, err := imp.ImportUniversities(context.Background(), withTypes)
	require.NoError(t, err)

	var uni model.University
	require.NoError(t, db.Preload("EducationTypes").First(&uni, 1).Error)
	assert.Len(t, uni.EducationTypes, 2)

	// Key absent: the relation stays untouched.
	absent := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Sinxron Universitet"},
	})
	_, err = imp.ImportUniversities(context.Background(), absent)
	require.NoError(t, err)

	var untouched model.University
	require.NoError(t, db.Preload("EducationTypes").First(&untouched, 1).Error)
	assert.Len(t, untouched.EducationTypes, 2)

	// Present and empty: the relation clears.
	empty := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Sinxron Universitet", "education_type": []any{}},
	})
	_, err = imp.ImportUniversities(context.Background(), empty)
	require.NoError(t, err)

	var cleared model.University
	require.NoError(t, db.Preload("EducationTypes").First(&cleared, 1).Error)
	assert.Empty(t, cleared.EducationTypes)
}

func TestImportDirectionsSkipsMissingUniversity(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)

	uniFeed := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Bosh Universitet"},
	})
	_, err := imp.ImportUniversities(context.Background(), uniFeed)
	require.NoError(t, err)

	dirFeed := writeFeed(t, []map[string]any{
		{"direction_id": 1, "university_id": 999, "direction_name_uz": "Yetim Yo'nalish"},
		{"direction_id": 2, "university_id": 1, "direction_name_uz": "Dasturiy Injiniring"},
	})

	stats, err := imp.ImportDirections(context.Background(), dirFeed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)
	assert.Equal(t, 1, stats.Skipped)

	var count int64
	require.NoError(t, db.Model(&model.Direction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var dir model.Direction
	require.NoError(t, db.First(&dir).Error)
	assert.Equal(t, "Dasturiy Injiniring", dir.DirectionName)
	assert.Equal(t, "active", dir.Status)
}

func TestImportDirectionsTuitionFeeUpsert(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)
	seedTaxonomies(t, imp)

	uniFeed := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Bosh Universitet"},
	})
	_, err := imp.ImportUniversities(context.Background(), uniFeed)
	require.NoError(t, err)

	dirFeed := func(localFee uint) string {
		return writeFeed(t, []map[string]any{
			{
				"direction_id":      1,
				"university_id":     1,
				"direction_name_uz": "Dasturiy Injiniring",
				"tuition_fees": []map[string]any{
					{
						"education_type_id":      1,
						"education_type_name_uz": "Kunduzgi",
						"academic_year":          "2025-2026",
						"local_tuition_fee":      localFee,
					},
					{
						// Unresolvable education type: the fee is dropped,
						// the run continues.
						"education_type_name_uz": "Mavjud emas",
						"local_tuition_fee":      1,
					},
				},
			},
		})
	}

	_, err = imp.ImportDirections(context.Background(), dirFeed(15000000))
	require.NoError(t, err)

	var fees []model.TuitionFee
	require.NoError(t, db.Find(&fees).Error)
	require.Len(t, fees, 1)
	require.NotNil(t, fees[0].LocalTuitionFee)
	assert.EqualValues(t, 15000000, *fees[0].LocalTuitionFee)

	// A re-run with a new amount updates the pair's single row.
	_, err = imp.ImportDirections(context.Background(), dirFeed(16500000))
	require.NoError(t, err)

	require.NoError(t, db.Find(&fees).Error)
	require.Len(t, fees, 1)
	require.NotNil(t, fees[0].LocalTuitionFee)
	assert.EqualValues(t, 16500000, *fees[0].LocalTuitionFee)
	assert.Equal(t, "2025-2026", fees[0].AcademicYear)
}

func TestImportDirectionsIdempotentAndSlugged(t *testing.T) {
	db := newTestDB(t)
	imp := New(db, nil, nil)

	uniFeed := writeFeed(t, []map[string]any{
		{"id": 1, "full_name_uz": "Bosh Universitet"},
	})
	_, err := imp.ImportUniversities(context.Background(), uniFeed)
	require.NoError(t, err)

	dirFeed := writeFeed(t, []map[string]any{
		{"direction_id": 5, "university_id": 1, "direction_name_uz": "Iqtisodiyot", "is_promoted": 1},
	})

	stats, err := imp.ImportDirections(context.Background(), dirFeed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Created)

	var dir model.Direction
	require.NoError(t, db.First(&dir, 5).Error)
	assert.Equal(t, "bosh-universitet-iqtisodiyot", dir.DirectionSlug)
	assert.Equal(t, 1, dir.IsPromoted)

	stats, err = imp.ImportDirections(context.Background(), dirFeed)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Updated)

	var count int64
	require.NoError(t, db.Model(&model.Direction{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
