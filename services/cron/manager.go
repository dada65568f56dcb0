package cron

import (
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/utils/cache"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron  *cron.Cron
	db    *gorm.DB
	cache *cache.RedisCache
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, redisCache *cache.RedisCache) *CronManager {
	return &CronManager{
		cron:  cron.New(),
		db:    db,
		cache: redisCache,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

func (m *CronManager) registerJobs() error {
	// Every 10 minutes: rebuild the cached filter options so listings
	// pick up taxonomy/price changes from imports.
	_, err := m.cron.AddFunc("*/10 * * * *", m.RefreshFilterOptions)
	return err
}
