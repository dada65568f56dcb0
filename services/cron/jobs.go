package cron

import (
	"context"
	"log"
	"time"

	"github.com/shDavlatbek/uni-list/services/catalog"
)

// RefreshFilterOptions rebuilds the filter-options cache from the database.
func (m *CronManager) RefreshFilterOptions() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := catalog.RefreshOptions(ctx, m.db, m.cache); err != nil {
		log.Printf("filter options refresh failed: %v", err)
		return
	}
	log.Println("Filter options cache refreshed")
}
