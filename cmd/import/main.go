package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/shDavlatbek/uni-list/config"
	"github.com/shDavlatbek/uni-list/database"
	"github.com/shDavlatbek/uni-list/importer"
	"github.com/shDavlatbek/uni-list/services/media"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: import <filters|universities|directions> <file.json>")
	os.Exit(2)
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	if len(os.Args) != 3 {
		usage()
	}
	command, path := os.Args[1], os.Args[2]

	getEnv, err := config.Get()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database connection using GORM
	store, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	gormDB := store.GetDB().(*gorm.DB)

	mediaStore, err := buildMediaStore(getEnv)
	if err != nil {
		log.Fatalf("Failed to set up media storage: %v", err)
	}

	imp := importer.New(gormDB, media.NewFetcher(getEnv.CDN_BASE_URL), mediaStore)
	ctx := context.Background()

	var stats importer.Stats
	switch command {
	case "filters":
		stats, err = imp.ImportFilters(ctx, path)
	case "universities":
		stats, err = imp.ImportUniversities(ctx, path)
	case "directions":
		stats, err = imp.ImportDirections(ctx, path)
	default:
		usage()
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Printf("Import of %s completed: %s\n", command, stats)
}

func buildMediaStore(getEnv *config.EnviornmentVariable) (media.Store, error) {
	if getEnv.MEDIA_BACKEND == "spaces" {
		return media.NewSpacesStore(media.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
			CDNURL:    getEnv.SPACES_CDN_URL,
			Prefix:    getEnv.SPACES_PREFIX,
		})
	}
	return media.NewLocalStore(getEnv.MEDIA_DIR)
}
