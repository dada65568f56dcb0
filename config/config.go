package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadENV loads variables from .env unless GO_ENV says otherwise.
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV       string
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	PORT         int
	// Redis Configuration
	REDIS_URL string
	// Base URL for resolving relative media paths in the feeds
	CDN_BASE_URL string
	// Media storage: "local" writes under MEDIA_DIR, "spaces" uploads to
	// an S3-compatible bucket
	MEDIA_BACKEND      string
	MEDIA_DIR          string
	SPACES_ACCESS_KEY  string
	SPACES_SECRET_KEY  string
	SPACES_BUCKET      string
	SPACES_REGION      string
	SPACES_ENDPOINT    string
	SPACES_CDN_URL     string
	SPACES_PREFIX      string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Database defaults
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}

	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}

	cdnBase := os.Getenv("CDN_BASE_URL")
	if cdnBase == "" {
		cdnBase = "https://api.mentalaba.uz/"
	}

	mediaBackend := os.Getenv("MEDIA_BACKEND")
	if mediaBackend == "" {
		mediaBackend = "local"
	}

	mediaDir := os.Getenv("MEDIA_DIR")
	if mediaDir == "" {
		mediaDir = "media"
	}

	envVariables := &EnviornmentVariable{
		GO_ENV:       os.Getenv("GO_ENV"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      dbHost,
		DB_PORT:      dbPort,
		DB_SSL_MODE:  os.Getenv("DB_SSL_MODE"),
		PORT:         port,
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// Feeds & media
		CDN_BASE_URL:      cdnBase,
		MEDIA_BACKEND:     mediaBackend,
		MEDIA_DIR:         mediaDir,
		SPACES_ACCESS_KEY: os.Getenv("SPACES_ACCESS_KEY"),
		SPACES_SECRET_KEY: os.Getenv("SPACES_SECRET_KEY"),
		SPACES_BUCKET:     os.Getenv("SPACES_BUCKET"),
		SPACES_REGION:     os.Getenv("SPACES_REGION"),
		SPACES_ENDPOINT:   os.Getenv("SPACES_ENDPOINT"),
		SPACES_CDN_URL:    os.Getenv("SPACES_CDN_URL"),
		SPACES_PREFIX:     os.Getenv("SPACES_PREFIX"),
	}

	return envVariables, nil
}
