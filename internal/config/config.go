package config

import (
	"os"
)

type Config struct {
	Port  string
	DBUrl string

	AWSRegion          string
	AWSBucket          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	EmbedAPIURL string
	EmbedAPIKey string
	EmbedModel  string
}

func LoadConfig() *Config {
	return &Config{
		Port:  getenv("PORT", "8000"),
		DBUrl: os.Getenv("DATABASE_URL"),

		AWSRegion:          os.Getenv("AWS_REGION"),
		AWSBucket:          os.Getenv("AWS_BUCKET_NAME"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),

		EmbedAPIURL: os.Getenv("EMBED_API_URL"),
		EmbedAPIKey: os.Getenv("EMBED_API_KEY"),
		EmbedModel:  getenv("EMBED_MODEL", "text-embedding-3-small"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
