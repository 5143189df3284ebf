package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Init loads .env and fails fast on missing required settings. Secret values
// are read again by main and handed to constructors; they are never logged.
func Init() {
	if err := godotenv.Load(); err != nil {
		Logger.Info("No .env file found, using system environment variables")
	}

	required := []string{
		"DB_DSN",
		"REDIS_ADDR",
		"JWT_SECRET",
		"VAULT_MASTER_KEY",
		"QUEUE_URL",
		"QUEUE_TOKEN",
		"PUBLIC_BASE_URL",
	}
	for _, name := range required {
		if os.Getenv(name) == "" {
			Logger.Fatal(name + " is not set")
		}
	}
}
