package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// loadDotEnv loads environment variables from .env/.env.local, stopping at
// the first file that parses. Existing process variables are never
// overwritten. A missing file is not an error.
func loadDotEnv() {
	for _, name := range []string{".env", ".env.local"} {
		if err := godotenv.Load(name); err == nil {
			slog.Debug("Loaded environment variables", "file", name)
			return
		}
	}
}
