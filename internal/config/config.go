package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Port        string
	DatabaseDSN string
	Env         string

	// Operator credentials for the single-user login gate. The password
	// may be a bcrypt hash ($2...) or, for development, plaintext.
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment with sensible defaults.
// Precedence: explicit env var > .env file (if loaded by caller) > default.
func Load() Config {
	return Config{
		Port:          getEnv("PORT", "8080"),
		DatabaseDSN:   getEnv("DATABASE_DSN", ""),
		Env:           getEnv("APP_ENV", "development"),
		AdminEmail:    getEnv("ADMIN_EMAIL", "admin@billing.local"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

var logger *logrus.Logger

// Logger returns the shared structured logger.
func Logger() *logrus.Logger {
	return logger
}

func init() {
	logger = logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "" {
		logger.SetFormatter(&logrus.TextFormatter{})
		logger.SetLevel(logrus.DebugLevel)
	}
}
