package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App AppConfig
}

type AppConfig struct {
	APIBaseURL         string
	SessionFilePath    string
	LogFilePath        string
	Environment        string
	HTTPTimeoutSeconds int
	SnapshotTTLMinutes int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			APIBaseURL:         getEnv("API_BASE_URL", "http://localhost:3000/api"),
			SessionFilePath:    getEnv("SESSION_FILE_PATH", defaultSessionPath()),
			LogFilePath:        getEnv("LOG_FILE_PATH", "research-assistant.log"),
			Environment:        getEnv("GO_ENV", "development"),
			HTTPTimeoutSeconds: getEnvAsInt("HTTP_TIMEOUT_SECONDS", 120),
			SnapshotTTLMinutes: getEnvAsInt("SNAPSHOT_TTL_MINUTES", 5),
		},
	}
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "session.json"
	}
	return filepath.Join(home, ".research-assistant", "session.json")
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
