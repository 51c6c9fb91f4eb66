package config

import (
	"os"
	"strings"

	"gorm.io/gorm"

	"github.com/chromium-bot/chromium/src/data"
)

type Config struct {
	Token       string
	MySQLDSN    string
	RedisURL    string
	APIAddr     string
	JWTSecret   string
	CORSOrigins []string
}

// Load reads configuration from the settings table with environment
// fallbacks. LoadSettings must have run against db first; a nil db skips
// the table and uses the environment only.
func Load(db *gorm.DB) Config {
	fromDB := func(name, envKey string) string {
		if db != nil {
			if v := data.GetSetting(name); v != "" {
				return v
			}
		}
		return os.Getenv(envKey)
	}

	origins := getenv("CORS_ORIGINS", "http://localhost:3000")

	return Config{
		Token:       fromDB("discord_token", "DISCORD_TOKEN"),
		MySQLDSN:    data.GetMySQLDSN(),
		RedisURL:    getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		APIAddr:     getenv("API_ADDR", ":8080"),
		JWTSecret:   fromDB("jwt_secret", "JWT_SECRET"),
		CORSOrigins: strings.Split(origins, ","),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
