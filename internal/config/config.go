package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/minjukim/wishmall/internal/models"
)

type Config struct {
	SERVER_PORT    string
	DB_PATH        string
	DATABASE_URL   string
	ES_URL         string
	ES_USER        string
	ES_PASSWORD    string
	JWT_SECRET     string
	REFRESH_SECRET string
	KAFKA_BROKERS  []string
	LOG_LEVEL      string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		SERVER_PORT:    envDefault("SERVER_PORT", "8080"),
		DB_PATH:        envDefault("DB_PATH", "wishmall.db"),
		DATABASE_URL:   os.Getenv("DATABASE_URL"),
		ES_URL:         os.Getenv("ES_URL"),
		ES_USER:        os.Getenv("ES_USER"),
		ES_PASSWORD:    os.Getenv("ES_PASSWORD"),
		JWT_SECRET:     os.Getenv("JWT_SECRET"),
		REFRESH_SECRET: os.Getenv("REFRESH_SECRET"),
		KAFKA_BROKERS:  csv(os.Getenv("KAFKA_BROKERS")),
		LOG_LEVEL:      envDefault("LOG_LEVEL", "info"),
	}

	return config, nil
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func csv(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// InitDB opens postgres when DATABASE_URL is set, otherwise an embedded
// sqlite file at DB_PATH.
func InitDB(configuration *Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if configuration.DATABASE_URL != "" {
		db, err = gorm.Open(postgres.Open(configuration.DATABASE_URL), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(configuration.DB_PATH), &gorm.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.RefreshToken{}, &models.Item{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
