package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "8080", cfg.SERVER_PORT)
	require.Equal(t, "wishmall.db", cfg.DB_PATH)
	require.Equal(t, "info", cfg.LOG_LEVEL)
	require.Nil(t, cfg.KAFKA_BROKERS)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("KAFKA_BROKERS", "kafka1:9092, kafka2:9092,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.SERVER_PORT)
	require.Equal(t, "/tmp/test.db", cfg.DB_PATH)
	require.Equal(t, []string{"kafka1:9092", "kafka2:9092"}, cfg.KAFKA_BROKERS)
}

func TestCSV(t *testing.T) {
	require.Nil(t, csv(""))
	require.Equal(t, []string{"a"}, csv("a"))
	require.Equal(t, []string{"a", "b"}, csv(" a , b "))
}

func TestInitDBSqlite(t *testing.T) {
	cfg := &Config{DB_PATH: t.TempDir() + "/test.db"}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	require.True(t, db.Migrator().HasTable("users"))
	require.True(t, db.Migrator().HasTable("items"))
	require.True(t, db.Migrator().HasTable("cart_items"))
	require.True(t, db.Migrator().HasTable("orders"))
	require.True(t, db.Migrator().HasTable("order_items"))
	require.True(t, db.Migrator().HasTable("refresh_tokens"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
