package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644))
	return dir
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: debug
jwt:
  secret: short
  expire_hours: 2
database:
  driver: sqlite
  sqlite_path: `+filepath.Join(t.TempDir(), "db", "test.db")+`
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 10, cfg.Gamification.XPPerProblem)
	assert.Equal(t, 100, cfg.Gamification.XPPerLevel)
	assert.Equal(t, 80, cfg.Gamification.MasteryThreshold)
	assert.Equal(t, 91, cfg.Gamification.ActivityDays)
	assert.Equal(t, 5, cfg.Gamification.RecommendLimit)
	assert.Equal(t, "UTC", cfg.Gamification.Timezone)
	assert.Equal(t, dir, cfg.Path)
	assert.DirExists(t, filepath.Dir(cfg.Database.SQLitePath))
}

func TestLoadConfigRejectsWeakSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: release
jwt:
  secret: too-short
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret is too short")
}

func TestGamificationLocation(t *testing.T) {
	assert.Equal(t, time.UTC, GamificationConfig{}.Location())
	assert.Equal(t, "UTC", GamificationConfig{Timezone: "UTC"}.Location().String())
	assert.Equal(t, "Asia/Tokyo", GamificationConfig{Timezone: "Asia/Tokyo"}.Location().String())
}

func TestLoadConfigRejectsInvalidTimezone(t *testing.T) {
	dir := writeConfig(t, `
gamification:
  timezone: Not/AZone
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid gamification timezone")
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 168*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, 10, cfg.Gamification.XPPerProblem)
	assert.Equal(t, time.UTC, cfg.Gamification.Location())
}
