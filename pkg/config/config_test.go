package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := fromViper(v)

	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "Europe/Moscow", cfg.Calendar.DefaultTimezone)
	assert.Equal(t, "other work", cfg.Calendar.DefaultType)
	assert.Equal(t, 50, cfg.History.CompressThreshold)
	assert.Equal(t, "llama3-70b-8192", cfg.LLM.Model)
	assert.Equal(t, 0.5, cfg.LLM.Temperature)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 8*24*time.Hour, cfg.JWT.Expiration)
	assert.Equal(t, []int{500, 1000, 2000, 5000}, cfg.Recommend.Radii)
	assert.Equal(t, "ego-ai-bot/1.0", cfg.Geo.UserAgent)
	assert.False(t, cfg.Google.Enabled())
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("DB_DRIVER", "SQLITE3")
	v.Set("DEFAULT_TIMEZONE", "UTC")
	v.Set("RECOMMEND_RADII", "300, 900")
	v.Set("LLM_TIMEOUT", "not-a-duration")
	cfg := fromViper(v)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "UTC", cfg.Calendar.DefaultTimezone)
	assert.Equal(t, []int{300, 900}, cfg.Recommend.Radii)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a, ,b "))
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []int{1}, parseInts("x", []int{1}))
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
}
