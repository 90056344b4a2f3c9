package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsTranT1706/movie-prenium-sub001/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, "aggregator", cfg.Service.Name)
	assert.Equal(t, 8080, cfg.Service.Port)
	assert.Equal(t, "kkphim", cfg.Providers.Primary)
	assert.Equal(t, "https://phimapi.com", cfg.Providers.KKPhim.BaseURL)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.Metadata.BaseURL)
	assert.Equal(t, "vi-VN", cfg.Metadata.Language)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TitleTTL)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AGGREGATOR_SERVICE_PORT", "9090")
	t.Setenv("AGGREGATOR_PROVIDERS_PRIMARY", "nguonc")
	t.Setenv("AGGREGATOR_DATABASE_HOST", "db.internal")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Service.Port)
	assert.Equal(t, "nguonc", cfg.Providers.Primary)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestValidate(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())

	cfg.Service.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Database.Host = ""
	assert.Error(t, cfg.Validate())

	cfg = config.Default()
	cfg.Providers.Primary = ""
	assert.Error(t, cfg.Validate())
}

func TestListenAddress(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, ":8080", cfg.Service.ListenAddress())
}
