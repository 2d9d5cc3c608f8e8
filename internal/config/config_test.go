package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	assert.NotEmpty(t, GetVersion())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/recipes")
	t.Setenv("SPOONACULAR_API_KEY", "secret")

	cfg, err := Load([]string{})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.CORSOrigins)
	assert.Equal(t, "postgres://localhost/recipes", cfg.DatabaseURL)
	assert.Equal(t, "secret", cfg.SpoonacularAPIKey)
	assert.Equal(t, "https://api.spoonacular.com/recipes", cfg.SpoonacularBaseURL)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, 1000, cfg.CacheSize)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/recipes")
	t.Setenv("SPOONACULAR_API_KEY", "secret")
	t.Setenv("CACHE_SIZE", "50")

	cfg, err := Load([]string{"--cache-size", "200", "--cache-ttl", "5m", "--redis-addr", "localhost:6379"})
	require.NoError(t, err)

	assert.Equal(t, 200, cfg.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}

func TestLoad_MissingRequired(t *testing.T) {
	// t.Setenv restores the original values; Unsetenv makes them absent meanwhile.
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SPOONACULAR_API_KEY", "")
	os.Unsetenv("DATABASE_URL")
	os.Unsetenv("SPOONACULAR_API_KEY")

	cfg, err := Load([]string{})
	assert.Error(t, err)
	assert.Nil(t, cfg)

	t.Setenv("DATABASE_URL", "")
	t.Setenv("SPOONACULAR_API_KEY", "")
	cfg, err = Load([]string{})
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate(t *testing.T) {
	valid := Config{DatabaseURL: "postgres://db", SpoonacularAPIKey: "k", UpstreamTimeout: time.Second, CacheSize: 10, CacheTTL: time.Minute}
	assert.NoError(t, valid.Validate())

	negativeSize := valid
	negativeSize.CacheSize = -1
	assert.Error(t, negativeSize.Validate())

	noTimeout := valid
	noTimeout.UpstreamTimeout = 0
	assert.Error(t, noTimeout.Validate())
}
