package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gemsimce/pkg/config"
)

type cachedConfig struct {
	Secret string `env:"CFG_TEST_CACHED_SECRET" envDefault:"first"`
}

type parsedConfig struct {
	Addr    string        `env:"CFG_TEST_ADDR" envDefault:":8080"`
	Limit   int           `env:"CFG_TEST_LIMIT" envDefault:"20"`
	Enforce bool          `env:"CFG_TEST_ENFORCE" envDefault:"true"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"60s"`
	Origins []string      `env:"CFG_TEST_ORIGINS" envDefault:"*" envSeparator:","`
}

type requiredConfig struct {
	Secret string `env:"CFG_TEST_REQUIRED_SECRET,required"`
}

func TestParse(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg parsedConfig
		require.NoError(t, config.Parse(&cfg))
		assert.Equal(t, ":8080", cfg.Addr)
		assert.Equal(t, 20, cfg.Limit)
		assert.True(t, cfg.Enforce)
		assert.Equal(t, time.Minute, cfg.Timeout)
		assert.Equal(t, []string{"*"}, cfg.Origins)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("CFG_TEST_ADDR", ":9090")
		t.Setenv("CFG_TEST_LIMIT", "5")
		t.Setenv("CFG_TEST_ENFORCE", "false")
		t.Setenv("CFG_TEST_TIMEOUT", "2s")
		t.Setenv("CFG_TEST_ORIGINS", "https://gems.app,http://localhost:5173")

		var cfg parsedConfig
		require.NoError(t, config.Parse(&cfg))
		assert.Equal(t, ":9090", cfg.Addr)
		assert.Equal(t, 5, cfg.Limit)
		assert.False(t, cfg.Enforce)
		assert.Equal(t, 2*time.Second, cfg.Timeout)
		assert.Equal(t, []string{"https://gems.app", "http://localhost:5173"}, cfg.Origins)
	})

	t.Run("invalid value", func(t *testing.T) {
		t.Setenv("CFG_TEST_LIMIT", "many")
		var cfg parsedConfig
		assert.ErrorIs(t, config.Parse(&cfg), config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		assert.ErrorIs(t, config.Parse[parsedConfig](nil), config.ErrNilPointer)
	})
}

func TestLoad(t *testing.T) {
	t.Run("caches per type", func(t *testing.T) {
		t.Setenv("CFG_TEST_CACHED_SECRET", "first")
		var a cachedConfig
		require.NoError(t, config.Load(&a))
		assert.Equal(t, "first", a.Secret)

		t.Setenv("CFG_TEST_CACHED_SECRET", "second")
		var b cachedConfig
		require.NoError(t, config.Load(&b))
		assert.Equal(t, "first", b.Secret, "second load must come from cache")
	})

	t.Run("failed load is retried", func(t *testing.T) {
		os.Unsetenv("CFG_TEST_REQUIRED_SECRET")
		var cfg requiredConfig
		require.ErrorIs(t, config.Load(&cfg), config.ErrParsingConfig)

		t.Setenv("CFG_TEST_REQUIRED_SECRET", "s3cret")
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "s3cret", cfg.Secret)
	})

	t.Run("must load panics", func(t *testing.T) {
		os.Unsetenv("CFG_TEST_REQUIRED_SECRET")
		type otherRequired struct {
			Value string `env:"CFG_TEST_OTHER_REQUIRED,required"`
		}
		assert.Panics(t, func() {
			var cfg otherRequired
			config.MustLoad(&cfg)
		})
	})
}
