package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/config"
)

type renewalConfig struct {
	Schedule    string        `env:"TEST_RENEWAL_SCHEDULE" envDefault:"@daily"`
	SuccessRate float64       `env:"TEST_RENEWAL_SUCCESS_RATE" envDefault:"0.8"`
	Timeout     time.Duration `env:"TEST_RENEWAL_TIMEOUT" envDefault:"5m"`
}

type answerConfig struct {
	MinDelay time.Duration `env:"TEST_ANSWER_MIN_DELAY" envDefault:"500ms"`
	MaxDelay time.Duration `env:"TEST_ANSWER_MAX_DELAY" envDefault:"1500ms"`
}

func writeEnvFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		// t.Setenv registers the restore; Unsetenv clears the value for the test.
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadEnvFiles(t *testing.T) {
	unsetenv(t, "TEST_RENEWAL_SCHEDULE", "TEST_RENEWAL_SUCCESS_RATE", "TEST_RENEWAL_TIMEOUT")

	base := writeEnvFile(t, ".env", "TEST_RENEWAL_SCHEDULE=@hourly\nTEST_RENEWAL_SUCCESS_RATE=0.5\n")
	override := writeEnvFile(t, ".env.local", "TEST_RENEWAL_SUCCESS_RATE=1\n")

	require.NoError(t, config.LoadEnvFiles(base, override))

	var cfg renewalConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "@hourly", cfg.Schedule)
	assert.Equal(t, 1.0, cfg.SuccessRate, "later file wins")
	assert.Equal(t, 5*time.Minute, cfg.Timeout, "unset value keeps its default")
}

func TestLoadEnvFiles_DropsCache(t *testing.T) {
	unsetenv(t, "TEST_ANSWER_MIN_DELAY", "TEST_ANSWER_MAX_DELAY")

	var before answerConfig
	require.NoError(t, config.Load(&before))
	assert.Equal(t, 500*time.Millisecond, before.MinDelay)

	require.NoError(t, config.LoadEnvFiles(writeEnvFile(t, ".env", "TEST_ANSWER_MIN_DELAY=10ms\n")))

	var after answerConfig
	require.NoError(t, config.Load(&after))
	assert.Equal(t, 10*time.Millisecond, after.MinDelay)
	assert.Equal(t, 1500*time.Millisecond, after.MaxDelay)
}

func TestLoadEnvFiles_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := config.LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})

	t.Run("no files is a no-op", func(t *testing.T) {
		assert.NoError(t, config.LoadEnvFiles())
	})
}

func TestMustLoad(t *testing.T) {
	unsetenv(t, "CFGTEST_JWT_SECRET")
	config.Reset()

	assert.Panics(t, func() {
		var cfg secretConfig
		config.MustLoad(&cfg)
	})

	t.Setenv("CFGTEST_JWT_SECRET", "set")
	config.Reset()
	assert.NotPanics(t, func() {
		var cfg secretConfig
		config.MustLoad(&cfg)
		assert.Equal(t, "set", cfg.Secret)
	})
}
