package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/chatbilling/pkg/environment"
	"github.com/dmitrymomot/chatbilling/pkg/logger"
)

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	t.Run("development writes debug text", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment("development", "chatbilling"),
			logger.WithOutput(buf),
		)
		log.Debug("usage recorded", logger.UserID("u-1"), logger.Tier("pro"))

		out := buf.String()
		assert.Contains(t, out, "DEBUG")
		assert.Contains(t, out, "service=chatbilling")
		assert.Contains(t, out, "env=development")
		assert.Contains(t, out, "tier=pro")
	})

	t.Run("unknown environment falls back to development", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment("qa", "chatbilling"),
			logger.WithOutput(buf),
		)
		log.Debug("msg")
		assert.Contains(t, buf.String(), "env=development")
	})

	for _, env := range []string{"production", "prod"} {
		t.Run(env+" writes info json", func(t *testing.T) {
			t.Parallel()
			buf := &bytes.Buffer{}
			log := logger.New(
				logger.WithEnvironment(env, "chatbilling"),
				logger.WithOutput(buf),
			)
			log.Debug("dropped")
			log.Info("subscription renewed", logger.BundleID("b-1"))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "chatbilling", entry["service"])
			assert.Equal(t, string(environment.Production), entry["env"])
			assert.Equal(t, "b-1", entry["bundle_id"])
		})
	}

	t.Run("staging", func(t *testing.T) {
		t.Parallel()
		buf := &bytes.Buffer{}
		log := logger.New(
			logger.WithEnvironment("stage", "chatbilling"),
			logger.WithOutput(buf),
		)
		log.Info("msg")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, string(environment.Staging), entry["env"])
	})
}

func TestEnvironmentExtractor(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	log := logger.New(
		logger.WithOutput(buf),
		logger.WithContextExtractors(environment.LoggerExtractor()),
	)
	ctx := environment.WithContext(context.Background(), environment.Production)
	log.InfoContext(ctx, "msg")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "production", entry["env"])

	buf.Reset()
	log.Log(context.Background(), slog.LevelInfo, "no env")
	assert.NotContains(t, buf.String(), `"env"`)
}
