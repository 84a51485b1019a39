package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestNew_VerboseEmitsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug().Str("dir", "/repo").Msg("exec")
	assert.Contains(t, buf.String(), "exec")
	assert.Contains(t, buf.String(), "/repo")
}

func TestNew_QuietDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

// TestWithLogger verifies that the logger can be recovered with zerolog.Ctx.
func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, true))

	zerolog.Ctx(ctx).Debug().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestVerboseFromEnv(t *testing.T) {
	t.Setenv(EnvDebug, "true")
	assert.True(t, VerboseFromEnv())

	t.Setenv(EnvDebug, "1")
	assert.True(t, VerboseFromEnv())

	t.Setenv(EnvDebug, "no")
	assert.False(t, VerboseFromEnv())
}
