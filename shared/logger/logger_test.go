package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "auth-service", "production")

	l.Info().Str("user_id", "1").Msg("user logged in")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "auth-service", entry["service"])
	assert.Equal(t, "user logged in", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestNew_DebugSuppressedOutsideDevelopment(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(&buf, "api-gateway", "production")

	l.Debug().Msg("noise")
	assert.Empty(t, buf.String())
}
