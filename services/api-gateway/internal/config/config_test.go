package config

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/taskboard-api/shared/auth"
)

func setKey(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", auth.MinSigningKeyBytes))))
}

func TestLoad_Defaults(t *testing.T) {
	setKey(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"/api/auth/", "/api/password/"}, cfg.PublicPathPrefixes)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "localhost:8081", cfg.AuthService().Host)
	assert.Len(t, cfg.SigningKey(), auth.MinSigningKeyBytes)
}

func TestLoad_PublicPrefixesTrimmed(t *testing.T) {
	setKey(t)
	t.Setenv("PUBLIC_PATH_PREFIXES", "/api/auth/, ,/api/public/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"/api/auth/", "/api/public/"}, cfg.PublicPathPrefixes)
}

func TestLoad_ShortKey(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", base64.StdEncoding.EncodeToString([]byte("too short")))

	_, err := Load()
	require.ErrorIs(t, err, auth.ErrSigningKeyTooShort)
}

func TestLoad_InvalidUpstream(t *testing.T) {
	setKey(t)
	t.Setenv("TASK_SERVICE_URL", "not a url")

	_, err := Load()
	require.ErrorContains(t, err, "TASK_SERVICE_URL")
}
