package utilities

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelFromString(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, levelFromString(in), in)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("LOG_DEV", "1")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FILE", "")
	t.Setenv("LOG_MAX_AGE", "48h")

	cfg := ConfigFromEnv()
	assert.True(t, cfg.Dev)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "48h0m0s", cfg.MaxAge.String())
}

func TestInit_WithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	lg, err := Init(Config{Level: "info", File: path})
	require.NoError(t, err)
	lg.Info("hello")
	_ = lg.Sync()
	assert.FileExists(t, path)
}

func TestIDGenerator(t *testing.T) {
	g := NewIDGenerator(3)
	a, b := g.Next(), g.Next()
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)

	// node ids above 1023 are rejected by snowflake, ksuid is used instead
	fallback := NewIDGenerator(5000)
	assert.Len(t, fallback.Next(), 27)

	var nilGen *IDGenerator
	assert.NotEmpty(t, nilGen.Next())
}

func TestWriteEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusForbidden, "forbidden", map[string]string{"authorization": "false"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "forbidden", env.Msg)

	rec = httptest.NewRecorder()
	WriteOK(rec, http.StatusOK, "")
	assert.JSONEq(t, `{"status":0,"msg":"","data":""}`, rec.Body.String())
}
