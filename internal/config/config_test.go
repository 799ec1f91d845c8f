package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
System:
  logLevel: DEBUG
Agent:
  serverUrl: http://central:8000/upload
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Agent.Interval())
	assert.Equal(t, "./agent-state.json", cfg.Agent.StateFile)
	assert.NotEmpty(t, cfg.Agent.Hostname)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "./received_logs", cfg.Server.ReceivedDir)
	assert.Equal(t, "GOOD_LOG", cfg.Server.BenignLabel)
	assert.Equal(t, "GOOD_LOG", cfg.Classifier.DefaultLabel)
	assert.Equal(t, DefaultMaxUploadSize, cfg.Server.MaxUploadSize)
	assert.Equal(t, "udp", cfg.Server.Gelf.Mode)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("CENTRAL_HOST", "logs.internal")
	path := writeConfig(t, `
Agent:
  serverUrl: http://${CENTRAL_HOST}:8000/upload
  hostname: web01
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://logs.internal:8000/upload", cfg.Agent.ServerURL)
	assert.Equal(t, "web01", cfg.Agent.Hostname)
}

func TestLoad_ParsesClassifierRules(t *testing.T) {
	path := writeConfig(t, `
Classifier:
  defaultLabel: GOOD_LOG
  rules:
    - pattern: "auth failure"
      label: BAD_LOG_AUTH_5
    - pattern: "segfault"
      label: BAD_LOG_CRASH_9
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Len(t, cfg.Classifier.Rules, 2)
	assert.Equal(t, "BAD_LOG_AUTH_5", cfg.Classifier.Rules[0].Label)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := writeConfig(t, "System: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"TRACE", logrus.TraceLevel},
		{"debug", logrus.DebugLevel},
		{"WARNING", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"bogus", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := &SystemConfig{LogLevel: tt.level}
			assert.Equal(t, tt.want, cfg.GetLogLevel())
		})
	}
}
