package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// ConfigEnvKeys lists every variable the config loader reads, with and
// without its section prefix.
var ConfigEnvKeys = []string{
	"PORT", "SERVER_PORT",
	"READ_TIMEOUT", "SERVER_READ_TIMEOUT",
	"WRITE_TIMEOUT", "SERVER_WRITE_TIMEOUT",
	"IDLE_TIMEOUT", "SERVER_IDLE_TIMEOUT",
	"SHUTDOWN_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT",
	"JSON_BODY_LIMIT", "SERVER_JSON_BODY_LIMIT",
	"DATABASE_CLOUD", "DATABASE_DATABASE_CLOUD",
	"DATABASE_NAME", "DATABASE_DATABASE_NAME",
	"DATABASE_CONNECT_TIMEOUT", "DATABASE_DATABASE_CONNECT_TIMEOUT",
	"ALLOWED_ORIGINS", "SECURITY_ALLOWED_ORIGINS",
	"RATE_LIMIT_ENABLED", "SECURITY_RATE_LIMIT_RATE_LIMIT_ENABLED",
	"RATE_LIMIT_RPS", "SECURITY_RATE_LIMIT_RATE_LIMIT_RPS",
	"RATE_LIMIT_BURST", "SECURITY_RATE_LIMIT_RATE_LIMIT_BURST",
	"LOG_LEVEL", "LOGGING_LOG_LEVEL",
	"LOG_OUTPUT", "LOGGING_LOG_OUTPUT",
	"LOG_FILE_PATH", "LOGGING_LOG_FILE_PATH",
	"LOG_DEVELOPMENT", "LOGGING_LOG_DEVELOPMENT",
	"UPLOADS_DIR", "PATHS_UPLOADS_DIR",
	"TRACING_ENABLED", "TRACING_TRACING_ENABLED",
	"TRACING_EXPORTER", "TRACING_TRACING_EXPORTER",
	"TRACING_SAMPLE_RATIO", "TRACING_TRACING_SAMPLE_RATIO",
}

// IsolateEnv unsets the given variables for the duration of the test and
// restores their original state afterwards, including values written by
// code under test (e.g. a dotenv loader).
func IsolateEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// WriteEnvFile writes a dotenv file into a temp dir and returns its path.
func WriteEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	return path
}
