package application

import (
	"path/filepath"
	"testing"
)

func TestNewLoggerEnvironments(t *testing.T) {
	for _, env := range []string{"development", "Production"} {
		l, err := NewLogger(&LoggerConfig{Environment: env,
			Path: filepath.Join(t.TempDir(), "client.log")})
		if err != nil {
			t.Fatal("Expect", env, "to be accepted", "got", err)
		}
		l.With("request_id", "r1").Named("test").Info("hello", "k", "v")
	}
	if _, err := NewLogger(&LoggerConfig{Environment: "staging"}); err == nil {
		t.Fatal("Expect an error for an unknown environment")
	}
	if _, err := NewLogger(nil); err != nil {
		t.Fatal("Expect default config to be valid", "got", err)
	}
}
