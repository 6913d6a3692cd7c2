package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestSessionEntryFields(t *testing.T) {
	log := New("quiz-service", "debug")
	var buf bytes.Buffer
	log.SetOutput(&buf)

	log.WithSession("s1", "quiz-1", "u1").Info("quiz session started")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected json log line: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{
		"message":    "quiz session started",
		"level":      "info",
		"service":    "quiz-service",
		"session_id": "s1",
		"quiz_id":    "quiz-1",
		"user_id":    "u1",
	} {
		if line[key] != want {
			t.Fatalf("field %s: expected %q, got %v", key, want, line[key])
		}
	}
	if _, ok := line["timestamp"]; !ok {
		t.Fatalf("expected timestamp field")
	}
}

func TestLevelFallbacks(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	if got := New("svc", "").GetLevel(); got != logrus.WarnLevel {
		t.Fatalf("expected LOG_LEVEL to apply, got %s", got)
	}
	if got := New("svc", "bogus").GetLevel(); got != logrus.InfoLevel {
		t.Fatalf("expected info for unknown level, got %s", got)
	}
}
