package logging

import (
	"bytes"
	"encoding/json"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestNewEmitsRenamedKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "poold", "test", slog.LevelInfo)
	logger.Debug("hidden")
	logger.Info("pool operation committed", "op", "deposit")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	for key, want := range map[string]string{
		"message":  "pool operation committed",
		"severity": "INFO",
		"service":  "poold",
		"env":      "test",
		"op":       "deposit",
	} {
		if got := line[key]; got != want {
			t.Fatalf("%s = %v, want %q", key, got, want)
		}
	}
	if _, ok := line["timestamp"]; !ok {
		t.Fatalf("timestamp missing: %v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", raw, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestSetupWithFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() {
		slog.SetDefault(prev)
		log.SetOutput(os.Stderr)
	})

	path := filepath.Join(t.TempDir(), "poold.log")
	logger, closer := SetupWithOptions("poold", "", Options{File: path, MaxSizeMB: 1})
	logger.Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestMasking(t *testing.T) {
	if got := MaskField("token", "secret").Value.String(); got != RedactedValue {
		t.Fatalf("token not masked: %q", got)
	}
	if got := MaskField("actor", "alice").Value.String(); got != "alice" {
		t.Fatalf("actor masked: %q", got)
	}
	if got := MaskField(" Receipt ", "r-1").Value.String(); got != "r-1" {
		t.Fatalf("allowlisted key with padding masked: %q", got)
	}
	if got := MaskField("database_dsn", "postgres://u:p@db/pool").Value.String(); got != RedactedValue {
		t.Fatalf("dsn not masked: %q", got)
	}
	if got := MaskValue(" "); got != " " {
		t.Fatalf("blank masked: %q", got)
	}
	if got := MaskToken("abcdefghijkl"); got != "abcd..."+RedactedValue {
		t.Fatalf("MaskToken = %q", got)
	}
	if got := MaskToken("short"); got != RedactedValue {
		t.Fatalf("MaskToken short = %q", got)
	}
}
