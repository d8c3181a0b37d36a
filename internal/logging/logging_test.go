package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestSetup_FileReceivesJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "iqama.log")

	closer, err := Setup(Options{File: path})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Info().Str("tier", "cookie").Msg("hello")
	log.Debug().Msg("hidden")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1 (debug filtered):\n%s", len(lines), data)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "hello" || entry["tier"] != "cookie" || entry["level"] != "info" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestSetup_ConsoleDebug(t *testing.T) {
	var buf bytes.Buffer
	closer, err := Setup(Options{Console: true, Debug: true, Stderr: &buf})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	defer closer.Close()
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	log.Debug().Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("console output missing debug message: %q", buf.String())
	}
}
