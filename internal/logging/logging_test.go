package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mozhi-it/LAN-Transfer/internal/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		testutil.AssertField(t, tt.in, ParseLevel(tt.in), tt.want)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "warn")

	log.Info().Msg("hidden")
	log.Warn().Str("name", "a.txt").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	testutil.AssertField(t, "lines", len(lines), 1)

	var entry map[string]any
	testutil.AssertNoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	testutil.AssertField(t, "message", entry["message"], any("shown"))
	testutil.AssertField(t, "name", entry["name"], any("a.txt"))
	if _, ok := entry["time"]; !ok {
		t.Error("missing timestamp")
	}
}

func TestFileAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")

	for i := 0; i < 2; i++ {
		log, closer, err := File(path, "info")
		testutil.AssertNoError(t, err)
		log.Info().Int("run", i).Msg("started")
		testutil.AssertNoError(t, closer.Close())
	}

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	testutil.AssertField(t, "lines", strings.Count(string(data), "\n"), 2)
}
