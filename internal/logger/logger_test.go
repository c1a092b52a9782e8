package logger

import (
	"bytes"
	encjson "encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

// capture routes log output to a buffer for the duration of the test.
func capture(t *testing.T, verbose, asJSON bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	SetJSON(asJSON)
	t.Cleanup(func() {
		SetVerbose(false)
		SetJSON(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		log     func()
		want    []string
	}{
		{
			name:    "debug when verbose",
			verbose: true,
			log:     func() { Debug("fetched %d candidates", 20) },
			want:    []string{"DBG", "fetched 20 candidates"},
		},
		{
			name: "debug and info hidden by default",
			log: func() {
				Debug("hidden")
				Info("hidden")
				Section("Ingest")
			},
			want: nil,
		},
		{
			name:    "section marker",
			verbose: true,
			log:     func() { Section("Retrieve") },
			want:    []string{"section=Retrieve"},
		},
		{
			name: "warnings always written",
			log:  func() { Warn("embedding rate limited, retrying in %ds", 2) },
			want: []string{"WRN", "retrying in 2s"},
		},
		{
			name: "errors carry their cause",
			log:  func() { Error(errors.New("disk full"), "persist %s", "leis_decretos") },
			want: []string{"ERR", "persist leis_decretos", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose, false)
			if IsVerbose() != tt.verbose {
				t.Fatalf("IsVerbose() = %v, want %v", IsVerbose(), tt.verbose)
			}

			tt.log()

			out := buf.String()
			if tt.want == nil && out != "" {
				t.Errorf("expected no output, got %q", out)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %q in %q", w, out)
				}
			}
		})
	}
}

func TestJSONLines(t *testing.T) {
	buf := capture(t, true, true)

	Info("stored %d chunks", 12)
	Error(errors.New("disk full"), "persist %s", "leis_decretos")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 JSON lines, got %q", buf.String())
	}

	var info, failure map[string]any
	if err := encjson.Unmarshal([]byte(lines[0]), &info); err != nil {
		t.Fatalf("line 1 is not JSON: %v", err)
	}
	if err := encjson.Unmarshal([]byte(lines[1]), &failure); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}

	if info["level"] != "info" || info["message"] != "stored 12 chunks" {
		t.Errorf("unexpected info entry: %v", info)
	}
	if failure["level"] != "error" || failure["error"] != "disk full" || failure["message"] != "persist leis_decretos" {
		t.Errorf("unexpected error entry: %v", failure)
	}
	if _, ok := info["time"]; !ok {
		t.Errorf("expected a timestamp, got %v", info)
	}
}
