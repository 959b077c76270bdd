package status

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/Veraticus/stretchia/pkg/types"
)

func TestNewIndicator(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)

	if indicator.status != StatusIdle {
		t.Errorf("expected initial status to be StatusIdle, got %v", indicator.status)
	}
	if indicator.writer != buf {
		t.Errorf("expected writer to be set")
	}
	if !indicator.enabled {
		t.Errorf("expected indicator to be enabled")
	}
}

func TestIndicatorSetIndicator(t *testing.T) {
	tests := []struct {
		name     string
		stage    types.Stage
		afk      bool
		contains []string
		excludes []string
	}{
		{
			name:     "green active",
			stage:    types.StageGreen,
			contains: []string{"\033[32m●", "green"},
			excludes: []string{"afk"},
		},
		{
			name:     "orange uses 256 color",
			stage:    types.StageOrange,
			contains: []string{"\033[38;5;208m●", "orange"},
		},
		{
			name:     "critical is drawn red but named critical",
			stage:    types.StageCritical,
			contains: []string{"\033[31m●", "critical"},
		},
		{
			name:     "afk marker",
			stage:    types.StageYellow,
			afk:      true,
			contains: []string{"Ⓩ afk"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := NewIndicator(buf, true)

			if err := indicator.SetIndicator(tt.stage, tt.afk); err != nil {
				t.Fatalf("SetIndicator() error = %v", err)
			}

			output := buf.String()
			if !strings.HasPrefix(output, "\0337") || !strings.HasSuffix(output, "\0338") {
				t.Errorf("output not wrapped in save/restore: %q", output)
			}
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("expected output to contain %q, got %q", want, output)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(output, unwanted) {
					t.Errorf("expected output to not contain %q, got %q", unwanted, output)
				}
			}
		})
	}
}

func TestIndicatorPublish(t *testing.T) {
	tests := []struct {
		name    string
		payload types.TickPayload
		want    string
	}{
		{"minutes", types.TickPayload{ElapsedS: 125}, "sitting 02:05"},
		{"hours", types.TickPayload{ElapsedS: 3*3600 + 61}, "sitting 3:01:01"},
		{"treadmill", types.TickPayload{ElapsedS: 59, IsTreadmill: true}, "treadmill 00:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := NewIndicator(buf, true)
			indicator.Publish(tt.payload)

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected output to contain %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestIndicatorSetStatus(t *testing.T) {
	tests := []struct {
		name           string
		status         Status
		expectedOutput string
		enabled        bool
	}{
		{"sending status", StatusSending, "⟳ ntfy", true},
		{"success status", StatusSuccess, "✓ ntfy", true},
		{"failed status", StatusFailed, "✗ ntfy", true},
		{"idle status shows no ntfy", StatusIdle, "", true},
		{"disabled indicator shows nothing", StatusSuccess, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			indicator := NewIndicator(buf, tt.enabled)

			indicator.SetStatus(tt.status)
			output := buf.String()

			switch {
			case tt.expectedOutput != "":
				if !strings.Contains(output, tt.expectedOutput) {
					t.Errorf("expected output to contain %q, got %q", tt.expectedOutput, output)
				}
			case tt.enabled:
				if strings.Contains(output, "ntfy") {
					t.Errorf("expected no ntfy text for idle status, got %q", output)
				}
			default:
				if output != "" {
					t.Errorf("expected no output for disabled indicator, got %q", output)
				}
			}
		})
	}
}

func TestIndicatorClear(t *testing.T) {
	buf := &bytes.Buffer{}
	indicator := NewIndicator(buf, true)
	indicator.SetStatus(StatusSuccess)

	buf.Reset()
	if err := indicator.Clear(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if strings.Contains(output, "ntfy") {
		t.Errorf("expected cleared output to not contain ntfy text, got %q", output)
	}
	if !strings.Contains(output, "\033[2K") {
		t.Errorf("expected line clear sequence in output, got %q", output)
	}
}

func TestIndicatorWriteError(t *testing.T) {
	writeErr := errors.New("broken pipe")
	indicator := NewIndicator(writerFunc(func([]byte) (int, error) { return 0, writeErr }), true)

	if err := indicator.SetIndicator(types.StageRed, false); !errors.Is(err, writeErr) {
		t.Errorf("SetIndicator() error = %v, want %v", err, writeErr)
	}
	// Publish swallows the error.
	indicator.Publish(types.TickPayload{})
}

// writerFunc is an adapter to allow functions to implement io.Writer
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) {
	return f(p)
}
