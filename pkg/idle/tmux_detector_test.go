package idle

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func stamps(ts ...time.Time) []byte {
	var out []byte
	for _, t := range ts {
		out = fmt.Appendf(out, "%d\n", t.Unix())
	}
	return out
}

func TestTmuxDetectorIdle(t *testing.T) {
	now := time.Date(2026, 10, 19, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		session    string
		current    []byte
		clients    []byte
		clientsErr error
		wantTarget string
		want       time.Duration
		wantErr    bool
	}{
		{
			name:       "configured session",
			session:    "main",
			clients:    stamps(now.Add(-5 * time.Minute)),
			wantTarget: "main",
			want:       5 * time.Minute,
		},
		{
			name:       "current session resolved and trimmed",
			current:    []byte("  work \n"),
			clients:    stamps(now.Add(-90 * time.Second)),
			wantTarget: "work",
			want:       90 * time.Second,
		},
		{
			name:    "newest client wins",
			session: "main",
			clients: stamps(
				now.Add(-10*time.Minute),
				now.Add(-2*time.Minute),
				now.Add(-5*time.Minute),
			),
			wantTarget: "main",
			want:       2 * time.Minute,
		},
		{
			name:       "garbage lines skipped",
			session:    "main",
			clients:    append([]byte("n/a\n"), stamps(now.Add(-time.Minute))...),
			wantTarget: "main",
			want:       time.Minute,
		},
		{
			name:       "activity in the future clamps to zero",
			session:    "main",
			clients:    stamps(now.Add(time.Hour)),
			wantTarget: "main",
			want:       0,
		},
		{
			name:       "no clients",
			session:    "main",
			clients:    []byte(""),
			wantTarget: "main",
			wantErr:    true,
		},
		{
			name:       "only unparsable clients",
			session:    "main",
			clients:    []byte("invalid\n"),
			wantTarget: "main",
			wantErr:    true,
		},
		{
			name:       "list-clients fails",
			session:    "gone",
			clientsErr: errors.New("can't find session: gone"),
			wantTarget: "gone",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TMUX", "/tmp/tmux-1000/default,12345,0")
			d := NewTmuxDetector(tt.session)
			d.now = func() time.Time { return now }
			d.cmdExecutor = func(name string, args ...string) ([]byte, error) {
				if name != "tmux" {
					t.Errorf("ran %q, want tmux", name)
				}
				switch args[0] {
				case "display-message":
					return tt.current, nil
				case "list-clients":
					if args[2] != tt.wantTarget {
						t.Errorf("list-clients -t %q, want %q", args[2], tt.wantTarget)
					}
					return tt.clients, tt.clientsErr
				}
				t.Errorf("unexpected tmux %v", args)
				return nil, nil
			}

			got, err := d.Idle()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Idle() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Idle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTmuxDetectorOutsideTmux(t *testing.T) {
	t.Setenv("TMUX", "")
	d := NewTmuxDetector("main")
	d.cmdExecutor = func(string, ...string) ([]byte, error) {
		t.Error("tmux invoked outside a tmux session")
		return nil, nil
	}

	if _, err := d.Idle(); !errors.Is(err, errNoTmux) {
		t.Errorf("Idle() error = %v, want errNoTmux", err)
	}
}

func TestTmuxDetectorSessionLookupFails(t *testing.T) {
	t.Setenv("TMUX", "/tmp/tmux-1000/default,12345,0")
	d := NewTmuxDetector("")
	d.cmdExecutor = func(string, ...string) ([]byte, error) {
		return nil, errors.New("no server running")
	}

	if _, err := d.Idle(); err == nil {
		t.Error("Idle() error = nil, want session lookup failure")
	}
}
