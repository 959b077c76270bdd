package idle

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

var errNoTmux = errors.New("TMUX not set")

// TmuxDetector reports time since the last keystroke any tmux client sent
// to a session. Input outside tmux is invisible to it, so it only backs up
// xprintidle on hosts without an X server.
type TmuxDetector struct {
	session     string
	cmdExecutor CommandExecutor
	now         func() time.Time
}

// NewTmuxDetector watches session, or the session this process runs in
// when session is empty.
func NewTmuxDetector(session string) *TmuxDetector {
	return &TmuxDetector{
		session:     session,
		cmdExecutor: defaultCmdExecutor,
		now:         time.Now,
	}
}

// Idle implements Source.
func (d *TmuxDetector) Idle() (time.Duration, error) {
	if os.Getenv("TMUX") == "" {
		return 0, errNoTmux
	}
	target, err := d.target()
	if err != nil {
		return 0, fmt.Errorf("resolving tmux session: %w", err)
	}
	last, err := d.lastInput(target)
	if err != nil {
		return 0, fmt.Errorf("reading tmux clients of %s: %w", target, err)
	}
	return max(d.now().Sub(last), 0), nil
}

func (d *TmuxDetector) target() (string, error) {
	if d.session != "" {
		return d.session, nil
	}
	out, err := d.cmdExecutor("tmux", "display-message", "-p", "#{session_name}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// lastInput returns the newest client_activity stamp (unix seconds) among
// the session's clients. Unparsable lines are skipped.
func (d *TmuxDetector) lastInput(target string) (time.Time, error) {
	out, err := d.cmdExecutor("tmux", "list-clients", "-t", target, "-F", "#{client_activity}")
	if err != nil {
		return time.Time{}, err
	}

	var newest int64
	for _, field := range strings.Fields(string(out)) {
		stamp, err := strconv.ParseInt(field, 10, 64)
		if err == nil && stamp > newest {
			newest = stamp
		}
	}
	if newest == 0 {
		return time.Time{}, errors.New("no client activity")
	}
	return time.Unix(newest, 0), nil
}
