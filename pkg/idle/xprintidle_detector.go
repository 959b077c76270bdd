package idle

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// XprintidleDetector asks the X server for input idle time via xprintidle.
type XprintidleDetector struct {
	cmdExecutor CommandExecutor
}

// NewXprintidleDetector creates a new xprintidle-based detector.
func NewXprintidleDetector() *XprintidleDetector {
	return &XprintidleDetector{cmdExecutor: defaultCmdExecutor}
}

// Idle implements Source. xprintidle prints milliseconds.
func (d *XprintidleDetector) Idle() (time.Duration, error) {
	output, err := d.cmdExecutor("xprintidle")
	if err != nil {
		return 0, fmt.Errorf("failed to execute xprintidle: %w", err)
	}

	ms, err := strconv.ParseUint(strings.TrimSpace(string(output)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse xprintidle output: %w", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
