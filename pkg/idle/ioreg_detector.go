package idle

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IORegDetector reads HIDIdleTime from the macOS IOHIDSystem registry entry.
type IORegDetector struct {
	cmdExecutor CommandExecutor
}

// NewIORegDetector creates a new ioreg-based detector.
func NewIORegDetector() *IORegDetector {
	return &IORegDetector{cmdExecutor: defaultCmdExecutor}
}

// Idle implements Source.
func (d *IORegDetector) Idle() (time.Duration, error) {
	output, err := d.cmdExecutor("ioreg", "-c", "IOHIDSystem", "-d", "4")
	if err != nil {
		return 0, fmt.Errorf("failed to execute ioreg: %w", err)
	}

	idleNanos, err := parseHIDIdleTime(output)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HIDIdleTime: %w", err)
	}

	return time.Duration(idleNanos), nil
}

// IdleSeconds implements interfaces.IdleProbe.
func (d *IORegDetector) IdleSeconds() uint64 {
	idle, err := d.Idle()
	if err != nil {
		return 0
	}
	return seconds(idle)
}

// parseHIDIdleTime parses the HIDIdleTime nanoseconds from ioreg output.
func parseHIDIdleTime(output []byte) (int64, error) {
	for _, line := range bytes.Split(output, []byte("\n")) {
		lineStr := string(bytes.TrimSpace(line))
		if !strings.Contains(lineStr, "HIDIdleTime") {
			continue
		}

		// Format: "HIDIdleTime" = 123456789
		parts := strings.Split(lineStr, "=")
		if len(parts) != 2 {
			continue
		}

		valueStr := strings.TrimSpace(strings.Trim(strings.TrimSpace(parts[1]), "\""))
		value, err := strconv.ParseInt(valueStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse idle time value: %w", err)
		}
		if value < 0 {
			return 0, fmt.Errorf("negative idle time %d", value)
		}
		return value, nil
	}

	return 0, fmt.Errorf("HIDIdleTime not found in ioreg output")
}
