//go:build windows

package idle

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetLastInputInfo = user32.NewProc("GetLastInputInfo")
	procGetTickCount     = kernel32.NewProc("GetTickCount")
)

type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

// WindowsIdleDetector reads the last input tick from GetLastInputInfo.
type WindowsIdleDetector struct{}

// NewWindowsIdleDetector creates a new Windows detector.
func NewWindowsIdleDetector() *WindowsIdleDetector {
	return &WindowsIdleDetector{}
}

// Idle implements Source.
func (d *WindowsIdleDetector) Idle() (time.Duration, error) {
	var info lastInputInfo
	info.cbSize = uint32(unsafe.Sizeof(info))

	ret, _, err := procGetLastInputInfo.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return 0, fmt.Errorf("GetLastInputInfo: %w", err)
	}

	tick, _, _ := procGetTickCount.Call()
	return tickDelta(uint32(tick), info.dwTime), nil
}
