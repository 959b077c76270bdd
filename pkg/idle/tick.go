package idle

import "time"

// tickDelta is the time between two 32-bit millisecond tick counts. The
// counter wraps every 49.7 days, so the subtraction wraps too.
func tickDelta(now, last uint32) time.Duration {
	return time.Duration(now-last) * time.Millisecond
}
