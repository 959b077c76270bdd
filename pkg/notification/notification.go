// Package notification pushes posture reminders to a phone through ntfy.
package notification

import "time"

// ntfy priorities.
const (
	PriorityDefault = 3
	PriorityHigh    = 4
	PriorityUrgent  = 5
)

// Notification represents a notification to be sent.
type Notification struct {
	Title    string
	Message  string
	Time     time.Time
	Priority int
	Tags     []string
}

// Notifier sends notifications.
type Notifier interface {
	Send(notification Notification) error
}
