package notification

import "github.com/sirupsen/logrus"

// LogNotifier writes notifications to the log. Used when no ntfy topic is set.
type LogNotifier struct {
	logger logrus.FieldLogger
}

// NewLogNotifier creates a new log notifier
func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the notification at info level.
func (n *LogNotifier) Send(notification Notification) error {
	n.logger.WithFields(logrus.Fields{
		"title":    notification.Title,
		"priority": notification.Priority,
	}).Info(notification.Message)
	return nil
}
