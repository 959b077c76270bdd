// Package export forwards completed sessions to Kafka.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

// EventType identifies exported session records.
const EventType = "stretchia.session.completed"

var errNoBrokers = errors.New("no kafka brokers configured")

type messageWriter interface {
	WriteMessages(context.Context, ...kafka.Message) error
	Close() error
}

// SessionEvent is the JSON value written for each workout.
type SessionEvent struct {
	EventType  string        `json:"event_type"`
	Host       string        `json:"host,omitempty"`
	Workout    types.Workout `json:"workout"`
	ExportedAt time.Time     `json:"exported_at"`
}

// KafkaExporter writes one message per persisted workout, keyed by workout id.
type KafkaExporter struct {
	writer messageWriter
	topic  string
	host   string
	now    func() time.Time
}

var _ interfaces.SessionExporter = (*KafkaExporter)(nil)

// NewKafkaExporter creates an exporter for topic on brokers. host tags every
// event so several machines can share a topic.
func NewKafkaExporter(brokers []string, topic, host string) (*KafkaExporter, error) {
	if len(brokers) == 0 {
		return nil, errNoBrokers
	}
	if topic == "" {
		return nil, fmt.Errorf("kafka topic is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		AllowAutoTopicCreation: true,
	}
	return newKafkaExporter(w, topic, host), nil
}

func newKafkaExporter(w messageWriter, topic, host string) *KafkaExporter {
	return &KafkaExporter{writer: w, topic: topic, host: host, now: time.Now}
}

// Export implements interfaces.SessionExporter.
func (e *KafkaExporter) Export(ctx context.Context, w types.Workout) error {
	value, err := json.Marshal(SessionEvent{
		EventType:  EventType,
		Host:       e.host,
		Workout:    w,
		ExportedAt: e.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode session event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(w.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventType)},
			{Key: "workout_type", Value: []byte(w.Kind)},
		},
		Time: e.now().UTC(),
	}
	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", e.topic, err)
	}
	return nil
}

// Close flushes and releases the writer.
func (e *KafkaExporter) Close() error {
	return e.writer.Close()
}
