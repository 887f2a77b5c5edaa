package events

import (
	"context"
	"encoding/json"
	"fmt"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/ports"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes recorded duty events, keyed by driver so each
// driver's stream stays ordered within a partition.
type KafkaPublisher struct {
	w messageWriter
}

var _ ports.EventPublisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}}
}

// dutyEventMessage is the wire form of a domain.LogEvent.
type dutyEventMessage struct {
	DriverID   string     `json:"driver_id"`
	Seq        int64      `json:"seq"`
	Kind       string     `json:"kind"`
	IntervalID string     `json:"interval_id,omitempty"`
	TargetID   string     `json:"target_id,omitempty"`
	Status     string     `json:"status,omitempty"`
	At         *time.Time `json:"at,omitempty"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	Location   string     `json:"location,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	RecordedAt time.Time  `json:"recorded_at"`
}

func encodeEvent(ev domain.LogEvent) ([]byte, error) {
	msg := dutyEventMessage{
		DriverID:   ev.DriverID,
		Seq:        ev.Seq,
		Kind:       string(ev.Kind),
		Status:     string(ev.Status),
		EndAt:      ev.End,
		Location:   ev.Location,
		Notes:      ev.Notes,
		RecordedAt: ev.RecordedAt,
	}
	if ev.IntervalID != uuid.Nil {
		msg.IntervalID = ev.IntervalID.String()
	}
	if ev.TargetID != nil {
		msg.TargetID = ev.TargetID.String()
	}
	if !ev.At.IsZero() {
		at := ev.At
		msg.At = &at
	}
	return json.Marshal(msg)
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.LogEvent) (err error) {
	defer obs.Time(ctx, "kafka.Publish")(&err)

	value, err := encodeEvent(ev)
	if err != nil {
		return fmt.Errorf("encode duty event: %w", err)
	}

	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.DriverID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
			{Key: "seq", Value: []byte(strconv.FormatInt(ev.Seq, 10))},
		},
	})
	if err != nil {
		return fmt.Errorf("publish duty event driver=%s seq=%d: %w", ev.DriverID, ev.Seq, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
