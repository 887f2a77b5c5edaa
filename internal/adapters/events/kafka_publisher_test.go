package events

import (
	"context"
	"encoding/json"
	"errors"
	"hos-compliance-service/internal/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisherKeysByDriver(t *testing.T) {
	w := &captureWriter{}
	p := &KafkaPublisher{w: w}

	at := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	ev := domain.NewStatusChangeEvent("drv-7", domain.StatusChange{Status: domain.Driving, At: at, Location: "Tulsa, OK"})
	ev.Seq = 4

	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.msgs))
	}

	m := w.msgs[0]
	if string(m.Key) != "drv-7" {
		t.Fatalf("expected driver key, got %q", m.Key)
	}

	var got dutyEventMessage
	if err := json.Unmarshal(m.Value, &got); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if got.Seq != 4 || got.Kind != "status_change" || got.Status != "driving" || got.Location != "Tulsa, OK" {
		t.Fatalf("unexpected payload %+v", got)
	}
	if got.At == nil || !got.At.Equal(at) {
		t.Fatalf("expected at=%s, got %v", at, got.At)
	}
	if _, err := uuid.Parse(got.IntervalID); err != nil {
		t.Fatalf("interval id %q: %v", got.IntervalID, err)
	}
	if got.TargetID != "" || got.EndAt != nil {
		t.Fatalf("status change should carry no target or end: %+v", got)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close: err=%v closed=%v", err, w.closed)
	}
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("leader not available")
	p := &KafkaPublisher{w: &captureWriter{err: boom}}

	err := p.Publish(context.Background(), domain.NewCloseEvent("drv-7", time.Now()))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped writer error, got %v", err)
	}
}
