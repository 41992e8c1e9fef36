package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"FundChain/config"
	"FundChain/internal/domain/shared"

	"github.com/segmentio/kafka-go"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	deadline bool
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	_, w.deadline = ctx.Deadline()
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaEventPublisherPublish(t *testing.T) {
	t.Parallel()

	writer := &recordingWriter{}
	pub := newKafkaEventPublisher(writer, "fundchain.campaign-events", time.Second)

	occurred := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	event := shared.Event{
		Type:       shared.EventCampaignPledged,
		CampaignId: 42,
		Account:    "bob",
		Amount:     300,
		Total:      800,
		OccurredAt: occurred,
	}
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(writer.messages))
	}
	msg := writer.messages[0]
	if string(msg.Key) != "42" {
		t.Fatalf("expected key 42, got %q", string(msg.Key))
	}
	if !writer.deadline {
		t.Fatalf("expected write timeout to be applied")
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(shared.EventCampaignPledged) {
		t.Fatalf("unexpected headers: %+v", msg.Headers)
	}

	var decoded shared.Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode value: %v", err)
	}
	if decoded.Type != event.Type || decoded.Total != 800 || decoded.Account != "bob" {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
}

func TestKafkaEventPublisherWrapsWriterError(t *testing.T) {
	t.Parallel()

	errBroker := errors.New("broker down")
	writer := &recordingWriter{err: errBroker}
	pub := newKafkaEventPublisher(writer, "events", 0)

	err := pub.Publish(context.Background(), shared.Event{Type: shared.EventCampaignClaimed})
	if !errors.Is(err, errBroker) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
	if writer.deadline {
		t.Fatalf("zero timeout must not add a deadline")
	}

	if err := pub.Close(); err != nil || !writer.closed {
		t.Fatalf("expected writer to be closed")
	}
}

func TestNewEventPublisherDisabled(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{}
	pub := NewEventPublisher(cfg)
	if _, ok := pub.(shared.NoopEventPublisher); !ok {
		t.Fatalf("expected noop publisher when kafka is disabled, got %T", pub)
	}
}
