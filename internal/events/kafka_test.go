package events

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"barbearia/backend/internal/domain"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func sampleBooking() domain.Booking {
	start := time.Date(2026, 3, 2, 13, 0, 0, 0, time.UTC)
	return domain.Booking{
		ID:            uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		BarberID:      "joao",
		ServiceID:     "corte",
		CustomerName:  "Carlos",
		CustomerPhone: "11999990000",
		StartTime:     start,
		EndTime:       start.Add(45 * time.Minute),
		Status:        domain.BookingStatusConfirmed,
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	ev := NewBookingEvent(TypeBookingCreated, sampleBooking(), time.Now())
	if err := p.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish error: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("len(msgs) = %d, want 1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != ev.Booking.ID {
		t.Fatalf("key = %q, want %q", msg.Key, ev.Booking.ID)
	}
	if HeaderValue(msg.Headers, "event_type") != TypeBookingCreated {
		t.Fatalf("event_type header = %q", HeaderValue(msg.Headers, "event_type"))
	}
	if HeaderValue(msg.Headers, "event_id") != ev.ID {
		t.Fatalf("event_id header = %q, want %q", HeaderValue(msg.Headers, "event_id"), ev.ID)
	}

	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Booking.BarberID != "joao" || decoded.Booking.Status != "confirmed" {
		t.Fatalf("payload booking = %+v", decoded.Booking)
	}

	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close = %v, closed %v", err, w.closed)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := &KafkaPublisher{w: &fakeWriter{err: boom}}
	err := p.Publish(context.Background(), NewBookingEvent(TypeBookingCancelled, sampleBooking(), time.Now()))
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestInjectTraceHeaders(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() { otel.SetTextMapPropagator(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := InjectTraceHeaders(ctx, []kafka.Header{{Key: "event_id", Value: []byte("e1")}})
	if HeaderValue(headers, "traceparent") == "" {
		t.Fatalf("traceparent header missing: %v", headers)
	}
	if HeaderValue(headers, "event_id") != "e1" {
		t.Fatalf("existing header lost")
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" kafka-1:9092, ,kafka-2:9092 ")
	if !slices.Equal(got, []string{"kafka-1:9092", "kafka-2:9092"}) {
		t.Fatalf("SplitBrokers = %v", got)
	}
	if SplitBrokers("") != nil {
		t.Fatalf("SplitBrokers(\"\") should be nil")
	}
}

func TestReadyCheck_NoBrokers(t *testing.T) {
	if err := ReadyCheck(nil)(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
