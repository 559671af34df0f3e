// Package events publishes booking lifecycle events.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"barbearia/backend/internal/domain"
)

const (
	TypeBookingCreated     = "booking.created"
	TypeBookingCancelled   = "booking.cancelled"
	TypeBookingRescheduled = "booking.rescheduled"
)

type Event struct {
	ID         string        `json:"event_id"`
	Type       string        `json:"event_type"`
	OccurredAt time.Time     `json:"occurred_at"`
	Booking    BookingRecord `json:"booking"`
}

type BookingRecord struct {
	ID              string    `json:"id"`
	BarberID        string    `json:"barber_id"`
	ServiceID       string    `json:"service_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
}

// NewBookingEvent wraps a booking snapshot into an event of the given type.
func NewBookingEvent(eventType string, b domain.Booking, now time.Time) Event {
	return Event{
		ID:         uuid.Must(uuid.NewV7()).String(),
		Type:       eventType,
		OccurredAt: now.UTC(),
		Booking: BookingRecord{
			ID:              b.ID.String(),
			BarberID:        b.BarberID,
			ServiceID:       b.ServiceID,
			CustomerName:    b.CustomerName,
			CustomerPhone:   b.CustomerPhone,
			StartTime:       b.StartTime.UTC(),
			EndTime:         b.EndTime.UTC(),
			Status:          string(b.Status),
			CalendarEventID: b.CalendarEventID,
		},
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }
