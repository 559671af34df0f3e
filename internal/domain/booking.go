package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID              uuid.UUID     `bun:"id,pk,type:uuid"`
	BarberID        string        `bun:"barber_id,notnull"`
	ServiceID       string        `bun:"service_id,notnull"`
	CustomerName    string        `bun:"customer_name,notnull"`
	CustomerPhone   string        `bun:"customer_phone,notnull"`
	Notes           string        `bun:"notes"`
	StartTime       time.Time     `bun:"start_time,notnull"`
	EndTime         time.Time     `bun:"end_time,notnull"`
	Status          BookingStatus `bun:"status,notnull"`
	CalendarEventID string        `bun:"calendar_event_id"`
	CreatedAt       time.Time     `bun:"created_at,notnull"`
	UpdatedAt       time.Time     `bun:"updated_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		b.EnsureDefaults(now)
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}

// EnsureDefaults fills in the fields a new booking gets on insert.
func (b *Booking) EnsureDefaults(now time.Time) {
	if b.ID == uuid.Nil {
		b.ID = uuid.Must(uuid.NewV7())
	}
	if b.Status == "" {
		b.Status = BookingStatusConfirmed
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = now
	}
}

func (b Booking) Active() bool {
	return b.Status == BookingStatusConfirmed
}

// Overlaps reports whether the booking intersects [start, end). Touching
// bounds do not overlap.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
