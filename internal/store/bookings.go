package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"barbearia/backend/internal/domain"
)

// TimeOffConflictLookahead bounds how far ahead a new time-off series is
// checked against existing bookings.
const TimeOffConflictLookahead = 180 * 24 * time.Hour

type BookingRepository interface {
	// Create and Reschedule keep buffer free around the written booking,
	// checked under the barber's lock.
	Create(ctx context.Context, b domain.Booking, buffer time.Duration) (domain.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	// ListByBarber returns confirmed bookings overlapping [windowStart, windowEnd).
	ListByBarber(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time, buffer time.Duration) (domain.Booking, error)
	SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error

	CreateTimeOffSeries(ctx context.Context, series domain.TimeOffSeries) (domain.TimeOffSeries, error)
	ListTimeOff(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.TimeOffOccurrence, error)
}

// BarberTx is a unit of work holding the lock on one barber's agenda.
type BarberTx interface {
	InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ListBookings(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error)

	InsertTimeOffSeries(ctx context.Context, series domain.TimeOffSeries) (domain.TimeOffSeries, error)
	ListTimeOffSeries(ctx context.Context, barberID string) ([]domain.TimeOffSeries, error)
}
