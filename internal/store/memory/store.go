// Package memory is a process-local BookingRepository. It backs the
// "memory" store driver and the service tests.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/store"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	bookings map[uuid.UUID]domain.Booking
	series   map[string][]domain.TimeOffSeries
}

func New() *Store {
	return &Store{
		now:      func() time.Time { return time.Now().UTC() },
		bookings: make(map[uuid.UUID]domain.Booking),
		series:   make(map[string][]domain.TimeOffSeries),
	}
}

var _ store.BookingRepository = (*Store)(nil)

// tx operates on the maps directly; callers hold s.mu for its lifetime.
type tx struct {
	s *Store
}

// InBarberTransaction serializes all writers. The shared helpers only write
// as their last step, so a failed fn leaves no partial state behind.
func (s *Store) InBarberTransaction(ctx context.Context, barberID string, fn func(ctx context.Context, tx store.BarberTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, tx{s: s})
}

func (s *Store) Create(ctx context.Context, b domain.Booking, buffer time.Duration) (domain.Booking, error) {
	var out domain.Booking
	err := s.InBarberTransaction(ctx, b.BarberID, func(ctx context.Context, t store.BarberTx) error {
		created, err := store.CreateBooking(ctx, t, b, buffer)
		out = created
		return err
	})
	return out, err
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tx{s: s}.GetBooking(ctx, id)
}

func (s *Store) ListByBarber(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return tx{s: s}.ListBookings(ctx, barberID, windowStart, windowEnd)
}

func (s *Store) Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var out domain.Booking
	err := s.InBarberTransaction(ctx, "", func(ctx context.Context, t store.BarberTx) error {
		b, err := store.CancelBooking(ctx, t, id)
		out = b
		return err
	})
	return out, err
}

func (s *Store) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time, buffer time.Duration) (domain.Booking, error) {
	var out domain.Booking
	err := s.InBarberTransaction(ctx, "", func(ctx context.Context, t store.BarberTx) error {
		b, err := store.RescheduleBooking(ctx, t, id, start, end, buffer)
		out = b
		return err
	})
	return out, err
}

func (s *Store) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return store.ErrNotFound
	}
	b.CalendarEventID = eventID
	b.UpdatedAt = s.now()
	s.bookings[id] = b
	return nil
}

func (s *Store) CreateTimeOffSeries(ctx context.Context, series domain.TimeOffSeries) (domain.TimeOffSeries, error) {
	var out domain.TimeOffSeries
	err := s.InBarberTransaction(ctx, series.BarberID, func(ctx context.Context, t store.BarberTx) error {
		if err := store.EnsureTimeOffFree(ctx, t, series); err != nil {
			return err
		}
		saved, err := t.InsertTimeOffSeries(ctx, series)
		out = saved
		return err
	})
	return out, err
}

func (s *Store) ListTimeOff(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.TimeOffOccurrence, error) {
	s.mu.Lock()
	rows := slices.Clone(s.series[barberID])
	s.mu.Unlock()
	return store.ExpandTimeOff(rows, windowStart, windowEnd)
}

func (t tx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	b.EnsureDefaults(t.s.now())
	if _, ok := t.s.bookings[b.ID]; ok {
		return domain.Booking{}, store.ErrIdempotencyConflict
	}
	t.s.bookings[b.ID] = b
	return b, nil
}

func (t tx) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	b, ok := t.s.bookings[id]
	if !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	return b, nil
}

func (t tx) ListBookings(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range t.s.bookings {
		if b.BarberID == barberID && b.Active() && b.Overlaps(windowStart, windowEnd) {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b domain.Booking) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out, nil
}

func (t tx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	if _, ok := t.s.bookings[b.ID]; !ok {
		return domain.Booking{}, store.ErrNotFound
	}
	b.UpdatedAt = t.s.now()
	t.s.bookings[b.ID] = b
	return b, nil
}

func (t tx) InsertTimeOffSeries(ctx context.Context, series domain.TimeOffSeries) (domain.TimeOffSeries, error) {
	series.EnsureDefaults(t.s.now())
	t.s.series[series.BarberID] = append(t.s.series[series.BarberID], series)
	return series, nil
}

func (t tx) ListTimeOffSeries(ctx context.Context, barberID string) ([]domain.TimeOffSeries, error) {
	return slices.Clone(t.s.series[barberID]), nil
}
