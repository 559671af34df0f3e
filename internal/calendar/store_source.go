package calendar

import (
	"context"
	"fmt"
	"time"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
)

// AgendaReader is the read side of the booking repository.
type AgendaReader interface {
	ListByBarber(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error)
	ListTimeOff(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.TimeOffOccurrence, error)
}

// StoreSource reads confirmed bookings and time-off from the local store.
// Booking intervals carry the booking id as Ref.
type StoreSource struct {
	repo AgendaReader
}

func NewStoreSource(repo AgendaReader) *StoreSource {
	return &StoreSource{repo: repo}
}

func (s *StoreSource) BookedIntervals(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error) {
	bookings, err := s.repo.ListByBarber(ctx, barber.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	timeOff, err := s.repo.ListTimeOff(ctx, barber.ID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("list time off: %w", err)
	}

	out := make([]availability.BookedInterval, 0, len(bookings)+len(timeOff))
	for _, b := range bookings {
		out = append(out, availability.BookedInterval{Start: b.StartTime, End: b.EndTime, Ref: b.ID.String()})
	}
	for _, o := range timeOff {
		out = append(out, availability.BookedInterval{Start: o.StartTime, End: o.EndTime, Ref: "time-off:" + o.SeriesID.String()})
	}
	availability.SortIntervals(out)
	return out, nil
}
