// Package calendar supplies the booked intervals the availability engine
// filters against, and mirrors bookings into remote calendars.
package calendar

import (
	"context"
	"time"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
)

//go:generate mockgen -source=source.go -destination=mock_source.go -package=calendar

// BookedIntervalSource returns the committed intervals of one barber that
// overlap [dayStart, dayEnd). Implementations may be slow or fail; callers
// bound them with a context deadline.
type BookedIntervalSource interface {
	BookedIntervals(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error)
}

// SourceFunc adapts a function to BookedIntervalSource.
type SourceFunc func(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error)

func (f SourceFunc) BookedIntervals(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error) {
	return f(ctx, barber, dayStart, dayEnd)
}

// EventSink mirrors booking lifecycle changes into a remote calendar.
type EventSink interface {
	CreateEvent(ctx context.Context, barber domain.Barber, service domain.Service, b domain.Booking) (string, error)
	MoveEvent(ctx context.Context, barber domain.Barber, b domain.Booking) error
	DeleteEvent(ctx context.Context, barber domain.Barber, eventID string) error
}

type NopSink struct{}

func (NopSink) CreateEvent(context.Context, domain.Barber, domain.Service, domain.Booking) (string, error) {
	return "", nil
}

func (NopSink) MoveEvent(context.Context, domain.Barber, domain.Booking) error { return nil }

func (NopSink) DeleteEvent(context.Context, domain.Barber, string) error { return nil }
