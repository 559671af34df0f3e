package bookings

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/observability"
)

type AvailabilityQuery struct {
	BarberID  string
	ServiceID string
	Date      string
}

type Slot struct {
	BarberID string
	Start    time.Time
	End      time.Time
}

type AvailabilityResult struct {
	Date      time.Time
	ServiceID string
	Slots     []Slot
}

// Availability lists the bookable starts of one barber for one service on
// one local date. Slots that already started are omitted.
func (s *Service) Availability(ctx context.Context, q AvailabilityQuery) (AvailabilityResult, error) {
	barber, svc, err := s.lookup(strings.TrimSpace(q.BarberID), strings.TrimSpace(q.ServiceID))
	if err != nil {
		return AvailabilityResult{}, err
	}
	day, err := s.ParseDate(strings.TrimSpace(q.Date))
	if err != nil {
		return AvailabilityResult{}, err
	}

	slots, err := s.freeSlots(ctx, barber, svc, day, "")
	if err != nil {
		return AvailabilityResult{}, err
	}
	return AvailabilityResult{Date: day, ServiceID: svc.ID, Slots: toSlots(barber.ID, slots)}, nil
}

// AvailabilityAnyBarber merges the free slots of every barber, ordered by
// start time and then barber id.
func (s *Service) AvailabilityAnyBarber(ctx context.Context, serviceID, date string) (AvailabilityResult, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return AvailabilityResult{}, validationError("service_id is required")
	}
	svc, ok := s.catalog.Service(serviceID)
	if !ok {
		return AvailabilityResult{}, validationError("unknown service_id")
	}
	day, err := s.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return AvailabilityResult{}, err
	}

	perBarber := make([][]Slot, len(s.catalog.Barbers))
	g, gctx := errgroup.WithContext(ctx)
	for i, barber := range s.catalog.Barbers {
		g.Go(func() error {
			slots, err := s.freeSlots(gctx, barber, svc, day, "")
			if err != nil {
				return err
			}
			perBarber[i] = toSlots(barber.ID, slots)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AvailabilityResult{}, err
	}

	merged := make([]Slot, 0)
	for _, slots := range perBarber {
		merged = append(merged, slots...)
	}
	slices.SortFunc(merged, func(a, b Slot) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return strings.Compare(a.BarberID, b.BarberID)
	})
	return AvailabilityResult{Date: day, ServiceID: svc.ID, Slots: merged}, nil
}

// freeSlots runs the engine for one barber and day. excludeRef removes the
// booked interval of a booking that is being moved.
func (s *Service) freeSlots(ctx context.Context, barber domain.Barber, svc domain.Service, day time.Time, excludeRef string) ([]availability.CandidateSlot, error) {
	ctx, span := observability.StartAvailabilitySpan(ctx, barber.ID, svc.ID, day)
	defer span.End()

	window := barber.WindowFor(day.Weekday())
	if window.Closed {
		observability.RecordAvailabilityResult(span, 0, 0, 0, nil)
		s.metrics.RecordAvailability(ctx, barber.ID, "ok", 0)
		return []availability.CandidateSlot{}, nil
	}

	booked, err := s.fetchBooked(ctx, barber, day)
	if err != nil {
		observability.RecordAvailabilityResult(span, 0, 0, 0, err)
		s.metrics.RecordAvailability(ctx, barber.ID, "unavailable", 0)
		return nil, err
	}
	booked = availability.ExcludeRef(booked, excludeRef)

	dropped := 0
	if s.malformed == MalformedSkip {
		booked, dropped = availability.SanitizeIntervals(booked)
		if dropped > 0 {
			s.logger.WarnContext(ctx, "skipped malformed booked intervals",
				"barber_id", barber.ID,
				"date", day.Format(time.DateOnly),
				"dropped", dropped,
			)
		}
	}
	booked = availability.PadIntervals(booked, s.catalog.Buffer())

	slots, err := availability.ComputeAvailableSlots(day, window, svc.Duration(), booked, s.catalog.GridInterval())
	if err != nil {
		observability.RecordAvailabilityResult(span, len(booked), 0, dropped, err)
		s.metrics.RecordAvailability(ctx, barber.ID, "error", 0)
		if errors.Is(err, availability.ErrInvalidInterval) {
			return nil, fmt.Errorf("booked intervals for barber %q: %w", barber.ID, err)
		}
		return nil, err
	}
	slots = availability.NotBefore(slots, s.now())

	observability.RecordAvailabilityResult(span, len(booked), len(slots), dropped, nil)
	s.metrics.RecordAvailability(ctx, barber.ID, "ok", len(slots))
	return slots, nil
}

func (s *Service) fetchBooked(ctx context.Context, barber domain.Barber, day time.Time) ([]availability.BookedInterval, error) {
	dayStart, dayEnd := availability.DayRange(day)

	fetchCtx := ctx
	if s.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()
	}
	fetchCtx, span := observability.StartSourceFetchSpan(fetchCtx, barber.ID, dayStart, dayEnd)
	booked, err := s.source.BookedIntervals(fetchCtx, barber, dayStart, dayEnd)
	observability.RecordError(span, err)
	span.End()
	if err == nil {
		return booked, nil
	}

	s.metrics.RecordSourceFailure(ctx, barber.ID, string(s.failurePolicy))
	if s.failurePolicy == FailOpen {
		s.logger.WarnContext(ctx, "booked interval fetch failed, serving without agenda",
			"barber_id", barber.ID,
			"date", day.Format(time.DateOnly),
			"err", err,
		)
		return nil, nil
	}
	s.logger.ErrorContext(ctx, "booked interval fetch failed",
		"barber_id", barber.ID,
		"date", day.Format(time.DateOnly),
		"err", err,
	)
	return nil, fmt.Errorf("%w: %v", ErrAvailabilityUnavailable, err)
}

func toSlots(barberID string, slots []availability.CandidateSlot) []Slot {
	out := make([]Slot, 0, len(slots))
	for _, c := range slots {
		out = append(out, Slot{BarberID: barberID, Start: c.Start, End: c.End})
	}
	return out
}
