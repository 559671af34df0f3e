package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/events"
	"barbearia/backend/internal/observability"
	"barbearia/backend/internal/store"
)

const (
	minCustomerNameLen = 3
	minPhoneDigits     = 10
	maxIdempotencyKey  = 256
)

type CreateInput struct {
	BarberID       string
	ServiceID      string
	CustomerName   string
	CustomerPhone  string
	Notes          string
	StartTime      time.Time
	IdempotencyKey string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Booking, error) {
	ctx, span := observability.StartBookingSpan(ctx, "create", in.BarberID)
	defer span.End()

	b, err := s.create(ctx, in)
	observability.RecordError(span, err)
	return b, err
}

func (s *Service) create(ctx context.Context, in CreateInput) (domain.Booking, error) {
	name := strings.TrimSpace(in.CustomerName)
	if utf8.RuneCountInString(name) < minCustomerNameLen {
		return domain.Booking{}, validationError("customer_name must have at least 3 characters")
	}
	phone := strings.TrimSpace(in.CustomerPhone)
	if countDigits(phone) < minPhoneDigits {
		return domain.Booking{}, validationError("customer_phone must have at least 10 digits")
	}
	barber, svc, err := s.lookup(strings.TrimSpace(in.BarberID), strings.TrimSpace(in.ServiceID))
	if err != nil {
		return domain.Booking{}, err
	}
	if in.StartTime.IsZero() {
		return domain.Booking{}, validationError("start_time is required")
	}

	start := in.StartTime.UTC()
	b := domain.Booking{
		BarberID:      barber.ID,
		ServiceID:     svc.ID,
		CustomerName:  name,
		CustomerPhone: phone,
		Notes:         strings.TrimSpace(in.Notes),
		StartTime:     start,
		EndTime:       start.Add(svc.Duration()),
	}

	key := strings.TrimSpace(in.IdempotencyKey)
	if key != "" {
		if len(key) > maxIdempotencyKey {
			return domain.Booking{}, validationError("idempotency_key too long")
		}
		b.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("barbearia:create_booking:"+barber.ID+":"+key))

		// A replay must not be rejected because its own booking now fills the slot.
		existing, err := s.repo.Get(ctx, b.ID)
		switch {
		case err == nil:
			if !store.SameBooking(existing, b) {
				return domain.Booking{}, store.ErrIdempotencyConflict
			}
			return existing, nil
		case !errors.Is(err, store.ErrNotFound):
			return domain.Booking{}, err
		}
	}

	if start.Before(s.now()) {
		return domain.Booking{}, validationError("start_time is in the past")
	}
	if err := s.ensureBookable(ctx, barber, svc, start, ""); err != nil {
		return domain.Booking{}, err
	}

	created, err := s.repo.Create(ctx, b, s.catalog.Buffer())
	if err != nil {
		return domain.Booking{}, err
	}
	s.invalidate(ctx, created.BarberID, created.StartTime, created.EndTime)
	s.metrics.RecordBookingCreated(ctx, created.BarberID, created.ServiceID)

	eventID, err := s.sink.CreateEvent(ctx, barber, svc, created)
	if err != nil {
		s.logger.WarnContext(ctx, "calendar event create failed", "booking_id", created.ID.String(), "barber_id", barber.ID, "err", err)
	} else if eventID != "" {
		if err := s.repo.SetCalendarEventID(ctx, created.ID, eventID); err != nil {
			s.logger.WarnContext(ctx, "store calendar event id failed", "booking_id", created.ID.String(), "err", err)
		} else {
			created.CalendarEventID = eventID
		}
	}

	s.logger.InfoContext(ctx, "booking created",
		"booking_id", created.ID.String(),
		"barber_id", created.BarberID,
		"service_id", created.ServiceID,
		"start_time", created.StartTime.Format(time.RFC3339),
	)
	s.publish(ctx, events.TypeBookingCreated, created)
	return created, nil
}

// ensureBookable checks that start is a grid slot of the barber's day and is
// still free. excludeRef ignores the interval of the booking being moved.
func (s *Service) ensureBookable(ctx context.Context, barber domain.Barber, svc domain.Service, start time.Time, excludeRef string) error {
	day, _ := availability.DayRange(start.In(s.loc))
	window := barber.WindowFor(day.Weekday())
	if window.Closed {
		return validationError("barber does not work on that day")
	}
	grid := availability.GenerateCandidates(day, window, svc.Duration(), s.catalog.GridInterval())
	if !onGrid(grid, start) {
		return validationError("start_time is not a bookable slot")
	}

	free, err := s.freeSlots(ctx, barber, svc, day, excludeRef)
	if err != nil {
		return err
	}
	if !availability.Contains(free, start) {
		return fmt.Errorf("%w: slot no longer available", store.ErrConflict)
	}
	return nil
}

func onGrid(grid []availability.CandidateSlot, start time.Time) bool {
	for _, c := range grid {
		if c.Start.Equal(start) {
			return true
		}
	}
	return false
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	if id == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}
	return s.repo.Get(ctx, id)
}

// ListDay returns the confirmed bookings of one barber on one local date.
func (s *Service) ListDay(ctx context.Context, barberID, date string) ([]domain.Booking, error) {
	barberID = strings.TrimSpace(barberID)
	if barberID == "" {
		return nil, validationError("barber_id is required")
	}
	if _, ok := s.catalog.Barber(barberID); !ok {
		return nil, validationError("unknown barber_id")
	}
	day, err := s.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, err
	}
	start, end := availability.DayRange(day)
	return s.repo.ListByBarber(ctx, barberID, start.UTC(), end.UTC())
}

// Cancel frees the booking's slot. Cancelling twice returns the cancelled
// booking without side effects.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	if id == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}
	ctx, span := observability.StartBookingSpan(ctx, "cancel", "")
	defer span.End()

	prev, err := s.repo.Get(ctx, id)
	if err != nil {
		observability.RecordError(span, err)
		return domain.Booking{}, err
	}
	if !prev.Active() {
		return prev, nil
	}

	cancelled, err := s.repo.Cancel(ctx, id)
	if err != nil {
		observability.RecordError(span, err)
		return domain.Booking{}, err
	}
	s.invalidate(ctx, cancelled.BarberID, cancelled.StartTime, cancelled.EndTime)

	if cancelled.CalendarEventID != "" {
		if barber, ok := s.catalog.Barber(cancelled.BarberID); ok {
			if err := s.sink.DeleteEvent(ctx, barber, cancelled.CalendarEventID); err != nil {
				s.logger.WarnContext(ctx, "calendar event delete failed", "booking_id", id.String(), "err", err)
			}
		}
	}

	s.logger.InfoContext(ctx, "booking cancelled", "booking_id", id.String(), "barber_id", cancelled.BarberID)
	s.publish(ctx, events.TypeBookingCancelled, cancelled)
	observability.RecordError(span, nil)
	return cancelled, nil
}

type RescheduleInput struct {
	BookingID uuid.UUID
	StartTime time.Time
}

// Reschedule moves a confirmed booking to another free slot of the same
// barber, keeping its service and duration.
func (s *Service) Reschedule(ctx context.Context, in RescheduleInput) (domain.Booking, error) {
	if in.BookingID == uuid.Nil {
		return domain.Booking{}, validationError("booking_id is required")
	}
	if in.StartTime.IsZero() {
		return domain.Booking{}, validationError("start_time is required")
	}
	ctx, span := observability.StartBookingSpan(ctx, "reschedule", "")
	defer span.End()

	moved, err := s.reschedule(ctx, in)
	observability.RecordError(span, err)
	return moved, err
}

func (s *Service) reschedule(ctx context.Context, in RescheduleInput) (domain.Booking, error) {
	prev, err := s.repo.Get(ctx, in.BookingID)
	if err != nil {
		return domain.Booking{}, err
	}
	if !prev.Active() {
		return domain.Booking{}, store.ErrBookingCancelled
	}
	barber, svc, err := s.lookup(prev.BarberID, prev.ServiceID)
	if err != nil {
		return domain.Booking{}, err
	}

	start := in.StartTime.UTC()
	if start.Equal(prev.StartTime) {
		return prev, nil
	}
	if start.Before(s.now()) {
		return domain.Booking{}, validationError("start_time is in the past")
	}
	if err := s.ensureBookable(ctx, barber, svc, start, prev.ID.String()); err != nil {
		return domain.Booking{}, err
	}

	moved, err := s.repo.Reschedule(ctx, prev.ID, start, start.Add(svc.Duration()), s.catalog.Buffer())
	if err != nil {
		return domain.Booking{}, err
	}
	s.invalidate(ctx, prev.BarberID, prev.StartTime, prev.EndTime)
	s.invalidate(ctx, moved.BarberID, moved.StartTime, moved.EndTime)

	if moved.CalendarEventID != "" {
		if err := s.sink.MoveEvent(ctx, barber, moved); err != nil {
			s.logger.WarnContext(ctx, "calendar event move failed", "booking_id", moved.ID.String(), "err", err)
		}
	}

	s.logger.InfoContext(ctx, "booking rescheduled",
		"booking_id", moved.ID.String(),
		"barber_id", moved.BarberID,
		"start_time", moved.StartTime.Format(time.RFC3339),
	)
	s.publish(ctx, events.TypeBookingRescheduled, moved)
	return moved, nil
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
