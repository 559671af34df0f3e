package store

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"barbearia/backend/internal/domain"
)

// CreateBooking inserts b unless it collides with the barber's agenda, with
// buffer kept free on both sides of every booking. A replay of an existing
// id returns the stored booking when the payload matches and
// ErrIdempotencyConflict when it does not.
func CreateBooking(ctx context.Context, tx BarberTx, b domain.Booking, buffer time.Duration) (domain.Booking, error) {
	if b.ID != uuid.Nil {
		existing, err := tx.GetBooking(ctx, b.ID)
		switch {
		case err == nil:
			if !SameBooking(existing, b) {
				return domain.Booking{}, ErrIdempotencyConflict
			}
			return existing, nil
		case !errors.Is(err, ErrNotFound):
			return domain.Booking{}, err
		}
	}

	if err := EnsureSlotFree(ctx, tx, b.BarberID, b.StartTime, b.EndTime, buffer, uuid.Nil); err != nil {
		return domain.Booking{}, err
	}
	return tx.InsertBooking(ctx, b)
}

func CancelBooking(ctx context.Context, tx BarberTx, id uuid.UUID) (domain.Booking, error) {
	b, err := tx.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Active() {
		return b, nil
	}
	b.Status = domain.BookingStatusCancelled
	return tx.UpdateBooking(ctx, b)
}

func RescheduleBooking(ctx context.Context, tx BarberTx, id uuid.UUID, start, end time.Time, buffer time.Duration) (domain.Booking, error) {
	b, err := tx.GetBooking(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if !b.Active() {
		return domain.Booking{}, ErrBookingCancelled
	}
	if err := EnsureSlotFree(ctx, tx, b.BarberID, start, end, buffer, b.ID); err != nil {
		return domain.Booking{}, err
	}
	b.StartTime = start
	b.EndTime = end
	return tx.UpdateBooking(ctx, b)
}

// EnsureSlotFree returns ErrConflict when [start-buffer, end+buffer)
// overlaps a confirmed booking other than exclude or a time-off occurrence
// of the barber.
func EnsureSlotFree(ctx context.Context, tx BarberTx, barberID string, start, end time.Time, buffer time.Duration, exclude uuid.UUID) error {
	if buffer > 0 {
		start = start.Add(-buffer)
		end = end.Add(buffer)
	}
	bookings, err := tx.ListBookings(ctx, barberID, start, end)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if b.ID != exclude && b.Active() && b.Overlaps(start, end) {
			return ErrConflict
		}
	}

	seriesRows, err := tx.ListTimeOffSeries(ctx, barberID)
	if err != nil {
		return err
	}
	occs, err := ExpandTimeOff(seriesRows, start, end)
	if err != nil {
		return err
	}
	if len(occs) > 0 {
		return ErrConflict
	}
	return nil
}

// EnsureTimeOffFree checks a new series against itself, the barber's
// bookings and the barber's other series within the lookahead horizon.
func EnsureTimeOffFree(ctx context.Context, tx BarberTx, series domain.TimeOffSeries) error {
	windowStart := series.DTStart.UTC()
	windowEnd := windowStart.Add(TimeOffConflictLookahead)
	if series.Until != nil && series.Until.UTC().Before(windowEnd) {
		windowEnd = series.Until.UTC()
	}
	windowEnd = windowEnd.Add(time.Duration(series.DurationSeconds) * time.Second)

	newOccs, err := domain.GenerateWeeklyTimeOff(series, windowStart, windowEnd)
	if err != nil {
		return err
	}
	if len(newOccs) == 0 {
		return nil
	}
	sortOccurrences(newOccs)
	windowEnd = newOccs[len(newOccs)-1].EndTime

	for i := 1; i < len(newOccs); i++ {
		if newOccs[i-1].EndTime.After(newOccs[i].StartTime) {
			return ErrConflict
		}
	}

	bookings, err := tx.ListBookings(ctx, series.BarberID, windowStart, windowEnd)
	if err != nil {
		return err
	}
	seriesRows, err := tx.ListTimeOffSeries(ctx, series.BarberID)
	if err != nil {
		return err
	}
	existing, err := ExpandTimeOff(seriesRows, windowStart, windowEnd)
	if err != nil {
		return err
	}

	for _, n := range newOccs {
		for _, b := range bookings {
			if b.Active() && b.Overlaps(n.StartTime, n.EndTime) {
				return ErrConflict
			}
		}
		for _, e := range existing {
			if n.StartTime.Before(e.EndTime) && n.EndTime.After(e.StartTime) {
				return ErrConflict
			}
		}
	}
	return nil
}

// ExpandTimeOff generates the occurrences of every series overlapping the
// window, ordered by start.
func ExpandTimeOff(seriesRows []domain.TimeOffSeries, windowStart, windowEnd time.Time) ([]domain.TimeOffOccurrence, error) {
	var out []domain.TimeOffOccurrence
	for _, s := range seriesRows {
		if !s.DTStart.Before(windowEnd) {
			continue
		}
		occs, err := domain.GenerateWeeklyTimeOff(s, windowStart, windowEnd)
		if err != nil {
			return nil, err
		}
		out = append(out, occs...)
	}
	sortOccurrences(out)
	return out, nil
}

// SameBooking reports whether two bookings carry the same request payload.
func SameBooking(a, b domain.Booking) bool {
	return a.BarberID == b.BarberID &&
		a.ServiceID == b.ServiceID &&
		a.CustomerName == b.CustomerName &&
		a.CustomerPhone == b.CustomerPhone &&
		a.Notes == b.Notes &&
		a.StartTime.Equal(b.StartTime) &&
		a.EndTime.Equal(b.EndTime)
}

func sortOccurrences(occs []domain.TimeOffOccurrence) {
	slices.SortFunc(occs, func(a, b domain.TimeOffOccurrence) int {
		return a.StartTime.Compare(b.StartTime)
	})
}
