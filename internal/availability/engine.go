// Package availability computes bookable slots for one barber on one day.
//
// Everything here is pure: no I/O, no clocks, no shared state. Callers fetch
// booked intervals themselves and pass them in, so the functions are safe to
// call from any number of goroutines.
package availability

import (
	"fmt"
	"time"

	"barbearia/backend/internal/domain"
)

const DefaultGridInterval = domain.DefaultGridIntervalMinutes * time.Minute

// BookedInterval is a committed [Start, End) span in a barber's agenda. Ref
// identifies where it came from (booking id, calendar event id) and is only
// used to exclude a booking from its own reschedule check.
type BookedInterval struct {
	Start time.Time
	End   time.Time
	Ref   string
}

func (b BookedInterval) Valid() bool {
	return b.Start.Before(b.End)
}

type CandidateSlot struct {
	Start time.Time
	End   time.Time
}

// DayRange returns local midnight of day and the following midnight, in
// day's location.
func DayRange(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// wallClock places minute-of-day on day's calendar date. Minute 1440 is the
// next midnight.
func wallClock(day time.Time, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minute, 0, 0, day.Location())
}

// GenerateCandidates lays the grid over the working window. A candidate is
// kept only when it ends at or before the window end; nothing is truncated.
// Invalid input yields no candidates.
func GenerateCandidates(day time.Time, window domain.WorkingWindow, serviceDuration, grid time.Duration) []CandidateSlot {
	if window.Closed || serviceDuration <= 0 || grid <= 0 {
		return nil
	}
	if window.Validate() != nil {
		return nil
	}

	windowStart := wallClock(day, window.StartMinute)
	windowEnd := wallClock(day, window.EndMinute)

	var out []CandidateSlot
	for t := windowStart; !t.Add(serviceDuration).After(windowEnd); t = t.Add(grid) {
		out = append(out, CandidateSlot{Start: t, End: t.Add(serviceDuration)})
	}
	return out
}

// IsAvailable reports whether candidate overlaps none of booked. Intervals
// are half-open, so a slot ending exactly when a booking starts is free.
func IsAvailable(candidate CandidateSlot, booked []BookedInterval) bool {
	for _, b := range booked {
		if candidate.Start.Before(b.End) && candidate.End.After(b.Start) {
			return false
		}
	}
	return true
}

// ComputeAvailableSlots returns the candidates of the day that do not collide
// with any booked interval, in ascending start order. The result is never nil
// on success. Configuration is validated first; a closed window then yields
// no slots without looking at booked.
func ComputeAvailableSlots(day time.Time, window domain.WorkingWindow, serviceDuration time.Duration, booked []BookedInterval, grid time.Duration) ([]CandidateSlot, error) {
	if serviceDuration <= 0 {
		return nil, fmt.Errorf("%w: service duration must be positive, got %s", ErrInvalidConfiguration, serviceDuration)
	}
	if grid <= 0 {
		return nil, fmt.Errorf("%w: grid interval must be positive, got %s", ErrInvalidConfiguration, grid)
	}
	if err := window.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if window.Closed {
		return []CandidateSlot{}, nil
	}
	for i, b := range booked {
		if !b.Valid() {
			return nil, fmt.Errorf("%w: entry %d starts at %s and ends at %s", ErrInvalidInterval, i, b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339))
		}
	}

	candidates := GenerateCandidates(day, window, serviceDuration, grid)
	out := make([]CandidateSlot, 0, len(candidates))
	for _, c := range candidates {
		if IsAvailable(c, booked) {
			out = append(out, c)
		}
	}
	return out, nil
}
