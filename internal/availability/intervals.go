package availability

import (
	"slices"
	"time"
)

// SanitizeIntervals drops entries with Start >= End and reports how many
// were dropped. The input is left untouched.
func SanitizeIntervals(booked []BookedInterval) ([]BookedInterval, int) {
	out := make([]BookedInterval, 0, len(booked))
	for _, b := range booked {
		if b.Valid() {
			out = append(out, b)
		}
	}
	return out, len(booked) - len(out)
}

// PadIntervals widens every interval by buffer on both sides, keeping a gap
// between consecutive bookings. Malformed entries are passed through as-is
// so validation still sees them.
func PadIntervals(booked []BookedInterval, buffer time.Duration) []BookedInterval {
	if buffer <= 0 {
		return booked
	}
	out := make([]BookedInterval, len(booked))
	for i, b := range booked {
		if b.Valid() {
			b.Start = b.Start.Add(-buffer)
			b.End = b.End.Add(buffer)
		}
		out[i] = b
	}
	return out
}

// ExcludeRef removes intervals carrying ref.
func ExcludeRef(booked []BookedInterval, ref string) []BookedInterval {
	if ref == "" {
		return booked
	}
	return slices.DeleteFunc(slices.Clone(booked), func(b BookedInterval) bool {
		return b.Ref == ref
	})
}

// NotBefore drops slots starting before t.
func NotBefore(slots []CandidateSlot, t time.Time) []CandidateSlot {
	out := make([]CandidateSlot, 0, len(slots))
	for _, s := range slots {
		if !s.Start.Before(t) {
			out = append(out, s)
		}
	}
	return out
}

// Contains reports whether a slot starting at start is in slots.
func Contains(slots []CandidateSlot, start time.Time) bool {
	for _, s := range slots {
		if s.Start.Equal(start) {
			return true
		}
	}
	return false
}

// SortIntervals orders intervals by start, then end.
func SortIntervals(booked []BookedInterval) {
	slices.SortFunc(booked, func(a, b BookedInterval) int {
		if c := a.Start.Compare(b.Start); c != 0 {
			return c
		}
		return a.End.Compare(b.End)
	})
}
