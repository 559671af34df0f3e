package calendar

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
)

// MultiSource queries every source concurrently and returns the union. Any
// failing source fails the whole call and cancels the rest.
type MultiSource struct {
	sources []BookedIntervalSource
}

func NewMultiSource(sources ...BookedIntervalSource) *MultiSource {
	return &MultiSource{sources: sources}
}

func (m *MultiSource) BookedIntervals(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error) {
	results := make([][]availability.BookedInterval, len(m.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range m.sources {
		g.Go(func() error {
			intervals, err := src.BookedIntervals(gctx, barber, dayStart, dayEnd)
			if err != nil {
				return err
			}
			results[i] = intervals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []availability.BookedInterval
	for _, r := range results {
		out = append(out, r...)
	}
	availability.SortIntervals(out)
	return out, nil
}
