package calendar

import (
	"context"
	"log/slog"
	"time"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
)

// IntervalCache stores the booked intervals of one barber for one local day.
// Invalidate advances the day's version; Set is a no-op once the version
// differs from the one passed in.
type IntervalCache interface {
	Get(ctx context.Context, barberID string, day time.Time) ([]availability.BookedInterval, bool, error)
	Version(ctx context.Context, barberID string, day time.Time) (int64, error)
	Set(ctx context.Context, barberID string, day time.Time, version int64, intervals []availability.BookedInterval) error
	Invalidate(ctx context.Context, barberID string, day time.Time) error
}

// CachedSource is a read-through cache in front of another source. Cache
// failures are logged and never fail the read.
type CachedSource struct {
	next   BookedIntervalSource
	cache  IntervalCache
	logger *slog.Logger
}

func NewCachedSource(next BookedIntervalSource, cache IntervalCache, logger *slog.Logger) *CachedSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSource{next: next, cache: cache, logger: logger.With("component", "calendar.cache")}
}

func (c *CachedSource) BookedIntervals(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error) {
	cached, ok, err := c.cache.Get(ctx, barber.ID, dayStart)
	if err != nil {
		c.logger.WarnContext(ctx, "interval cache read failed", "barber_id", barber.ID, "err", err)
	}
	if ok {
		return cached, nil
	}

	version, verr := c.cache.Version(ctx, barber.ID, dayStart)
	if verr != nil {
		c.logger.WarnContext(ctx, "interval cache version read failed", "barber_id", barber.ID, "err", verr)
	}

	intervals, err := c.next.BookedIntervals(ctx, barber, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		return intervals, nil
	}
	if err := c.cache.Set(ctx, barber.ID, dayStart, version, intervals); err != nil {
		c.logger.WarnContext(ctx, "interval cache write failed", "barber_id", barber.ID, "err", err)
	}
	return intervals, nil
}

// Invalidate drops the cached entries of every local day touched by
// [start, end) in loc.
func (c *CachedSource) Invalidate(ctx context.Context, barberID string, start, end time.Time, loc *time.Location) {
	day, _ := availability.DayRange(start.In(loc))
	for ; day.Before(end); day = day.AddDate(0, 0, 1) {
		if err := c.cache.Invalidate(ctx, barberID, day); err != nil {
			c.logger.WarnContext(ctx, "interval cache invalidate failed", "barber_id", barberID, "day", day.Format(dateLayout), "err", err)
		}
	}
}
