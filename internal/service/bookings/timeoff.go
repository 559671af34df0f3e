package bookings

import (
	"context"
	"strings"
	"time"

	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/store"
)

type CreateTimeOffInput struct {
	BarberID  string
	Reason    string
	StartTime time.Time
	EndTime   time.Time
	Rule      WeeklyRuleInput
}

type WeeklyRuleInput struct {
	Interval  int
	ByWeekday []int16
	Until     *time.Time
	Count     *int
	// TimeZone defaults to the shop's time zone.
	TimeZone string
}

// CreateTimeOff registers a weekly recurring block in a barber's agenda. The
// first StartTime/EndTime pair fixes the local time of day and duration.
func (s *Service) CreateTimeOff(ctx context.Context, in CreateTimeOffInput) (domain.TimeOffSeries, error) {
	barberID := strings.TrimSpace(in.BarberID)
	if barberID == "" {
		return domain.TimeOffSeries{}, validationError("barber_id is required")
	}
	if _, ok := s.catalog.Barber(barberID); !ok {
		return domain.TimeOffSeries{}, validationError("unknown barber_id")
	}

	tz := strings.TrimSpace(in.Rule.TimeZone)
	if tz == "" {
		tz = s.loc.String()
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return domain.TimeOffSeries{}, validationError("invalid time_zone")
	}

	start := in.StartTime.UTC()
	end := in.EndTime.UTC()
	if end.Equal(start) || end.Before(start) {
		return domain.TimeOffSeries{}, validationError("end_time must be after start_time")
	}
	if end.Sub(start) > 24*time.Hour {
		return domain.TimeOffSeries{}, validationError("duration too long")
	}
	durationSeconds := int(end.Sub(start) / time.Second)

	interval := in.Rule.Interval
	if interval == 0 {
		interval = 1
	}
	if interval < 1 {
		return domain.TimeOffSeries{}, validationError("interval must be at least 1")
	}

	weekdays := in.Rule.ByWeekday
	if len(weekdays) == 0 {
		weekdays = []int16{domain.ISOWeekday(start.In(loc).Weekday())}
	}
	weekdays, err = domain.NormalizeWeekdays(weekdays)
	if err != nil {
		return domain.TimeOffSeries{}, validationError(err.Error())
	}

	var untilUTC *time.Time
	if in.Rule.Until != nil {
		u := in.Rule.Until.UTC()
		if u.Before(start) {
			return domain.TimeOffSeries{}, validationError("until must be after start_time")
		}
		untilUTC = &u
	}

	var count *int
	if in.Rule.Count != nil {
		c := *in.Rule.Count
		if c < 1 {
			return domain.TimeOffSeries{}, validationError("count must be at least 1")
		}
		count = &c
	}

	if untilUTC == nil && count == nil {
		return domain.TimeOffSeries{}, validationError("until or count is required")
	}

	series := domain.TimeOffSeries{
		BarberID:        barberID,
		Reason:          strings.TrimSpace(in.Reason),
		Timezone:        tz,
		DTStart:         start,
		DurationSeconds: durationSeconds,
		Interval:        interval,
		ByWeekday:       weekdays,
		Until:           untilUTC,
		Count:           count,
	}

	lookaheadEnd := start.Add(store.TimeOffConflictLookahead)
	duration := time.Duration(durationSeconds) * time.Second

	if count == nil && untilUTC != nil && untilUTC.After(lookaheadEnd) {
		return domain.TimeOffSeries{}, validationError("until must be within 180 days of start_time")
	}

	occLimitEnd := lookaheadEnd
	if untilUTC != nil && untilUTC.Before(occLimitEnd) {
		occLimitEnd = *untilUTC
	}

	probe := series
	probe.Until = &occLimitEnd
	probe.Count = nil
	occs, err := domain.GenerateWeeklyTimeOff(probe, start, occLimitEnd.Add(duration))
	if err != nil {
		return domain.TimeOffSeries{}, validationError(err.Error())
	}
	if len(occs) == 0 {
		return domain.TimeOffSeries{}, validationError("recurrence rule produces no occurrences")
	}
	if count != nil && *count > len(occs) {
		if untilUTC != nil && untilUTC.Before(lookaheadEnd) {
			return domain.TimeOffSeries{}, validationError("count exceeds occurrences available before until")
		}
		return domain.TimeOffSeries{}, validationError("count exceeds occurrences available within 180 days of start_time")
	}

	created, err := s.repo.CreateTimeOffSeries(ctx, series)
	if err != nil {
		return domain.TimeOffSeries{}, err
	}

	if count != nil {
		occs = occs[:*count]
	}
	for _, occ := range occs {
		s.invalidate(ctx, barberID, occ.StartTime, occ.EndTime)
	}

	s.logger.InfoContext(ctx, "time off created",
		"series_id", created.ID.String(),
		"barber_id", barberID,
		"occurrences", len(occs),
	)
	return created, nil
}

func (s *Service) ListTimeOff(ctx context.Context, barberID, date string) ([]domain.TimeOffOccurrence, error) {
	barberID = strings.TrimSpace(barberID)
	if _, ok := s.catalog.Barber(barberID); !ok {
		return nil, validationError("unknown barber_id")
	}
	day, err := s.ParseDate(strings.TrimSpace(date))
	if err != nil {
		return nil, err
	}
	return s.repo.ListTimeOff(ctx, barberID, day.UTC(), day.AddDate(0, 0, 1).UTC())
}
