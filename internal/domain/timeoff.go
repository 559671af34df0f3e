package domain

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TimeOffSeries blocks a barber's agenda on a weekly schedule, e.g. a lunch
// break or a course. Weekdays use ISO numbering (1 = Monday, 7 = Sunday).
type TimeOffSeries struct {
	bun.BaseModel `bun:"table:time_off_series"`

	ID              uuid.UUID  `bun:"id,pk,type:uuid"`
	BarberID        string     `bun:"barber_id,notnull"`
	Reason          string     `bun:"reason"`
	Timezone        string     `bun:"timezone,notnull"`
	DTStart         time.Time  `bun:"dtstart,notnull"`
	DurationSeconds int        `bun:"duration_seconds,notnull"`
	Interval        int        `bun:"interval,notnull"`
	ByWeekday       []int16    `bun:"byweekday,array,notnull"`
	Until           *time.Time `bun:"until"`
	Count           *int       `bun:"count"`
	CreatedAt       time.Time  `bun:"created_at,notnull"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull"`
}

func (s *TimeOffSeries) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		s.EnsureDefaults(now)
	case *bun.UpdateQuery:
		s.UpdatedAt = now
	}
	return nil
}

func (s *TimeOffSeries) EnsureDefaults(now time.Time) {
	if s.ID == uuid.Nil {
		s.ID = uuid.Must(uuid.NewV7())
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
}

type TimeOffOccurrence struct {
	SeriesID  uuid.UUID
	BarberID  string
	Reason    string
	StartTime time.Time
	EndTime   time.Time
}

// GenerateWeeklyTimeOff expands a series into the occurrences that overlap
// [windowStart, windowEnd). Occurrences keep their local wall-clock time
// across DST changes. Count is counted from DTStart, Until is inclusive.
func GenerateWeeklyTimeOff(series TimeOffSeries, windowStart, windowEnd time.Time) ([]TimeOffOccurrence, error) {
	if series.DurationSeconds <= 0 {
		return nil, errors.New("invalid duration")
	}
	loc, err := time.LoadLocation(series.Timezone)
	if err != nil {
		return nil, errors.New("invalid time_zone")
	}
	weekdays, err := NormalizeWeekdays(series.ByWeekday)
	if err != nil {
		return nil, err
	}

	interval := max(series.Interval, 1)
	duration := time.Duration(series.DurationSeconds) * time.Second
	dtstart := series.DTStart.In(loc)
	firstMonday := mondayOf(dtstart)
	lastMonday := mondayOf(windowEnd.In(loc))

	emitted := 0
	var out []TimeOffOccurrence
	for week := firstMonday; !week.After(lastMonday); week = week.AddDate(0, 0, 7*interval) {
		for _, wd := range weekdays {
			day := week.AddDate(0, 0, int(wd)-1)
			start := time.Date(day.Year(), day.Month(), day.Day(),
				dtstart.Hour(), dtstart.Minute(), dtstart.Second(), dtstart.Nanosecond(), loc)
			if start.Before(series.DTStart) {
				continue
			}
			if series.Until != nil && start.After(*series.Until) {
				return out, nil
			}
			if series.Count != nil && emitted >= *series.Count {
				return out, nil
			}
			emitted++

			end := start.Add(duration)
			if start.Before(windowEnd) && end.After(windowStart) {
				out = append(out, TimeOffOccurrence{
					SeriesID:  series.ID,
					BarberID:  series.BarberID,
					Reason:    series.Reason,
					StartTime: start.UTC(),
					EndTime:   end.UTC(),
				})
			}
		}
	}
	return out, nil
}

// NormalizeWeekdays validates and sorts ISO weekdays, dropping duplicates.
func NormalizeWeekdays(in []int16) ([]int16, error) {
	out := make([]int16, 0, len(in))
	for _, wd := range in {
		if wd < 1 || wd > 7 {
			return nil, errors.New("invalid weekday")
		}
		if !slices.Contains(out, wd) {
			out = append(out, wd)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("at least one weekday is required")
	}
	slices.Sort(out)
	return out, nil
}

// mondayOf returns local midnight of the Monday starting t's ISO week.
func mondayOf(t time.Time) time.Time {
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, t.Location())
}

// ISOWeekday maps time.Weekday onto 1 = Monday ... 7 = Sunday.
func ISOWeekday(d time.Weekday) int16 {
	if d == time.Sunday {
		return 7
	}
	return int16(d)
}
