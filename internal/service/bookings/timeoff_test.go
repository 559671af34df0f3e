package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"barbearia/backend/internal/store"
)

func intPtr(v int) *int { return &v }

func TestServiceCreateTimeOff_Validation(t *testing.T) {
	svc, _ := newTestService(t, nil)
	start := local(2026, 11, 4, 12, 0)
	end := local(2026, 11, 4, 13, 0)
	farUntil := start.Add(200 * 24 * time.Hour)
	earlyUntil := start.Add(-time.Hour)

	tests := []struct {
		name string
		in   CreateTimeOffInput
		want string
	}{
		{"unknown barber", CreateTimeOffInput{BarberID: "zeca", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{Count: intPtr(1)}}, "unknown barber_id"},
		{"end before start", CreateTimeOffInput{BarberID: "joao", StartTime: end, EndTime: start, Rule: WeeklyRuleInput{Count: intPtr(1)}}, "end_time must be after start_time"},
		{"bad weekday", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{ByWeekday: []int16{8}, Count: intPtr(1)}}, "invalid weekday"},
		{"negative interval", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{Interval: -1, Count: intPtr(1)}}, "interval must be at least 1"},
		{"no bound", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end}, "until or count is required"},
		{"until too far", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{Until: &farUntil}}, "until must be within 180 days of start_time"},
		{"until before start", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{Until: &earlyUntil}}, "until must be after start_time"},
		{"count too large", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{Count: intPtr(40)}}, "count exceeds occurrences available within 180 days of start_time"},
		{"bad zone", CreateTimeOffInput{BarberID: "joao", StartTime: start, EndTime: end, Rule: WeeklyRuleInput{Count: intPtr(1), TimeZone: "Mars/Base"}}, "invalid time_zone"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTimeOff(context.Background(), tc.in)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want *ValidationError", err)
			}
			if vErr.Error() != tc.want {
				t.Fatalf("error = %q, want %q", vErr.Error(), tc.want)
			}
		})
	}
}

func TestServiceCreateTimeOff_BlocksAvailability(t *testing.T) {
	inv := &fakeInvalidator{}
	svc, _ := newTestService(t, func(d *Deps) { d.Invalidator = inv })

	series, err := svc.CreateTimeOff(context.Background(), CreateTimeOffInput{
		BarberID:  "joao",
		Reason:    "almoço",
		StartTime: local(2026, 11, 2, 12, 0),
		EndTime:   local(2026, 11, 2, 14, 0),
		Rule:      WeeklyRuleInput{ByWeekday: []int16{3, 1, 3}, Count: intPtr(4)},
	})
	if err != nil {
		t.Fatalf("CreateTimeOff error: %v", err)
	}
	if series.Timezone != "America/Sao_Paulo" {
		t.Fatalf("timezone = %q, want America/Sao_Paulo", series.Timezone)
	}
	if len(series.ByWeekday) != 2 || series.ByWeekday[0] != 1 || series.ByWeekday[1] != 3 {
		t.Fatalf("byweekday = %v, want [1 3]", series.ByWeekday)
	}
	if len(inv.calls) != 4 {
		t.Fatalf("invalidations = %d, want 4", len(inv.calls))
	}

	res, err := svc.Availability(context.Background(), AvailabilityQuery{BarberID: "joao", ServiceID: "corte", Date: "2026-11-04"})
	if err != nil {
		t.Fatalf("Availability error: %v", err)
	}
	for _, hhmm := range []string{"11:30", "12:00", "13:30"} {
		if containsStart(res.Slots, hhmm) {
			t.Fatalf("slot %s overlaps time off", hhmm)
		}
	}
	for _, hhmm := range []string{"11:00", "14:00"} {
		if !containsStart(res.Slots, hhmm) {
			t.Fatalf("slot %s should be offered", hhmm)
		}
	}

	occs, err := svc.ListTimeOff(context.Background(), "joao", "2026-11-04")
	if err != nil {
		t.Fatalf("ListTimeOff error: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("len(occurrences) = %d, want 1", len(occs))
	}
}

func TestServiceCreateTimeOff_ConflictsWithBooking(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if _, err := svc.Create(context.Background(), validCreate()); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	_, err := svc.CreateTimeOff(context.Background(), CreateTimeOffInput{
		BarberID:  "joao",
		StartTime: local(2026, 11, 4, 10, 0),
		EndTime:   local(2026, 11, 4, 11, 0),
		Rule:      WeeklyRuleInput{Count: intPtr(2)},
	})
	if !errors.Is(err, store.ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}
