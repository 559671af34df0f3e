package availability

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"barbearia/backend/internal/domain"
)

var monday = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func at(hhmm string) time.Time {
	m, err := domain.ParseClock(hhmm)
	if err != nil {
		panic(err)
	}
	return monday.Add(time.Duration(m) * time.Minute)
}

func booked(start, end string) BookedInterval {
	return BookedInterval{Start: at(start), End: at(end)}
}

func window(start, end string) domain.WorkingWindow {
	w, err := domain.WindowFromClock(start, end)
	if err != nil {
		panic(err)
	}
	return w
}

func starts(slots []CandidateSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Start.Format("15:04"))
	}
	return out
}

func TestGenerateCandidates(t *testing.T) {
	tests := []struct {
		name     string
		window   domain.WorkingWindow
		duration time.Duration
		grid     time.Duration
		want     []string
	}{
		{
			name:     "grid alignment excludes overrun",
			window:   window("09:00", "10:00"),
			duration: 45 * time.Minute,
			grid:     30 * time.Minute,
			want:     []string{"09:00"},
		},
		{
			name:     "exact fit at closing",
			window:   window("09:00", "10:30"),
			duration: 30 * time.Minute,
			grid:     30 * time.Minute,
			want:     []string{"09:00", "09:30", "10:00"},
		},
		{
			name:     "service longer than window",
			window:   window("09:00", "09:30"),
			duration: 45 * time.Minute,
			grid:     30 * time.Minute,
			want:     []string{},
		},
		{
			name:     "closed",
			window:   domain.ClosedWindow(),
			duration: 30 * time.Minute,
			grid:     30 * time.Minute,
			want:     []string{},
		},
		{
			name:     "window to midnight",
			window:   window("22:00", "24:00"),
			duration: time.Hour,
			grid:     30 * time.Minute,
			want:     []string{"22:00", "22:30", "23:00"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := starts(GenerateCandidates(monday, tt.window, tt.duration, tt.grid))
			if !slices.Equal(got, tt.want) {
				t.Fatalf("GenerateCandidates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateCandidates_EndIsStartPlusDuration(t *testing.T) {
	for _, c := range GenerateCandidates(monday, window("09:00", "19:00"), 45*time.Minute, 30*time.Minute) {
		if c.End.Sub(c.Start) != 45*time.Minute {
			t.Fatalf("candidate %v-%v, want 45m long", c.Start, c.End)
		}
	}
}

func TestGenerateCandidates_UsesDayLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	day := time.Date(2026, 3, 2, 15, 0, 0, 0, loc)
	got := GenerateCandidates(day, window("09:00", "10:00"), 30*time.Minute, 30*time.Minute)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)
	if !got[0].Start.Equal(want) {
		t.Fatalf("first start = %v, want %v", got[0].Start, want)
	}
}

func TestIsAvailable(t *testing.T) {
	slot := CandidateSlot{Start: at("10:45"), End: at("11:30")}
	tests := []struct {
		name   string
		booked []BookedInterval
		want   bool
	}{
		{name: "empty", booked: nil, want: true},
		{name: "touching before", booked: []BookedInterval{booked("10:00", "10:45")}, want: true},
		{name: "touching after", booked: []BookedInterval{booked("11:30", "12:00")}, want: true},
		{name: "overlap start", booked: []BookedInterval{booked("10:30", "11:00")}, want: false},
		{name: "overlap end", booked: []BookedInterval{booked("11:15", "12:00")}, want: false},
		{name: "contains slot", booked: []BookedInterval{booked("10:00", "12:00")}, want: false},
		{name: "inside slot", booked: []BookedInterval{booked("11:00", "11:10")}, want: false},
		{name: "one of many", booked: []BookedInterval{booked("08:00", "09:00"), booked("11:00", "11:10")}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsAvailable(slot, tt.booked); got != tt.want {
				t.Fatalf("IsAvailable = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeAvailableSlots_Errors(t *testing.T) {
	w := window("09:00", "19:00")
	tests := []struct {
		name     string
		window   domain.WorkingWindow
		duration time.Duration
		grid     time.Duration
		booked   []BookedInterval
		wantErr  error
	}{
		{name: "zero duration", window: w, duration: 0, grid: 30 * time.Minute, wantErr: ErrInvalidConfiguration},
		{name: "negative duration", window: w, duration: -time.Minute, grid: 30 * time.Minute, wantErr: ErrInvalidConfiguration},
		{name: "zero grid", window: w, duration: 30 * time.Minute, grid: 0, wantErr: ErrInvalidConfiguration},
		{name: "inverted window", window: domain.OpenWindow(600, 540), duration: 30 * time.Minute, grid: 30 * time.Minute, wantErr: ErrInvalidConfiguration},
		{name: "empty interval", window: w, duration: 30 * time.Minute, grid: 30 * time.Minute, booked: []BookedInterval{booked("10:00", "10:00")}, wantErr: ErrInvalidInterval},
		{name: "inverted interval", window: w, duration: 30 * time.Minute, grid: 30 * time.Minute, booked: []BookedInterval{booked("10:00", "11:00"), booked("12:00", "11:00")}, wantErr: ErrInvalidInterval},
		{name: "closed day still validates", window: domain.ClosedWindow(), duration: 0, grid: 30 * time.Minute, wantErr: ErrInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeAvailableSlots(monday, tt.window, tt.duration, tt.booked, tt.grid)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestComputeAvailableSlots_NoOverlapAfterBooking(t *testing.T) {
	w := window("09:00", "19:00")
	var taken []BookedInterval
	for range 5 {
		slots, err := ComputeAvailableSlots(monday, w, 45*time.Minute, taken, 30*time.Minute)
		if err != nil {
			t.Fatalf("ComputeAvailableSlots error: %v", err)
		}
		if len(slots) == 0 {
			t.Fatalf("ran out of slots")
		}
		pick := slots[len(slots)/2]
		for _, b := range taken {
			if pick.Start.Before(b.End) && pick.End.After(b.Start) {
				t.Fatalf("offered %v-%v overlapping booked %v-%v", pick.Start, pick.End, b.Start, b.End)
			}
		}
		taken = append(taken, BookedInterval{Start: pick.Start, End: pick.End})

		after, err := ComputeAvailableSlots(monday, w, 45*time.Minute, taken, 30*time.Minute)
		if err != nil {
			t.Fatalf("ComputeAvailableSlots error: %v", err)
		}
		for _, s := range after {
			if !IsAvailable(s, taken) {
				t.Fatalf("slot %v overlaps an accepted booking", s.Start)
			}
		}
	}
}

func TestComputeAvailableSlots_BackToBack(t *testing.T) {
	slots, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute,
		[]BookedInterval{booked("10:00", "10:45")}, 15*time.Minute)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots error: %v", err)
	}
	if !Contains(slots, at("10:45")) {
		t.Fatalf("slots %v do not include 10:45", starts(slots))
	}
}

func TestComputeAvailableSlots_ClosedDay(t *testing.T) {
	for _, b := range [][]BookedInterval{nil, {booked("10:00", "11:00")}, {booked("12:00", "11:00")}} {
		slots, err := ComputeAvailableSlots(monday, domain.ClosedWindow(), 30*time.Minute, b, 30*time.Minute)
		if err != nil {
			t.Fatalf("ComputeAvailableSlots error: %v", err)
		}
		if slots == nil || len(slots) != 0 {
			t.Fatalf("slots = %v, want empty non-nil", slots)
		}
	}
}

func TestComputeAvailableSlots_GridAlignment(t *testing.T) {
	slots, err := ComputeAvailableSlots(monday, window("09:00", "10:00"), 45*time.Minute, nil, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots error: %v", err)
	}
	if got := starts(slots); !slices.Equal(got, []string{"09:00"}) {
		t.Fatalf("slots = %v, want [09:00]", got)
	}
}

func TestComputeAvailableSlots_Idempotent(t *testing.T) {
	b := []BookedInterval{booked("13:00", "13:45"), booked("16:00", "17:00")}
	first, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute, b, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots error: %v", err)
	}
	second, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute, b, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots error: %v", err)
	}
	if !slices.Equal(first, second) {
		t.Fatalf("results differ:\n%v\n%v", starts(first), starts(second))
	}
}

func TestComputeAvailableSlots_LunchScenario(t *testing.T) {
	b := []BookedInterval{booked("13:00", "13:45")}

	t.Run("half hour grid", func(t *testing.T) {
		slots, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute, b, 30*time.Minute)
		if err != nil {
			t.Fatalf("ComputeAvailableSlots error: %v", err)
		}
		want := []string{
			"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00",
			"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00", "17:30", "18:00",
		}
		if got := starts(slots); !slices.Equal(got, want) {
			t.Fatalf("slots = %v, want %v", got, want)
		}
	})

	t.Run("quarter hour grid", func(t *testing.T) {
		slots, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute, b, 15*time.Minute)
		if err != nil {
			t.Fatalf("ComputeAvailableSlots error: %v", err)
		}
		for _, excluded := range []string{"12:30", "13:00", "13:15", "13:30"} {
			if Contains(slots, at(excluded)) {
				t.Fatalf("slots include %s", excluded)
			}
		}
		for _, included := range []string{"12:15", "13:45"} {
			if !Contains(slots, at(included)) {
				t.Fatalf("slots do not include %s", included)
			}
		}
	})
}

func TestComputeAvailableSlots_Concurrent(t *testing.T) {
	b := []BookedInterval{booked("13:00", "13:45")}
	want, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute, b, 30*time.Minute)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots error: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := ComputeAvailableSlots(monday, window("09:00", "19:00"), 45*time.Minute, b, 30*time.Minute)
			if err != nil || !slices.Equal(got, want) {
				errs <- "mismatch"
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Fatal(e)
	}
}
