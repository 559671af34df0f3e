package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/store"
)

var start = time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)

func booking(barberID string, s time.Time, d time.Duration) domain.Booking {
	return domain.Booking{
		BarberID:      barberID,
		ServiceID:     "corte",
		CustomerName:  "Carlos",
		CustomerPhone: "11999990000",
		StartTime:     s,
		EndTime:       s.Add(d),
	}
}

func TestStore_CreateListCancel(t *testing.T) {
	ctx := context.Background()
	s := New()

	b, err := s.Create(ctx, booking("joao", start, 45*time.Minute), 0)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if b.ID == uuid.Nil || b.Status != domain.BookingStatusConfirmed {
		t.Fatalf("created = %+v, want id and confirmed status", b)
	}

	if _, err := s.Create(ctx, booking("joao", start.Add(30*time.Minute), 45*time.Minute), 0); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("overlap err = %v, want %v", err, store.ErrConflict)
	}
	if _, err := s.Create(ctx, booking("pedro", start, 45*time.Minute), 0); err != nil {
		t.Fatalf("other barber Create error: %v", err)
	}

	rows, err := s.ListByBarber(ctx, "joao", start.Add(-time.Hour), start.Add(time.Hour))
	if err != nil {
		t.Fatalf("ListByBarber error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	if _, err := s.Cancel(ctx, b.ID); err != nil {
		t.Fatalf("Cancel error: %v", err)
	}
	rows, _ = s.ListByBarber(ctx, "joao", start.Add(-time.Hour), start.Add(time.Hour))
	if len(rows) != 0 {
		t.Fatalf("len(rows) after cancel = %d, want 0", len(rows))
	}
	got, err := s.Get(ctx, b.ID)
	if err != nil || got.Status != domain.BookingStatusCancelled {
		t.Fatalf("Get = %+v, %v, want cancelled", got, err)
	}

	if _, err := s.Cancel(ctx, uuid.New()); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("cancel missing err = %v, want %v", err, store.ErrNotFound)
	}
}

func TestStore_Reschedule(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, _ := s.Create(ctx, booking("joao", start, 45*time.Minute), 0)
	b, _ := s.Create(ctx, booking("joao", start.Add(time.Hour), 45*time.Minute), 0)

	if _, err := s.Reschedule(ctx, a.ID, start.Add(30*time.Minute), start.Add(75*time.Minute), 0); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrConflict)
	}
	moved, err := s.Reschedule(ctx, a.ID, start.Add(15*time.Minute), start.Add(time.Hour), 0)
	if err != nil {
		t.Fatalf("Reschedule error: %v", err)
	}
	if !moved.EndTime.Equal(b.StartTime) {
		t.Fatalf("end = %v, want %v", moved.EndTime, b.StartTime)
	}
}

func TestStore_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	s := New()

	in := booking("joao", start, 45*time.Minute)
	in.ID = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	first, err := s.Create(ctx, in, 0)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	second, err := s.Create(ctx, in, 0)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if first.ID != second.ID || !first.CreatedAt.Equal(second.CreatedAt) {
		t.Fatalf("replay returned %+v, want %+v", second, first)
	}

	in.CustomerPhone = "11900000000"
	if _, err := s.Create(ctx, in, 0); !errors.Is(err, store.ErrIdempotencyConflict) {
		t.Fatalf("err = %v, want %v", err, store.ErrIdempotencyConflict)
	}
}

func TestStore_TimeOff(t *testing.T) {
	ctx := context.Background()
	s := New()

	series := domain.TimeOffSeries{
		BarberID:        "joao",
		Reason:          "almoço",
		Timezone:        "UTC",
		DTStart:         time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC),
		DurationSeconds: 3600,
		Interval:        1,
		ByWeekday:       []int16{1, 2, 3, 4, 5},
	}
	if _, err := s.CreateTimeOffSeries(ctx, series); err != nil {
		t.Fatalf("CreateTimeOffSeries error: %v", err)
	}

	occs, err := s.ListTimeOff(ctx, "joao", time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC), time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ListTimeOff error: %v", err)
	}
	if len(occs) != 1 {
		t.Fatalf("len(occs) = %d, want 1", len(occs))
	}

	if _, err := s.Create(ctx, booking("joao", time.Date(2026, 1, 6, 11, 30, 0, 0, time.UTC), time.Hour), 0); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("booking over lunch err = %v, want %v", err, store.ErrConflict)
	}
	if _, err := s.CreateTimeOffSeries(ctx, series); !errors.Is(err, store.ErrConflict) {
		t.Fatalf("duplicate series err = %v, want %v", err, store.ErrConflict)
	}
}

func TestStore_ConcurrentCreatesKeepOneWinner(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b := booking("joao", start.Add(time.Duration(i%3)*15*time.Minute), 45*time.Minute)
			if _, err := s.Create(ctx, b, 0); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("wins = %d, want 1", wins)
	}
}
