package postgres

import (
	"errors"
	"testing"

	"barbearia/backend/internal/store"
)

type fakeResult struct {
	affected int64
	err      error
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.affected, f.err }

func TestExpectAffected(t *testing.T) {
	if err := expectAffected(fakeResult{affected: 1}); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	if err := expectAffected(fakeResult{}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err = %v, want %v", err, store.ErrNotFound)
	}
	boom := errors.New("boom")
	if err := expectAffected(fakeResult{err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestBarberTxImplementsStore(t *testing.T) {
	var _ store.BarberTx = barberTx{}
	var _ store.BookingRepository = (*BookingRepo)(nil)
}
