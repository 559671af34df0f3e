package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/store"
)

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	bookingsOverlapIndex = "bookings_no_overlap"
)

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

type barberTx struct {
	tx bun.IDB
}

func (r *BookingRepo) Create(ctx context.Context, b domain.Booking, buffer time.Duration) (domain.Booking, error) {
	var out domain.Booking
	err := r.InBarberTransaction(ctx, b.BarberID, func(ctx context.Context, tx store.BarberTx) error {
		created, err := store.CreateBooking(ctx, tx, b, buffer)
		if err != nil {
			return err
		}
		out = created
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return barberTx{tx: r.db}.GetBooking(ctx, id)
}

func (r *BookingRepo) ListByBarber(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("barber_id = ?", barberID).
		Where("status = ?", domain.BookingStatusConfirmed).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *BookingRepo) Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	return r.mutate(ctx, id, func(ctx context.Context, tx store.BarberTx) (domain.Booking, error) {
		return store.CancelBooking(ctx, tx, id)
	})
}

func (r *BookingRepo) Reschedule(ctx context.Context, id uuid.UUID, start, end time.Time, buffer time.Duration) (domain.Booking, error) {
	return r.mutate(ctx, id, func(ctx context.Context, tx store.BarberTx) (domain.Booking, error) {
		return store.RescheduleBooking(ctx, tx, id, start, end, buffer)
	})
}

func (r *BookingRepo) SetCalendarEventID(ctx context.Context, id uuid.UUID, eventID string) error {
	res, err := r.db.NewUpdate().
		Model((*domain.Booking)(nil)).
		Set("calendar_event_id = ?", eventID).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// mutate resolves the booking's barber so the write runs under that
// barber's lock.
func (r *BookingRepo) mutate(ctx context.Context, id uuid.UUID, fn func(ctx context.Context, tx store.BarberTx) (domain.Booking, error)) (domain.Booking, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	var out domain.Booking
	err = r.InBarberTransaction(ctx, current.BarberID, func(ctx context.Context, tx store.BarberTx) error {
		b, err := fn(ctx, tx)
		if err != nil {
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

func (r *BookingRepo) CreateTimeOffSeries(ctx context.Context, series domain.TimeOffSeries) (domain.TimeOffSeries, error) {
	var out domain.TimeOffSeries
	err := r.InBarberTransaction(ctx, series.BarberID, func(ctx context.Context, tx store.BarberTx) error {
		if err := store.EnsureTimeOffFree(ctx, tx, series); err != nil {
			return err
		}
		s, err := tx.InsertTimeOffSeries(ctx, series)
		if err != nil {
			return err
		}
		out = s
		return nil
	})
	if err != nil {
		return domain.TimeOffSeries{}, err
	}
	return out, nil
}

func (r *BookingRepo) ListTimeOff(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.TimeOffOccurrence, error) {
	var rows []domain.TimeOffSeries
	err := r.db.NewSelect().
		Model(&rows).
		Where("barber_id = ?", barberID).
		Where("dtstart < ?", windowEnd).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return store.ExpandTimeOff(rows, windowStart, windowEnd)
}

func (r *BookingRepo) InBarberTransaction(ctx context.Context, barberID string, fn func(ctx context.Context, tx store.BarberTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockBarberAgenda(ctx, tx, barberID); err != nil {
			return err
		}
		return fn(ctx, barberTx{tx: tx})
	})
}

func lockBarberAgenda(ctx context.Context, tx bun.Tx, barberID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "barber:"+barberID).Exec(ctx)
	return err
}

func (r barberTx) InsertBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	// The savepoint keeps the outer transaction usable after a constraint
	// violation so the replay lookup below can run.
	err := r.tx.RunInTx(ctx, nil, func(ctx context.Context, sp bun.Tx) error {
		_, err := sp.NewInsert().Model(&m).Exec(ctx)
		return err
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == bookingsOverlapIndex {
				return domain.Booking{}, store.ErrConflict
			}
			if pgErr.Code == pgUniqueViolation {
				existing, selectErr := r.GetBooking(ctx, m.ID)
				if selectErr != nil {
					return domain.Booking{}, err
				}
				if !store.SameBooking(existing, b) {
					return domain.Booking{}, store.ErrIdempotencyConflict
				}
				return existing, nil
			}
		}
		return domain.Booking{}, err
	}
	return m, nil
}

func (r barberTx) GetBooking(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var b domain.Booking
	err := r.tx.NewSelect().
		Model(&b).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, store.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (r barberTx) ListBookings(ctx context.Context, barberID string, windowStart, windowEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.tx.NewSelect().
		Model(&rows).
		Where("barber_id = ?", barberID).
		Where("status = ?", domain.BookingStatusConfirmed).
		Where("start_time < ?", windowEnd).
		Where("end_time > ?", windowStart).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r barberTx) UpdateBooking(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	m := b
	res, err := r.tx.NewUpdate().
		Model(&m).
		Column("start_time", "end_time", "status", "calendar_event_id", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == bookingsOverlapIndex {
			return domain.Booking{}, store.ErrConflict
		}
		return domain.Booking{}, err
	}
	if err := expectAffected(res); err != nil {
		return domain.Booking{}, err
	}
	return m, nil
}

func (r barberTx) InsertTimeOffSeries(ctx context.Context, series domain.TimeOffSeries) (domain.TimeOffSeries, error) {
	m := series
	if _, err := r.tx.NewInsert().Model(&m).Exec(ctx); err != nil {
		return domain.TimeOffSeries{}, err
	}
	return m, nil
}

func (r barberTx) ListTimeOffSeries(ctx context.Context, barberID string) ([]domain.TimeOffSeries, error) {
	var rows []domain.TimeOffSeries
	err := r.tx.NewSelect().
		Model(&rows).
		Where("barber_id = ?", barberID).
		OrderExpr("dtstart ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
