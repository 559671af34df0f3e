// Package bookings validates booking commands against the catalog and the
// barber's current agenda, and answers availability queries.
package bookings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"barbearia/backend/internal/calendar"
	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/events"
	"barbearia/backend/internal/observability"
	"barbearia/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ErrAvailabilityUnavailable means booked intervals could not be fetched and
// the service refuses to guess.
var ErrAvailabilityUnavailable = errors.New("availability temporarily unavailable")

type FetchFailurePolicy string

const (
	FailClosed FetchFailurePolicy = "fail_closed"
	FailOpen   FetchFailurePolicy = "fail_open"
)

func ParseFetchFailurePolicy(s string) (FetchFailurePolicy, error) {
	switch FetchFailurePolicy(s) {
	case "", FailClosed:
		return FailClosed, nil
	case FailOpen:
		return FailOpen, nil
	}
	return "", fmt.Errorf("unknown fetch failure policy %q", s)
}

type MalformedPolicy string

const (
	MalformedReject MalformedPolicy = "reject"
	MalformedSkip   MalformedPolicy = "skip"
)

func ParseMalformedPolicy(s string) (MalformedPolicy, error) {
	switch MalformedPolicy(s) {
	case "", MalformedReject:
		return MalformedReject, nil
	case MalformedSkip:
		return MalformedSkip, nil
	}
	return "", fmt.Errorf("unknown malformed interval policy %q", s)
}

// CacheInvalidator drops cached agenda data for the days touched by
// [start, end).
type CacheInvalidator interface {
	Invalidate(ctx context.Context, barberID string, start, end time.Time, loc *time.Location)
}

type Deps struct {
	Catalog     domain.Catalog
	Repo        store.BookingRepository
	Source      calendar.BookedIntervalSource
	Sink        calendar.EventSink
	Publisher   events.Publisher
	Invalidator CacheInvalidator
	Metrics     *observability.Metrics
	Logger      *slog.Logger
	Now         func() time.Time

	FetchTimeout       time.Duration
	FetchFailurePolicy FetchFailurePolicy
	MalformedPolicy    MalformedPolicy
}

type Service struct {
	catalog     domain.Catalog
	loc         *time.Location
	repo        store.BookingRepository
	source      calendar.BookedIntervalSource
	sink        calendar.EventSink
	publisher   events.Publisher
	invalidator CacheInvalidator
	metrics     *observability.Metrics
	logger      *slog.Logger
	now         func() time.Time

	fetchTimeout  time.Duration
	failurePolicy FetchFailurePolicy
	malformed     MalformedPolicy
}

func NewService(d Deps) (*Service, error) {
	if err := d.Catalog.Validate(); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if d.Repo == nil {
		return nil, errors.New("booking repository is required")
	}
	loc, err := d.Catalog.Location()
	if err != nil {
		return nil, err
	}

	s := &Service{
		catalog:       d.Catalog,
		loc:           loc,
		repo:          d.Repo,
		source:        d.Source,
		sink:          d.Sink,
		publisher:     d.Publisher,
		invalidator:   d.Invalidator,
		metrics:       d.Metrics,
		logger:        d.Logger,
		now:           d.Now,
		fetchTimeout:  d.FetchTimeout,
		failurePolicy: d.FetchFailurePolicy,
		malformed:     d.MalformedPolicy,
	}
	if s.source == nil {
		s.source = calendar.NewStoreSource(d.Repo)
	}
	if s.sink == nil {
		s.sink = calendar.NopSink{}
	}
	if s.publisher == nil {
		s.publisher = events.NopPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "service.bookings")
	if s.now == nil {
		s.now = time.Now
	}
	if s.failurePolicy == "" {
		s.failurePolicy = FailClosed
	}
	if s.malformed == "" {
		s.malformed = MalformedReject
	}
	return s, nil
}

func (s *Service) Catalog() domain.Catalog {
	return s.catalog
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) lookup(barberID, serviceID string) (domain.Barber, domain.Service, error) {
	if barberID == "" {
		return domain.Barber{}, domain.Service{}, validationError("barber_id is required")
	}
	barber, ok := s.catalog.Barber(barberID)
	if !ok {
		return domain.Barber{}, domain.Service{}, validationError("unknown barber_id")
	}
	if serviceID == "" {
		return domain.Barber{}, domain.Service{}, validationError("service_id is required")
	}
	svc, ok := s.catalog.Service(serviceID)
	if !ok {
		return domain.Barber{}, domain.Service{}, validationError("unknown service_id")
	}
	return barber, svc, nil
}

// ParseDate reads a "2006-01-02" date as local midnight in the shop's time zone.
func (s *Service) ParseDate(date string) (time.Time, error) {
	if date == "" {
		return time.Time{}, validationError("date is required")
	}
	day, err := time.ParseInLocation(time.DateOnly, date, s.loc)
	if err != nil {
		return time.Time{}, validationError("invalid date")
	}
	return day, nil
}

func (s *Service) invalidate(ctx context.Context, barberID string, start, end time.Time) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.Invalidate(ctx, barberID, start, end, s.loc)
}

func (s *Service) publish(ctx context.Context, eventType string, b domain.Booking) {
	ev := events.NewBookingEvent(eventType, b, s.now())
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "publish booking event failed",
			"event_type", eventType,
			"booking_id", b.ID.String(),
			"err", err,
		)
	}
}
