package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/service/bookings"
	"barbearia/backend/internal/store"
)

type BookingsServer struct {
	svc bookingService
	log *slog.Logger
}

var _ BookingServiceServer = (*BookingsServer)(nil)

type bookingService interface {
	Availability(ctx context.Context, q bookings.AvailabilityQuery) (bookings.AvailabilityResult, error)
	AvailabilityAnyBarber(ctx context.Context, serviceID, date string) (bookings.AvailabilityResult, error)
	Create(ctx context.Context, in bookings.CreateInput) (domain.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	Cancel(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	Reschedule(ctx context.Context, in bookings.RescheduleInput) (domain.Booking, error)
	ListDay(ctx context.Context, barberID, date string) ([]domain.Booking, error)
	CreateTimeOff(ctx context.Context, in bookings.CreateTimeOffInput) (domain.TimeOffSeries, error)
	Catalog() domain.Catalog
}

func NewBookingsServer(svc bookingService, log *slog.Logger) *BookingsServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingsServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.bookings")),
	}
}

func (s *BookingsServer) ListAvailability(ctx context.Context, req *ListAvailabilityRequest) (*ListAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var (
		res bookings.AvailabilityResult
		err error
	)
	if strings.TrimSpace(req.BarberID) == "" {
		res, err = s.svc.AvailabilityAnyBarber(ctx, req.ServiceID, req.Date)
	} else {
		res, err = s.svc.Availability(ctx, bookings.AvailabilityQuery{
			BarberID:  req.BarberID,
			ServiceID: req.ServiceID,
			Date:      req.Date,
		})
	}
	if err != nil {
		return nil, s.statusFor(log, err, "availability query failed",
			slog.String("barber_id", req.BarberID),
			slog.String("service_id", req.ServiceID),
			slog.String("date", req.Date),
		)
	}

	slots := make([]Slot, 0, len(res.Slots))
	for _, sl := range res.Slots {
		slots = append(slots, Slot{BarberID: sl.BarberID, StartTime: sl.Start, EndTime: sl.End})
	}

	log.Debug(
		"availability listed",
		slog.String("barber_id", req.BarberID),
		slog.String("service_id", res.ServiceID),
		slog.String("date", req.Date),
		slog.Int("count", len(slots)),
	)

	return &ListAvailabilityResponse{
		Date:      res.Date.Format(time.DateOnly),
		ServiceID: res.ServiceID,
		Slots:     slots,
	}, nil
}

func (s *BookingsServer) CreateBooking(ctx context.Context, req *CreateBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateBooking"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.StartTime == nil {
		log.Warn("invalid request", slog.String("reason", "missing_start_time"), slog.String("barber_id", req.BarberID))
		return nil, status.Error(codes.InvalidArgument, "start_time is required")
	}

	b, err := s.svc.Create(ctx, bookings.CreateInput{
		BarberID:       req.BarberID,
		ServiceID:      req.ServiceID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		Notes:          req.Notes,
		StartTime:      *req.StartTime,
		IdempotencyKey: idempotencyKey(ctx),
	})
	if err != nil {
		return nil, s.statusFor(log, err, "booking create failed",
			slog.String("barber_id", req.BarberID),
			slog.Time("start_time", *req.StartTime),
		)
	}

	log.Info(
		"booking created",
		slog.String("booking_id", b.ID.String()),
		slog.String("barber_id", b.BarberID),
		slog.Time("start_time", b.StartTime),
		slog.Time("end_time", b.EndTime),
	)
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (s *BookingsServer) GetBooking(ctx context.Context, req *GetBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "GetBooking"))

	id, err := parseBookingID(log, req)
	if err != nil {
		return nil, err
	}
	b, err := s.svc.Get(ctx, id)
	if err != nil {
		return nil, s.statusFor(log, err, "booking get failed", slog.String("booking_id", id.String()))
	}
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *BookingsServer) CancelBooking(ctx context.Context, req *CancelBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "CancelBooking"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseBookingID(log, &GetBookingRequest{BookingID: req.BookingID})
	if err != nil {
		return nil, err
	}
	b, err := s.svc.Cancel(ctx, id)
	if err != nil {
		return nil, s.statusFor(log, err, "booking cancel failed", slog.String("booking_id", id.String()))
	}

	log.Info("booking cancelled", slog.String("booking_id", id.String()), slog.String("barber_id", b.BarberID))
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *BookingsServer) RescheduleBooking(ctx context.Context, req *RescheduleBookingRequest) (*BookingResponse, error) {
	log := s.log.With(slog.String("rpc", "RescheduleBooking"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := parseBookingID(log, &GetBookingRequest{BookingID: req.BookingID})
	if err != nil {
		return nil, err
	}
	if req.StartTime == nil {
		log.Warn("invalid request", slog.String("reason", "missing_start_time"), slog.String("booking_id", id.String()))
		return nil, status.Error(codes.InvalidArgument, "start_time is required")
	}

	b, err := s.svc.Reschedule(ctx, bookings.RescheduleInput{BookingID: id, StartTime: *req.StartTime})
	if err != nil {
		return nil, s.statusFor(log, err, "booking reschedule failed",
			slog.String("booking_id", id.String()),
			slog.Time("start_time", *req.StartTime),
		)
	}

	log.Info("booking rescheduled", slog.String("booking_id", id.String()), slog.Time("start_time", b.StartTime))
	return &BookingResponse{Booking: toWireBooking(b)}, nil
}

func (s *BookingsServer) ListBookings(ctx context.Context, req *ListBookingsRequest) (*ListBookingsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListBookings"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	list, err := s.svc.ListDay(ctx, req.BarberID, req.Date)
	if err != nil {
		return nil, s.statusFor(log, err, "bookings list failed",
			slog.String("barber_id", req.BarberID),
			slog.String("date", req.Date),
		)
	}

	out := make([]*Booking, 0, len(list))
	for _, b := range list {
		out = append(out, toWireBooking(b))
	}

	log.Debug("bookings listed", slog.String("barber_id", req.BarberID), slog.String("date", req.Date), slog.Int("count", len(out)))
	return &ListBookingsResponse{Bookings: out}, nil
}

func (s *BookingsServer) CreateTimeOff(ctx context.Context, req *CreateTimeOffRequest) (*CreateTimeOffResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateTimeOff"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if req.StartTime == nil || req.EndTime == nil {
		log.Warn("invalid request", slog.String("reason", "missing_times"), slog.String("barber_id", req.BarberID))
		return nil, status.Error(codes.InvalidArgument, "start_time and end_time are required")
	}
	if req.Weekly == nil {
		log.Warn("invalid request", slog.String("reason", "missing_weekly"), slog.String("barber_id", req.BarberID))
		return nil, status.Error(codes.InvalidArgument, "weekly is required")
	}

	var count *int
	if req.Weekly.Count > 0 {
		c := int(req.Weekly.Count)
		count = &c
	}

	weekdays := make([]int16, 0, len(req.Weekly.Weekdays))
	for _, wd := range req.Weekly.Weekdays {
		if wd == 0 {
			continue
		}
		weekdays = append(weekdays, int16(wd))
	}

	series, err := s.svc.CreateTimeOff(ctx, bookings.CreateTimeOffInput{
		BarberID:  req.BarberID,
		Reason:    req.Reason,
		StartTime: *req.StartTime,
		EndTime:   *req.EndTime,
		Rule: bookings.WeeklyRuleInput{
			Interval:  int(req.Weekly.Interval),
			ByWeekday: weekdays,
			Until:     req.Weekly.Until,
			Count:     count,
			TimeZone:  req.Weekly.TimeZone,
		},
	})
	if err != nil {
		return nil, s.statusFor(log, err, "time off create failed",
			slog.String("barber_id", req.BarberID),
			slog.Time("start_time", *req.StartTime),
		)
	}

	log.Info(
		"time off created",
		slog.String("series_id", series.ID.String()),
		slog.String("barber_id", series.BarberID),
		slog.Time("dtstart", series.DTStart),
	)
	return &CreateTimeOffResponse{Series: toWireTimeOff(series)}, nil
}

func (s *BookingsServer) GetCatalog(ctx context.Context, req *GetCatalogRequest) (*GetCatalogResponse, error) {
	return toWireCatalog(s.svc.Catalog()), nil
}

func parseBookingID(log *slog.Logger, req *GetBookingRequest) (uuid.UUID, error) {
	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return uuid.Nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.BookingID)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"))
		return uuid.Nil, status.Error(codes.InvalidArgument, "booking_id must be a UUID")
	}
	return id, nil
}

// statusFor logs err at the level its class deserves and converts it into a
// gRPC status. Unknown errors never leak their text to the caller.
func (s *BookingsServer) statusFor(log *slog.Logger, err error, msg string, attrs ...any) error {
	attrs = append(attrs, slog.Any("err", err))

	var vErr *bookings.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", attrs...)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, store.ErrConflict):
		log.Info(msg, attrs...)
		return status.Error(codes.FailedPrecondition, "That time slot is no longer available. Pick a different slot.")
	case errors.Is(err, store.ErrIdempotencyConflict):
		log.Info(msg, attrs...)
		return status.Error(codes.FailedPrecondition, "This request key was already used for a different booking. Try again.")
	case errors.Is(err, store.ErrBookingCancelled):
		log.Info(msg, attrs...)
		return status.Error(codes.FailedPrecondition, "booking is cancelled")
	case errors.Is(err, store.ErrNotFound):
		log.Info(msg, attrs...)
		return status.Error(codes.NotFound, "booking not found")
	case errors.Is(err, bookings.ErrAvailabilityUnavailable):
		log.Warn(msg, attrs...)
		return status.Error(codes.Unavailable, "availability is temporarily unavailable, try again shortly")
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn(msg, attrs...)
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}
	log.Error(msg, attrs...)
	return status.Error(codes.Internal, "internal error")
}

func toWireBooking(b domain.Booking) *Booking {
	return &Booking{
		ID:              b.ID.String(),
		BarberID:        b.BarberID,
		ServiceID:       b.ServiceID,
		CustomerName:    b.CustomerName,
		CustomerPhone:   b.CustomerPhone,
		Notes:           b.Notes,
		StartTime:       b.StartTime.UTC(),
		EndTime:         b.EndTime.UTC(),
		Status:          string(b.Status),
		CalendarEventID: b.CalendarEventID,
		CreatedAt:       b.CreatedAt.UTC(),
		UpdatedAt:       b.UpdatedAt.UTC(),
	}
}

func toWireTimeOff(s domain.TimeOffSeries) *TimeOffSeries {
	duration := time.Duration(s.DurationSeconds) * time.Second

	weekdays := make([]int32, 0, len(s.ByWeekday))
	for _, wd := range s.ByWeekday {
		weekdays = append(weekdays, int32(wd))
	}
	var count uint32
	if s.Count != nil && *s.Count > 0 {
		count = uint32(*s.Count)
	}

	return &TimeOffSeries{
		ID:        s.ID.String(),
		BarberID:  s.BarberID,
		Reason:    s.Reason,
		StartTime: s.DTStart.UTC(),
		EndTime:   s.DTStart.Add(duration).UTC(),
		Weekly: &WeeklyRule{
			Interval: uint32(s.Interval),
			Weekdays: weekdays,
			Until:    s.Until,
			Count:    count,
			TimeZone: s.Timezone,
		},
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func toWireCatalog(c domain.Catalog) *GetCatalogResponse {
	out := &GetCatalogResponse{
		TimeZone:            c.Timezone,
		GridIntervalMinutes: int32(c.GridInterval() / time.Minute),
		Barbers:             make([]Barber, 0, len(c.Barbers)),
		Services:            make([]Service, 0, len(c.Services)),
	}
	for _, b := range c.Barbers {
		hours := make([]WorkingHours, 0, len(b.Hours))
		for day, w := range b.Hours {
			h := WorkingHours{Weekday: int32(day), Closed: w.Closed}
			if !w.Closed {
				h.Start = domain.FormatClock(w.StartMinute)
				h.End = domain.FormatClock(w.EndMinute)
			}
			hours = append(hours, h)
		}
		out.Barbers = append(out.Barbers, Barber{ID: b.ID, Name: b.Name, Specialties: b.Specialties, Hours: hours})
	}
	for _, s := range c.Services {
		out.Services = append(out.Services, Service{
			ID:              s.ID,
			Name:            s.Name,
			Description:     s.Description,
			DurationMinutes: int32(s.DurationMinutes),
			PriceMinorUnits: s.PriceMinorUnits,
			Price:           domain.FormatPrice(s.PriceMinorUnits),
		})
	}
	return out
}
