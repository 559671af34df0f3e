// Package httpapi is the JSON gateway the booking web page talks to.
package httpapi

import (
	"context"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/service/bookings"
)

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

type RouterConfig struct {
	Service   bookingService
	Checker   *Checker
	Logger    *slog.Logger
	RateRPS   float64
	RateBurst int
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "http.bookings"))

	checker := cfg.Checker
	if checker == nil {
		checker = NewChecker(0)
	}

	r := gin.New()
	r.Use(gin.Recovery(), AccessLog(log))

	r.GET("/healthz", checker.LiveHandler())
	r.GET("/readyz", checker.ReadyHandler())

	h := &handler{svc: cfg.Service, log: log}
	v1 := r.Group("/v1", RateLimit(cfg.RateRPS, cfg.RateBurst, log))
	v1.GET("/catalog", h.getCatalog)
	v1.GET("/availability", h.listAvailability)
	v1.POST("/bookings", h.createBooking)
	v1.GET("/bookings/:id", h.getBooking)
	v1.DELETE("/bookings/:id", h.cancelBooking)
	v1.PATCH("/bookings/:id", h.rescheduleBooking)
	v1.GET("/barbers/:id/bookings", h.listBookings)
	v1.POST("/barbers/:id/time-off", h.createTimeOff)
	return r
}
