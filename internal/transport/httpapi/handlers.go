package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
	"barbearia/backend/internal/service/bookings"
	"barbearia/backend/internal/store"
)

const noSlotsMessage = "no slots available"

type handler struct {
	svc bookingService
	log *slog.Logger
}

type slotJSON struct {
	BarberID  string    `json:"barber_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Label     string    `json:"label"`
}

type bookingJSON struct {
	ID              string    `json:"id"`
	BarberID        string    `json:"barber_id"`
	ServiceID       string    `json:"service_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerPhone   string    `json:"customer_phone"`
	Notes           string    `json:"notes,omitempty"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	Status          string    `json:"status"`
	CalendarEventID string    `json:"calendar_event_id,omitempty"`
}

type createBookingBody struct {
	BarberID      string    `json:"barber_id" binding:"required"`
	ServiceID     string    `json:"service_id" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerPhone string    `json:"customer_phone" binding:"required"`
	Notes         string    `json:"notes"`
	StartTime     time.Time `json:"start_time" binding:"required"`
}

type rescheduleBody struct {
	StartTime time.Time `json:"start_time" binding:"required"`
}

type timeOffBody struct {
	Reason    string     `json:"reason"`
	StartTime time.Time  `json:"start_time" binding:"required"`
	EndTime   time.Time  `json:"end_time" binding:"required"`
	Interval  int        `json:"interval"`
	Weekdays  []int16    `json:"weekdays"`
	Until     *time.Time `json:"until"`
	Count     *int       `json:"count"`
	TimeZone  string     `json:"time_zone"`
}

func (h *handler) getCatalog(c *gin.Context) {
	cat := h.svc.Catalog()

	barbers := make([]gin.H, 0, len(cat.Barbers))
	for _, b := range cat.Barbers {
		hours := make(map[string]string, len(b.Hours))
		for day, w := range b.Hours {
			hours[strings.ToLower(time.Weekday(day).String())] = w.String()
		}
		barbers = append(barbers, gin.H{
			"id":          b.ID,
			"name":        b.Name,
			"specialties": b.Specialties,
			"hours":       hours,
		})
	}

	services := make([]gin.H, 0, len(cat.Services))
	for _, s := range cat.Services {
		services = append(services, gin.H{
			"id":                s.ID,
			"name":              s.Name,
			"description":       s.Description,
			"duration_minutes":  s.DurationMinutes,
			"price_minor_units": s.PriceMinorUnits,
			"price":             domain.FormatPrice(s.PriceMinorUnits),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"time_zone":             cat.Timezone,
		"grid_interval_minutes": int(cat.GridInterval() / time.Minute),
		"barbers":               barbers,
		"services":              services,
	})
}

func (h *handler) listAvailability(c *gin.Context) {
	barberID := strings.TrimSpace(c.Query("barber_id"))
	serviceID := c.Query("service_id")
	date := c.Query("date")

	var (
		res bookings.AvailabilityResult
		err error
	)
	if barberID == "" || barberID == "any" {
		res, err = h.svc.AvailabilityAnyBarber(c.Request.Context(), serviceID, date)
	} else {
		res, err = h.svc.Availability(c.Request.Context(), bookings.AvailabilityQuery{
			BarberID:  barberID,
			ServiceID: serviceID,
			Date:      date,
		})
	}
	if err != nil {
		h.respondError(c, err, "availability query failed", slog.String("barber_id", barberID), slog.String("date", date))
		return
	}

	slots := make([]slotJSON, 0, len(res.Slots))
	for _, s := range res.Slots {
		slots = append(slots, slotJSON{
			BarberID:  s.BarberID,
			StartTime: s.Start,
			EndTime:   s.End,
			Label:     s.Start.Format("15:04"),
		})
	}

	body := gin.H{
		"date":       res.Date.Format(time.DateOnly),
		"service_id": res.ServiceID,
		"slots":      slots,
	}
	if len(slots) == 0 {
		body["message"] = noSlotsMessage
	}
	c.JSON(http.StatusOK, body)
}

func (h *handler) createBooking(c *gin.Context) {
	var body createBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	key := c.GetHeader("Idempotency-Key")
	if key == "" {
		key = c.GetHeader("X-Idempotency-Key")
	}

	b, err := h.svc.Create(c.Request.Context(), bookings.CreateInput{
		BarberID:       body.BarberID,
		ServiceID:      body.ServiceID,
		CustomerName:   body.CustomerName,
		CustomerPhone:  body.CustomerPhone,
		Notes:          body.Notes,
		StartTime:      body.StartTime,
		IdempotencyKey: key,
	})
	if err != nil {
		h.respondError(c, err, "booking create failed", slog.String("barber_id", body.BarberID), slog.Time("start_time", body.StartTime))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"booking": toBookingJSON(b)})
}

func (h *handler) getBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "booking get failed", slog.String("booking_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingJSON(b)})
}

func (h *handler) cancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	b, err := h.svc.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err, "booking cancel failed", slog.String("booking_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingJSON(b)})
}

func (h *handler) rescheduleBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var body rescheduleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	b, err := h.svc.Reschedule(c.Request.Context(), bookings.RescheduleInput{BookingID: id, StartTime: body.StartTime})
	if err != nil {
		h.respondError(c, err, "booking reschedule failed", slog.String("booking_id", id.String()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": toBookingJSON(b)})
}

func (h *handler) listBookings(c *gin.Context) {
	barberID := c.Param("id")
	date := c.Query("date")

	list, err := h.svc.ListDay(c.Request.Context(), barberID, date)
	if err != nil {
		h.respondError(c, err, "bookings list failed", slog.String("barber_id", barberID), slog.String("date", date))
		return
	}
	out := make([]bookingJSON, 0, len(list))
	for _, b := range list {
		out = append(out, toBookingJSON(b))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h *handler) createTimeOff(c *gin.Context) {
	barberID := c.Param("id")
	var body timeOffBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	series, err := h.svc.CreateTimeOff(c.Request.Context(), bookings.CreateTimeOffInput{
		BarberID:  barberID,
		Reason:    body.Reason,
		StartTime: body.StartTime,
		EndTime:   body.EndTime,
		Rule: bookings.WeeklyRuleInput{
			Interval:  body.Interval,
			ByWeekday: body.Weekdays,
			Until:     body.Until,
			Count:     body.Count,
			TimeZone:  body.TimeZone,
		},
	})
	if err != nil {
		h.respondError(c, err, "time off create failed", slog.String("barber_id", barberID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"series": gin.H{
		"id":         series.ID.String(),
		"barber_id":  series.BarberID,
		"reason":     series.Reason,
		"start_time": series.DTStart.UTC(),
		"end_time":   series.DTStart.Add(time.Duration(series.DurationSeconds) * time.Second).UTC(),
		"interval":   series.Interval,
		"weekdays":   series.ByWeekday,
		"until":      series.Until,
		"count":      series.Count,
		"time_zone":  series.Timezone,
	}})
}

func bookingID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking id must be a UUID"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *handler) respondError(c *gin.Context, err error, msg string, attrs ...any) {
	ctx := c.Request.Context()
	attrs = append(attrs, slog.Any("err", err))

	var vErr *bookings.ValidationError
	switch {
	case errors.As(err, &vErr):
		h.log.WarnContext(ctx, "invalid request", attrs...)
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, store.ErrConflict):
		h.log.InfoContext(ctx, msg, attrs...)
		c.JSON(http.StatusConflict, gin.H{"error": "That time slot is no longer available. Pick a different slot."})
	case errors.Is(err, store.ErrIdempotencyConflict):
		h.log.InfoContext(ctx, msg, attrs...)
		c.JSON(http.StatusConflict, gin.H{"error": "This request key was already used for a different booking. Try again."})
	case errors.Is(err, store.ErrBookingCancelled):
		h.log.InfoContext(ctx, msg, attrs...)
		c.JSON(http.StatusConflict, gin.H{"error": "booking is cancelled"})
	case errors.Is(err, store.ErrNotFound):
		h.log.InfoContext(ctx, msg, attrs...)
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	case errors.Is(err, bookings.ErrAvailabilityUnavailable):
		h.log.WarnContext(ctx, msg, attrs...)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Availability is temporarily unavailable. Try again shortly."})
	case errors.Is(err, availability.ErrInvalidInterval):
		h.log.ErrorContext(ctx, msg, attrs...)
		c.JSON(http.StatusBadGateway, gin.H{"error": "agenda data is inconsistent"})
	case errors.Is(err, context.DeadlineExceeded):
		h.log.WarnContext(ctx, msg, attrs...)
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		h.log.ErrorContext(ctx, msg, attrs...)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func toBookingJSON(b domain.Booking) bookingJSON {
	return bookingJSON{
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
	}
}
