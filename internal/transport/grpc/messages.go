package grpc

import "time"

type Slot struct {
	BarberID  string    `json:"barber_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

// ListAvailabilityRequest asks for one barber's free slots. An empty
// barber_id means any barber.
type ListAvailabilityRequest struct {
	BarberID  string `json:"barber_id,omitempty"`
	ServiceID string `json:"service_id"`
	Date      string `json:"date"`
}

type ListAvailabilityResponse struct {
	Date      string `json:"date"`
	ServiceID string `json:"service_id"`
	Slots     []Slot `json:"slots"`
}

type Booking struct {
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
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateBookingRequest struct {
	BarberID      string     `json:"barber_id"`
	ServiceID     string     `json:"service_id"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	Notes         string     `json:"notes,omitempty"`
	StartTime     *time.Time `json:"start_time"`
}

type BookingResponse struct {
	Booking *Booking `json:"booking"`
}

type GetBookingRequest struct {
	BookingID string `json:"booking_id"`
}

type CancelBookingRequest struct {
	BookingID string `json:"booking_id"`
}

type RescheduleBookingRequest struct {
	BookingID string     `json:"booking_id"`
	StartTime *time.Time `json:"start_time"`
}

type ListBookingsRequest struct {
	BarberID string `json:"barber_id"`
	Date     string `json:"date"`
}

type ListBookingsResponse struct {
	Bookings []*Booking `json:"bookings"`
}

type WeeklyRule struct {
	Interval uint32     `json:"interval,omitempty"`
	Weekdays []int32    `json:"weekdays,omitempty"`
	Until    *time.Time `json:"until,omitempty"`
	Count    uint32     `json:"count,omitempty"`
	TimeZone string     `json:"time_zone,omitempty"`
}

type CreateTimeOffRequest struct {
	BarberID  string      `json:"barber_id"`
	Reason    string      `json:"reason,omitempty"`
	StartTime *time.Time  `json:"start_time"`
	EndTime   *time.Time  `json:"end_time"`
	Weekly    *WeeklyRule `json:"weekly"`
}

type TimeOffSeries struct {
	ID        string      `json:"id"`
	BarberID  string      `json:"barber_id"`
	Reason    string      `json:"reason,omitempty"`
	StartTime time.Time   `json:"start_time"`
	EndTime   time.Time   `json:"end_time"`
	Weekly    *WeeklyRule `json:"weekly"`
	CreatedAt time.Time   `json:"created_at"`
}

type CreateTimeOffResponse struct {
	Series *TimeOffSeries `json:"series"`
}

type GetCatalogRequest struct{}

type WorkingHours struct {
	Weekday int32  `json:"weekday"`
	Closed  bool   `json:"closed,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type Barber struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Specialties []string       `json:"specialties,omitempty"`
	Hours       []WorkingHours `json:"hours"`
}

type Service struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int32  `json:"duration_minutes"`
	PriceMinorUnits int64  `json:"price_minor_units"`
	Price           string `json:"price"`
}

type GetCatalogResponse struct {
	TimeZone            string    `json:"time_zone"`
	GridIntervalMinutes int32     `json:"grid_interval_minutes"`
	Barbers             []Barber  `json:"barbers"`
	Services            []Service `json:"services"`
}
