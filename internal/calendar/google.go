package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"barbearia/backend/internal/availability"
	"barbearia/backend/internal/domain"
)

const (
	bookingIDProperty = "booking_id"
	dateLayout        = "2006-01-02"
)

type GoogleConfig struct {
	// Timezone is written on created events and used for all-day events
	// that carry no zone of their own.
	Timezone     string
	ContactEmail string
	Logger       *slog.Logger
}

// GoogleCalendar reads barber calendars as a BookedIntervalSource and writes
// booking events as an EventSink.
type GoogleCalendar struct {
	svc      *gcal.Service
	loc      *time.Location
	timezone string
	contact  string
	logger   *slog.Logger
}

func NewGoogleCalendar(ctx context.Context, cfg GoogleConfig, opts ...option.ClientOption) (*GoogleCalendar, error) {
	svc, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", tz, err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleCalendar{
		svc:      svc,
		loc:      loc,
		timezone: tz,
		contact:  cfg.ContactEmail,
		logger:   logger.With("component", "calendar.google"),
	}, nil
}

func (g *GoogleCalendar) BookedIntervals(ctx context.Context, barber domain.Barber, dayStart, dayEnd time.Time) ([]availability.BookedInterval, error) {
	if barber.CalendarID == "" {
		return nil, nil
	}

	var out []availability.BookedInterval
	err := g.svc.Events.List(barber.CalendarID).
		TimeMin(dayStart.Format(time.RFC3339)).
		TimeMax(dayEnd.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Pages(ctx, func(page *gcal.Events) error {
			for _, ev := range page.Items {
				iv, ok, err := g.eventInterval(ev)
				if err != nil {
					return err
				}
				if ok {
					out = append(out, iv)
				}
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list events for %s: %w", barber.ID, err)
	}
	return out, nil
}

// eventInterval converts an event into a booked interval. Cancelled events
// and events marked as free are skipped. All-day events block whole days.
func (g *GoogleCalendar) eventInterval(ev *gcal.Event) (availability.BookedInterval, bool, error) {
	if ev == nil || ev.Status == "cancelled" || ev.Transparency == "transparent" {
		return availability.BookedInterval{}, false, nil
	}
	if ev.Start == nil || ev.End == nil {
		return availability.BookedInterval{}, false, nil
	}
	start, err := g.eventTime(ev.Start)
	if err != nil {
		return availability.BookedInterval{}, false, fmt.Errorf("event %s start: %w", ev.Id, err)
	}
	end, err := g.eventTime(ev.End)
	if err != nil {
		return availability.BookedInterval{}, false, fmt.Errorf("event %s end: %w", ev.Id, err)
	}

	ref := ev.Id
	if ev.ExtendedProperties != nil {
		if id := ev.ExtendedProperties.Private[bookingIDProperty]; id != "" {
			ref = id
		}
	}
	return availability.BookedInterval{Start: start, End: end, Ref: ref}, true, nil
}

func (g *GoogleCalendar) eventTime(dt *gcal.EventDateTime) (time.Time, error) {
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	loc := g.loc
	if dt.TimeZone != "" {
		if l, err := time.LoadLocation(dt.TimeZone); err == nil {
			loc = l
		}
	}
	return time.ParseInLocation(dateLayout, dt.Date, loc)
}

func (g *GoogleCalendar) CreateEvent(ctx context.Context, barber domain.Barber, service domain.Service, b domain.Booking) (string, error) {
	if barber.CalendarID == "" {
		return "", nil
	}

	ev := &gcal.Event{
		Summary: fmt.Sprintf("%s - %s", service.Name, b.CustomerName),
		Description: fmt.Sprintf("Cliente: %s\nTelefone: %s\nServiço: %s\nBarbeiro: %s",
			b.CustomerName, b.CustomerPhone, service.Name, barber.Name),
		Start: g.dateTime(b.StartTime),
		End:   g.dateTime(b.EndTime),
		Reminders: &gcal.EventReminders{
			UseDefault: false,
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 60},
			},
			ForceSendFields: []string{"UseDefault"},
		},
		ExtendedProperties: &gcal.EventExtendedProperties{
			Private: map[string]string{bookingIDProperty: b.ID.String()},
		},
	}
	for _, email := range []string{barber.Email, g.contact} {
		if email != "" {
			ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: email})
		}
	}

	created, err := g.svc.Events.Insert(barber.CalendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	g.logger.InfoContext(ctx, "calendar event created", "barber_id", barber.ID, "booking_id", b.ID.String(), "event_id", created.Id)
	return created.Id, nil
}

func (g *GoogleCalendar) MoveEvent(ctx context.Context, barber domain.Barber, b domain.Booking) error {
	if barber.CalendarID == "" || b.CalendarEventID == "" {
		return nil
	}
	patch := &gcal.Event{Start: g.dateTime(b.StartTime), End: g.dateTime(b.EndTime)}
	if _, err := g.svc.Events.Patch(barber.CalendarID, b.CalendarEventID, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("patch event %s: %w", b.CalendarEventID, err)
	}
	return nil
}

// DeleteEvent treats an already removed event as success.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, barber domain.Barber, eventID string) error {
	if barber.CalendarID == "" || eventID == "" {
		return nil
	}
	err := g.svc.Events.Delete(barber.CalendarID, eventID).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}
	return nil
}

func (g *GoogleCalendar) dateTime(t time.Time) *gcal.EventDateTime {
	return &gcal.EventDateTime{DateTime: t.In(g.loc).Format(time.RFC3339), TimeZone: g.timezone}
}
