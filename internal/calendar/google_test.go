package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"barbearia/backend/internal/domain"
)

const eventsPath = "/calendar/v3/calendars/joao@barbeariacruz.com/events"

var joao = domain.Barber{
	ID:         "joao",
	Name:       "João Silva",
	Email:      "joao@barbeariacruz.com",
	CalendarID: "joao@barbeariacruz.com",
}

func newTestGoogle(t *testing.T, handler http.HandlerFunc) *GoogleCalendar {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := NewGoogleCalendar(context.Background(),
		GoogleConfig{Timezone: "America/Sao_Paulo", ContactEmail: "contato@barbeariacruz.com"},
		option.WithEndpoint(srv.URL+"/calendar/v3/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatalf("NewGoogleCalendar error: %v", err)
	}
	return g
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestGoogleCalendar_BookedIntervals(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != eventsPath {
			http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("singleEvents") != "true" || q.Get("orderBy") != "startTime" {
			http.Error(w, "missing query params", http.StatusBadRequest)
			return
		}
		if q.Get("pageToken") == "" {
			writeJSON(t, w, gcal.Events{
				Items: []*gcal.Event{
					{
						Id:     "e1",
						Status: "confirmed",
						Start:  &gcal.EventDateTime{DateTime: "2026-03-02T10:00:00-03:00"},
						End:    &gcal.EventDateTime{DateTime: "2026-03-02T10:45:00-03:00"},
					},
					{
						Id:           "free",
						Transparency: "transparent",
						Start:        &gcal.EventDateTime{DateTime: "2026-03-02T11:00:00-03:00"},
						End:          &gcal.EventDateTime{DateTime: "2026-03-02T12:00:00-03:00"},
					},
				},
				NextPageToken: "p2",
			})
			return
		}
		writeJSON(t, w, gcal.Events{
			Items: []*gcal.Event{
				{
					Id:     "gone",
					Status: "cancelled",
					Start:  &gcal.EventDateTime{DateTime: "2026-03-02T14:00:00-03:00"},
					End:    &gcal.EventDateTime{DateTime: "2026-03-02T15:00:00-03:00"},
				},
				{
					Id:    "e2",
					Start: &gcal.EventDateTime{DateTime: "2026-03-02T16:00:00-03:00"},
					End:   &gcal.EventDateTime{DateTime: "2026-03-02T16:30:00-03:00"},
					ExtendedProperties: &gcal.EventExtendedProperties{
						Private: map[string]string{"booking_id": "b-42"},
					},
				},
			},
		})
	})

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	got, err := g.BookedIntervals(context.Background(), joao, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("BookedIntervals error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (%+v)", len(got), got)
	}
	if !got[0].Start.Equal(time.Date(2026, 3, 2, 10, 0, 0, 0, loc)) || got[0].Ref != "e1" {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Ref != "b-42" {
		t.Fatalf("second ref = %q, want b-42", got[1].Ref)
	}
}

func TestGoogleCalendar_AllDayEventBlocksDay(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, gcal.Events{
			Items: []*gcal.Event{{
				Id:    "vacation",
				Start: &gcal.EventDateTime{Date: "2026-03-02"},
				End:   &gcal.EventDateTime{Date: "2026-03-03"},
			}},
		})
	})

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	dayStart := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	got, err := g.BookedIntervals(context.Background(), joao, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("BookedIntervals error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if !got[0].Start.Equal(dayStart) || !got[0].End.Equal(dayStart.AddDate(0, 0, 1)) {
		t.Fatalf("interval = %v-%v, want whole day", got[0].Start, got[0].End)
	}
}

func TestGoogleCalendar_UpstreamError(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":500,"message":"backend error"}}`, http.StatusInternalServerError)
	})
	_, err := g.BookedIntervals(context.Background(), joao, time.Now(), time.Now().Add(time.Hour))
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestGoogleCalendar_NoCalendarID(t *testing.T) {
	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL.Path)
	})
	b := joao
	b.CalendarID = ""
	got, err := g.BookedIntervals(context.Background(), b, time.Now(), time.Now().Add(time.Hour))
	if err != nil || got != nil {
		t.Fatalf("BookedIntervals = %v, %v, want nil, nil", got, err)
	}
}

func TestGoogleCalendar_CreateMoveDelete(t *testing.T) {
	var mu sync.Mutex
	var inserted gcal.Event
	var patched gcal.Event
	deletes := 0

	g := newTestGoogle(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPost && r.URL.Path == eventsPath:
			if err := json.NewDecoder(r.Body).Decode(&inserted); err != nil {
				t.Errorf("decode insert: %v", err)
			}
			writeJSON(t, w, gcal.Event{Id: "evt-123"})
		case r.Method == http.MethodPatch && r.URL.Path == eventsPath+"/evt-123":
			if err := json.NewDecoder(r.Body).Decode(&patched); err != nil {
				t.Errorf("decode patch: %v", err)
			}
			writeJSON(t, w, gcal.Event{Id: "evt-123"})
		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, eventsPath+"/"):
			deletes++
			w.WriteHeader(http.StatusGone)
		default:
			http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
		}
	})

	loc, _ := time.LoadLocation("America/Sao_Paulo")
	b := domain.Booking{
		ID:            uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		BarberID:      "joao",
		ServiceID:     "corte",
		CustomerName:  "Carlos",
		CustomerPhone: "11999990000",
		StartTime:     time.Date(2026, 3, 2, 10, 0, 0, 0, loc),
		EndTime:       time.Date(2026, 3, 2, 10, 45, 0, 0, loc),
	}
	svc := domain.Service{ID: "corte", Name: "Corte de Cabelo", DurationMinutes: 45}

	id, err := g.CreateEvent(context.Background(), joao, svc, b)
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	if id != "evt-123" {
		t.Fatalf("event id = %q, want evt-123", id)
	}

	mu.Lock()
	if inserted.Summary != "Corte de Cabelo - Carlos" {
		t.Fatalf("summary = %q", inserted.Summary)
	}
	if !strings.Contains(inserted.Description, "Telefone: 11999990000") {
		t.Fatalf("description = %q", inserted.Description)
	}
	if inserted.Start == nil || inserted.Start.TimeZone != "America/Sao_Paulo" || inserted.Start.DateTime != "2026-03-02T10:00:00-03:00" {
		t.Fatalf("start = %+v", inserted.Start)
	}
	if len(inserted.Attendees) != 2 {
		t.Fatalf("attendees = %d, want 2", len(inserted.Attendees))
	}
	if inserted.Reminders == nil || inserted.Reminders.UseDefault || len(inserted.Reminders.Overrides) != 2 {
		t.Fatalf("reminders = %+v", inserted.Reminders)
	}
	if inserted.Reminders.Overrides[0].Minutes != 1440 || inserted.Reminders.Overrides[1].Method != "popup" {
		t.Fatalf("reminder overrides = %+v %+v", inserted.Reminders.Overrides[0], inserted.Reminders.Overrides[1])
	}
	if inserted.ExtendedProperties == nil || inserted.ExtendedProperties.Private["booking_id"] != b.ID.String() {
		t.Fatalf("extended properties = %+v", inserted.ExtendedProperties)
	}
	mu.Unlock()

	b.CalendarEventID = id
	b.StartTime = b.StartTime.Add(time.Hour)
	b.EndTime = b.EndTime.Add(time.Hour)
	if err := g.MoveEvent(context.Background(), joao, b); err != nil {
		t.Fatalf("MoveEvent error: %v", err)
	}
	mu.Lock()
	if patched.Start == nil || patched.Start.DateTime != "2026-03-02T11:00:00-03:00" {
		t.Fatalf("patched start = %+v", patched.Start)
	}
	mu.Unlock()

	if err := g.DeleteEvent(context.Background(), joao, id); err != nil {
		t.Fatalf("DeleteEvent on gone event error: %v", err)
	}
	if deletes != 1 {
		t.Fatalf("deletes = %d, want 1", deletes)
	}
}
