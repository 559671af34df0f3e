package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	MinutesPerDay              = 24 * 60
	DefaultGridIntervalMinutes = 30
)

// WorkingWindow is one barber's open hours on one weekday, as minutes after
// local midnight. A closed window carries no hours.
type WorkingWindow struct {
	StartMinute int
	EndMinute   int
	Closed      bool
}

func OpenWindow(startMinute, endMinute int) WorkingWindow {
	return WorkingWindow{StartMinute: startMinute, EndMinute: endMinute}
}

func ClosedWindow() WorkingWindow {
	return WorkingWindow{Closed: true}
}

func (w WorkingWindow) Validate() error {
	if w.Closed {
		return nil
	}
	if w.StartMinute < 0 || w.EndMinute > MinutesPerDay {
		return errors.New("working window must lie within one day")
	}
	if w.StartMinute >= w.EndMinute {
		return errors.New("working window start must be before end")
	}
	return nil
}

func (w WorkingWindow) String() string {
	if w.Closed {
		return "closed"
	}
	return FormatClock(w.StartMinute) + "-" + FormatClock(w.EndMinute)
}

// ParseClock parses "HH:MM" into minutes after midnight. "24:00" is accepted
// as the end of the day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("invalid clock %q", s)
	}
	return h*60 + m, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// WindowFromClock builds a window from "HH:MM" bounds. Both bounds empty
// means the barber does not work that day.
func WindowFromClock(start, end string) (WorkingWindow, error) {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return ClosedWindow(), nil
	}
	if start == "" || end == "" {
		return WorkingWindow{}, errors.New("working window needs both start and end")
	}
	s, err := ParseClock(start)
	if err != nil {
		return WorkingWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return WorkingWindow{}, err
	}
	w := OpenWindow(s, e)
	if err := w.Validate(); err != nil {
		return WorkingWindow{}, err
	}
	return w, nil
}

type Barber struct {
	ID          string
	Name        string
	Email       string
	CalendarID  string
	Specialties []string
	// Hours is indexed by time.Weekday (Sunday first).
	Hours [7]WorkingWindow
}

func (b Barber) WindowFor(day time.Weekday) WorkingWindow {
	if day < time.Sunday || day > time.Saturday {
		return ClosedWindow()
	}
	return b.Hours[day]
}

type Service struct {
	ID              string
	Name            string
	Description     string
	DurationMinutes int
	PriceMinorUnits int64
}

func (s Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s Service) Validate() error {
	if s.DurationMinutes <= 0 {
		return fmt.Errorf("service %q: duration must be positive", s.ID)
	}
	if s.PriceMinorUnits < 0 {
		return fmt.Errorf("service %q: price must not be negative", s.ID)
	}
	return nil
}

// FormatPrice renders an amount in centavos the way the shop displays it.
func FormatPrice(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%sR$ %d,%02d", sign, minor/100, minor%100)
}

// Catalog is the static shop configuration. It is built once at startup and
// never mutated afterwards.
type Catalog struct {
	Timezone            string
	GridIntervalMinutes int
	BufferMinutes       int
	ContactEmail        string
	Barbers             []Barber
	Services            []Service
}

func (c Catalog) Barber(id string) (Barber, bool) {
	for _, b := range c.Barbers {
		if b.ID == id {
			return b, true
		}
	}
	return Barber{}, false
}

func (c Catalog) Service(id string) (Service, bool) {
	for _, s := range c.Services {
		if s.ID == id {
			return s, true
		}
	}
	return Service{}, false
}

func (c Catalog) Location() (*time.Location, error) {
	if strings.TrimSpace(c.Timezone) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.New("invalid time_zone")
	}
	return loc, nil
}

func (c Catalog) GridInterval() time.Duration {
	if c.GridIntervalMinutes <= 0 {
		return DefaultGridIntervalMinutes * time.Minute
	}
	return time.Duration(c.GridIntervalMinutes) * time.Minute
}

func (c Catalog) Buffer() time.Duration {
	if c.BufferMinutes <= 0 {
		return 0
	}
	return time.Duration(c.BufferMinutes) * time.Minute
}

func (c Catalog) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.GridIntervalMinutes < 0 {
		return errors.New("grid interval must not be negative")
	}
	if c.BufferMinutes < 0 {
		return errors.New("buffer must not be negative")
	}
	if len(c.Barbers) == 0 {
		return errors.New("catalog has no barbers")
	}
	if len(c.Services) == 0 {
		return errors.New("catalog has no services")
	}

	seen := make(map[string]struct{}, len(c.Barbers))
	for _, b := range c.Barbers {
		if strings.TrimSpace(b.ID) == "" {
			return errors.New("barber id is required")
		}
		if _, ok := seen[b.ID]; ok {
			return fmt.Errorf("duplicate barber %q", b.ID)
		}
		seen[b.ID] = struct{}{}
		for day, w := range b.Hours {
			if err := w.Validate(); err != nil {
				return fmt.Errorf("barber %q %s: %w", b.ID, time.Weekday(day), err)
			}
		}
	}

	seen = make(map[string]struct{}, len(c.Services))
	for _, s := range c.Services {
		if strings.TrimSpace(s.ID) == "" {
			return errors.New("service id is required")
		}
		if _, ok := seen[s.ID]; ok {
			return fmt.Errorf("duplicate service %q", s.ID)
		}
		seen[s.ID] = struct{}{}
		if err := s.Validate(); err != nil {
			return err
		}
	}
	return nil
}
