package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"barbearia/backend/internal/domain"
)

type hoursFile struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type barberFile struct {
	ID          string               `mapstructure:"id"`
	Name        string               `mapstructure:"name"`
	Email       string               `mapstructure:"email"`
	CalendarID  string               `mapstructure:"calendar_id"`
	Specialties []string             `mapstructure:"specialties"`
	Hours       map[string]hoursFile `mapstructure:"hours"`
}

type serviceFile struct {
	ID          string `mapstructure:"id"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Duration    int    `mapstructure:"duration_minutes"`
	Price       string `mapstructure:"price"`
}

type catalogFile struct {
	Timezone     string        `mapstructure:"timezone"`
	GridInterval int           `mapstructure:"grid_interval_minutes"`
	Buffer       int           `mapstructure:"buffer_minutes"`
	ContactEmail string        `mapstructure:"contact_email"`
	Barbers      []barberFile  `mapstructure:"barbers"`
	Services     []serviceFile `mapstructure:"services"`
}

var weekdayKeys = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadCatalog reads the shop catalog from a YAML file. An empty path yields
// DefaultCatalog. Weekdays missing from a barber's hours are closed.
func LoadCatalog(path string) (domain.Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	var raw catalogFile
	if err := v.Unmarshal(&raw); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	cat := domain.Catalog{
		Timezone:            strings.TrimSpace(raw.Timezone),
		GridIntervalMinutes: raw.GridInterval,
		BufferMinutes:       raw.Buffer,
		ContactEmail:        strings.TrimSpace(raw.ContactEmail),
	}
	if cat.Timezone == "" {
		cat.Timezone = DefaultTimezone
	}

	for _, rb := range raw.Barbers {
		b := domain.Barber{
			ID:          strings.TrimSpace(rb.ID),
			Name:        rb.Name,
			Email:       rb.Email,
			CalendarID:  rb.CalendarID,
			Specialties: rb.Specialties,
		}
		for day := range b.Hours {
			b.Hours[day] = domain.ClosedWindow()
		}
		for key, h := range rb.Hours {
			day, ok := weekdayKeys[strings.ToLower(strings.TrimSpace(key))]
			if !ok {
				return domain.Catalog{}, fmt.Errorf("barber %q: unknown weekday %q", b.ID, key)
			}
			w, err := domain.WindowFromClock(h.Start, h.End)
			if err != nil {
				return domain.Catalog{}, fmt.Errorf("barber %q %s: %w", b.ID, day, err)
			}
			b.Hours[day] = w
		}
		cat.Barbers = append(cat.Barbers, b)
	}

	for _, rs := range raw.Services {
		price, err := ParsePrice(rs.Price)
		if err != nil {
			return domain.Catalog{}, fmt.Errorf("service %q: %w", rs.ID, err)
		}
		cat.Services = append(cat.Services, domain.Service{
			ID:              strings.TrimSpace(rs.ID),
			Name:            rs.Name,
			Description:     rs.Description,
			DurationMinutes: rs.Duration,
			PriceMinorUnits: price,
		})
	}

	if err := cat.Validate(); err != nil {
		return domain.Catalog{}, err
	}
	return cat, nil
}

// ParsePrice converts a decimal amount such as "35.00" or "35,5" into
// centavos.
func ParsePrice(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" {
		return 0, nil
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > 2 {
		return 0, errors.New("price has more than two decimals")
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || cents < 0 {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return units*100 + cents, nil
}
