package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "barbearia.bookings"

type Metrics struct {
	availabilityQueries metric.Int64Counter
	availabilitySlots   metric.Int64Histogram
	bookingsCreated     metric.Int64Counter
	sourceFailures      metric.Int64Counter
}

// NewMetrics registers instruments on the global meter provider.
func NewMetrics() (*Metrics, error) {
	return NewMetricsWith(otel.GetMeterProvider())
}

func NewMetricsWith(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)

	availabilityQueries, err := meter.Int64Counter(
		"availability_queries_total",
		metric.WithDescription("Availability queries by outcome"),
		metric.WithUnit("{query}"),
	)
	if err != nil {
		return nil, err
	}

	availabilitySlots, err := meter.Int64Histogram(
		"availability_slots",
		metric.WithDescription("Slots returned per availability query"),
		metric.WithUnit("{slot}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 8, 12, 16, 24, 32),
	)
	if err != nil {
		return nil, err
	}

	bookingsCreated, err := meter.Int64Counter(
		"bookings_created_total",
		metric.WithDescription("Bookings created"),
		metric.WithUnit("{booking}"),
	)
	if err != nil {
		return nil, err
	}

	sourceFailures, err := meter.Int64Counter(
		"availability_source_failures_total",
		metric.WithDescription("Booked interval fetches that failed"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		availabilityQueries: availabilityQueries,
		availabilitySlots:   availabilitySlots,
		bookingsCreated:     bookingsCreated,
		sourceFailures:      sourceFailures,
	}, nil
}

// Nil receivers are no-ops so callers need not check for disabled metrics.

func (m *Metrics) RecordAvailability(ctx context.Context, barberID, outcome string, slots int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("barber_id", barberID), attribute.String("outcome", outcome))
	m.availabilityQueries.Add(ctx, 1, attrs)
	if outcome == "ok" {
		m.availabilitySlots.Record(ctx, int64(slots), metric.WithAttributes(attribute.String("barber_id", barberID)))
	}
}

func (m *Metrics) RecordBookingCreated(ctx context.Context, barberID, serviceID string) {
	if m == nil {
		return
	}
	m.bookingsCreated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("barber_id", barberID),
		attribute.String("service_id", serviceID),
	))
}

func (m *Metrics) RecordSourceFailure(ctx context.Context, barberID, policy string) {
	if m == nil {
		return
	}
	m.sourceFailures.Add(ctx, 1, metric.WithAttributes(
		attribute.String("barber_id", barberID),
		attribute.String("policy", policy),
	))
}
