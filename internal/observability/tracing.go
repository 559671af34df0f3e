package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "barbearia/backend/internal/service/bookings"

func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

func StartAvailabilitySpan(ctx context.Context, barberID, serviceID string, day time.Time) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "availability.compute",
		trace.WithAttributes(
			attribute.String("barber_id", barberID),
			attribute.String("service_id", serviceID),
			attribute.String("day", day.Format("2006-01-02")),
		),
	)
}

func StartSourceFetchSpan(ctx context.Context, barberID string, dayStart, dayEnd time.Time) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "availability.fetch_booked_intervals",
		trace.WithAttributes(
			attribute.String("barber_id", barberID),
			attribute.String("window.start", dayStart.Format(time.RFC3339)),
			attribute.String("window.end", dayEnd.Format(time.RFC3339)),
		),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

func StartBookingSpan(ctx context.Context, operation, barberID string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "booking."+operation,
		trace.WithAttributes(attribute.String("barber_id", barberID)),
	)
}

func RecordAvailabilityResult(span trace.Span, booked, slots, dropped int, err error) {
	span.SetAttributes(
		attribute.Int("availability.booked_intervals", booked),
		attribute.Int("availability.slots", slots),
		attribute.Int("availability.dropped_intervals", dropped),
	)
	RecordError(span, err)
}

func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
