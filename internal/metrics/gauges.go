package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GaugeSources supplies the values of the observable gauges. Nil sources are skipped.
type GaugeSources struct {
	// OutboxBacklog returns the number of outbox entries per status.
	OutboxBacklog func(ctx context.Context) (map[string]int64, error)
	// BreakerState returns the product circuit breaker state name.
	BreakerState func() string
}

// breakerStates are reported as one series each; the current state is 1.
var breakerStates = []string{"closed", "half-open", "open"}

// RegisterGauges registers observable gauges read on every scrape.
func RegisterGauges(meterProvider metric.MeterProvider, namespace string, sources GaugeSources) error {
	meter := meterProvider.Meter(namespace)

	if sources.OutboxBacklog != nil {
		backlog, err := meter.Int64ObservableGauge(
			fmt.Sprintf("%s_outbox_entries", namespace),
			metric.WithDescription("Number of outbox entries by status"),
			metric.WithUnit("{entry}"),
		)
		if err != nil {
			return fmt.Errorf("failed to create outbox backlog gauge: %w", err)
		}

		_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			counts, err := sources.OutboxBacklog(ctx)
			if err != nil {
				return err
			}
			for status, count := range counts {
				o.ObserveInt64(backlog, count, metric.WithAttributes(attribute.String("status", status)))
			}
			return nil
		}, backlog)
		if err != nil {
			return fmt.Errorf("failed to register outbox backlog callback: %w", err)
		}
	}

	if sources.BreakerState != nil {
		state, err := meter.Int64ObservableGauge(
			fmt.Sprintf("%s_product_circuit_breaker_state", namespace),
			metric.WithDescription("Product service circuit breaker state, 1 for the current state"),
		)
		if err != nil {
			return fmt.Errorf("failed to create circuit breaker gauge: %w", err)
		}

		_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
			current := sources.BreakerState()
			for _, name := range breakerStates {
				var value int64
				if name == current {
					value = 1
				}
				o.ObserveInt64(state, value, metric.WithAttributes(attribute.String("state", name)))
			}
			return nil
		}, state)
		if err != nil {
			return fmt.Errorf("failed to register circuit breaker callback: %w", err)
		}
	}

	return nil
}
