package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("chefmate/business")

	// Detection metrics
	DetectionRequestsTotal metric.Int64Counter
	DetectedItems          metric.Int64Histogram

	// Recipe search metrics
	RecipeSearchesTotal metric.Int64Counter

	// External API metrics
	ExternalAPICallsTotal metric.Int64Counter
	ExternalAPIDuration   metric.Float64Histogram
)

func Init() error {
	var err error

	DetectionRequestsTotal, err = meter.Int64Counter(
		"detection.requests.total",
		metric.WithDescription("Total number of food detection requests"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	DetectedItems, err = meter.Int64Histogram(
		"detection.items",
		metric.WithDescription("Number of distinct food items returned per detection"),
		metric.WithUnit("1"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 20, 50),
	)
	if err != nil {
		return err
	}

	RecipeSearchesTotal, err = meter.Int64Counter(
		"recipe.searches.total",
		metric.WithDescription("Total number of recipe searches by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPICallsTotal, err = meter.Int64Counter(
		"external.api.calls.total",
		metric.WithDescription("Total number of external API calls"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	ExternalAPIDuration, err = meter.Float64Histogram(
		"external.api.duration",
		metric.WithDescription("Duration of external API calls"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2, 5, 10, 30, 60),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordExternalCall records one outbound call. Safe to call before Init.
func RecordExternalCall(ctx context.Context, provider, operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	if ExternalAPIDuration != nil {
		ExternalAPIDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	}
	if ExternalAPICallsTotal != nil {
		ExternalAPICallsTotal.Add(ctx, 1, attrs)
	}
}

// RecordDetection records a finished detection request.
func RecordDetection(ctx context.Context, items int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if DetectionRequestsTotal != nil {
		DetectionRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if err == nil && DetectedItems != nil {
		DetectedItems.Record(ctx, int64(items))
	}
}

// RecordRecipeSearch records a finished recipe search with its outcome
// (found, not_found, provider_error).
func RecordRecipeSearch(ctx context.Context, outcome string) {
	if RecipeSearchesTotal != nil {
		RecipeSearchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}
