package metrics

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRecordBeforeInit(t *testing.T) {
	// Instruments are nil until Init; recording must not panic.
	ctx := context.Background()
	RecordExternalCall(ctx, "edamam", "search", time.Now(), nil)
	RecordDetection(ctx, 3, nil)
	RecordRecipeSearch(ctx, "found")
}

func TestInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if DetectionRequestsTotal == nil || DetectedItems == nil || RecipeSearchesTotal == nil ||
		ExternalAPICallsTotal == nil || ExternalAPIDuration == nil {
		t.Fatal("expected all instruments to be created")
	}

	ctx := context.Background()
	RecordExternalCall(ctx, "gemini", "generate", time.Now(), errors.New("boom"))
	RecordDetection(ctx, 0, errors.New("boom"))
	RecordRecipeSearch(ctx, "provider_error")
}
