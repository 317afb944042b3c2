package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/chefmate/api/internal/errors"
	"github.com/chefmate/api/internal/metrics"
	"github.com/chefmate/api/internal/sentry"
	"github.com/chefmate/api/internal/services/edamam"
)

const (
	msgMissingIngredient   = "Please enter an ingredient name."
	msgProviderUnavailable = "Recipe provider unavailable."
)

// maxSearchBody caps the JSON body of a search request.
const maxSearchBody = 64 << 10

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	RecipeName string `json:"recipe_name"`
}

// SearchResponse carries the provider hits unchanged.
type SearchResponse struct {
	Results []edamam.Hit `json:"results"`
}

func noRecipesMessage(ingredient string) string {
	return fmt.Sprintf("No recipes found for '%s'.", ingredient)
}

// HandleSearch answers POST /search.
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SearchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSearchBody)).Decode(&req); err != nil {
		slog.InfoContext(ctx, "Rejected search request", "error", err)
		writeError(w, r, http.StatusBadRequest, msgMissingIngredient)
		return
	}

	ingredient := strings.TrimSpace(req.RecipeName)
	if ingredient == "" {
		writeError(w, r, http.StatusBadRequest, msgMissingIngredient)
		return
	}

	hits, err := s.recipes.Search(ctx, ingredient)
	switch {
	case err == nil:
		metrics.RecordRecipeSearch(ctx, "found")
		writeJSON(w, r, http.StatusOK, SearchResponse{Results: hits})

	case errors.Is(err, edamam.ErrNoRecipes):
		metrics.RecordRecipeSearch(ctx, "not_found")
		writeError(w, r, http.StatusNotFound, noRecipesMessage(ingredient))

	default:
		metrics.RecordRecipeSearch(ctx, "provider_error")
		slog.ErrorContext(ctx, "Recipe search failed", "ingredient", ingredient, "error", err)

		if s.cfg != nil && s.cfg.Recipes.ReportProviderErrors {
			appErr := apperrors.NewProviderError(msgProviderUnavailable, "RECIPE_PROVIDER_FAILED", err)
			sentry.CaptureError(ctx, appErr)
			writeError(w, r, appErr.StatusCode, appErr.Message)
			return
		}
		writeError(w, r, http.StatusNotFound, noRecipesMessage(ingredient))
	}
}
