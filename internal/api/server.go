package api

import (
	"context"

	"github.com/chefmate/api/internal/config"
	"github.com/chefmate/api/internal/services/edamam"
)

// FoodDetector lists the food items visible in a base64 encoded photo.
type FoodDetector interface {
	Detect(ctx context.Context, imageBase64 string) ([]string, error)
}

// RecipeSearcher finds recipes for an ingredient.
type RecipeSearcher interface {
	Search(ctx context.Context, query string) ([]edamam.Hit, error)
}

type Server struct {
	cfg      *config.Config
	detector FoodDetector
	recipes  RecipeSearcher
}

func NewServer(cfg *config.Config, detector FoodDetector, recipes RecipeSearcher) *Server {
	return &Server{
		cfg:      cfg,
		detector: detector,
		recipes:  recipes,
	}
}
