package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/chefmate/api/internal/services/edamam"
)

func newTestRouter(detector FoodDetector, recipes RecipeSearcher) http.Handler {
	cfg := testConfig()
	return NewRouter(cfg, NewServer(cfg, detector, recipes))
}

func TestRouter_Health(t *testing.T) {
	router := newTestRouter(new(MockDetector), new(MockRecipeSearcher))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())
}

func TestRouter_Routes(t *testing.T) {
	detector := new(MockDetector)
	detector.On("Detect", mock.Anything, "aGk=").Return([]string{"Egg"}, nil)
	recipes := new(MockRecipeSearcher)
	recipes.On("Search", mock.Anything, "egg").Return([]edamam.Hit{edamam.Hit(`{"recipe":{"label":"Omelette"}}`)}, nil)
	router := newTestRouter(detector, recipes)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/detect", strings.NewReader(`{"imageBase64":"aGk="}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Content-Type"))

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"recipe_name":"egg"}`)))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"results":[{"recipe":{"label":"Omelette"}}]}`, rr.Body.String())
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(new(MockDetector), new(MockRecipeSearcher))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/search", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(new(MockDetector), new(MockRecipeSearcher))

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/detect", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("configured origin", func(t *testing.T) {
		rr := preflight("https://chefmate.netlify.app")
		assert.Less(t, rr.Code, 300)
		assert.Equal(t, "https://chefmate.netlify.app", rr.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	})

	t.Run("other origin", func(t *testing.T) {
		rr := preflight("https://evil.example")
		assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRouter_CORSSimpleRequest(t *testing.T) {
	recipes := new(MockRecipeSearcher)
	recipes.On("Search", mock.Anything, "kale").Return(nil, edamam.ErrNoRecipes)
	router := newTestRouter(new(MockDetector), recipes)

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"recipe_name":"kale"}`))
	req.Header.Set("Origin", "https://chefmate.netlify.app")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "https://chefmate.netlify.app", rr.Header().Get("Access-Control-Allow-Origin"))
}
