// Package integration exercises the full HTTP surface with the real detector,
// the real Edamam client and router, and fakes only at the network edge.
package integration

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chefmate/api/internal/api"
	"github.com/chefmate/api/internal/config"
	"github.com/chefmate/api/internal/services/detection"
	"github.com/chefmate/api/internal/services/edamam"
)

// ============================================================================
// Model Fake
// ============================================================================

// FakeModel stands in for Gemini. It records every transient file it was
// handed and every remote file it was asked to delete.
type FakeModel struct {
	mu sync.Mutex

	Answer    string
	UploadErr error
	GenErr    error

	UploadedPaths []string
	Deleted       []string
}

func (m *FakeModel) UploadImage(ctx context.Context, r io.Reader, mimeType, displayName string) (*detection.UploadedImage, error) {
	if p, ok := r.(interface{ Path() string }); ok {
		m.mu.Lock()
		m.UploadedPaths = append(m.UploadedPaths, p.Path())
		m.mu.Unlock()
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	if m.UploadErr != nil {
		return nil, m.UploadErr
	}

	name := "files/fake-" + displayName
	return &detection.UploadedImage{Name: name, URI: "https://fake.test/" + name, MIMEType: mimeType}, nil
}

func (m *FakeModel) ListFoodItems(ctx context.Context, image *detection.UploadedImage) (string, error) {
	if m.GenErr != nil {
		return "", m.GenErr
	}
	return m.Answer, nil
}

func (m *FakeModel) DeleteImage(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, name)
	return nil
}

var errFakeQuota = errors.New("fake quota exceeded")

// ============================================================================
// Harness
// ============================================================================

type harness struct {
	cfg     *config.Config
	router  http.Handler
	model   *FakeModel
	tempDir string
}

// newHarness loads configuration the way the server does, from env vars
// and a YAML file, pointing the recipe provider at edamamHandler.
func newHarness(t *testing.T, model *FakeModel, edamamHandler http.HandlerFunc, extraYAML string) *harness {
	t.Helper()

	provider := httptest.NewServer(edamamHandler)
	t.Cleanup(provider.Close)

	dir := t.TempDir()
	tempDir := filepath.Join(dir, "images")
	require.NoError(t, os.Mkdir(tempDir, 0o755))

	yaml := "detection:\n  temp_dir: " + tempDir + "\n" +
		"recipes:\n  base_url: " + provider.URL + "/search\n" + extraYAML
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(yaml), 0o644))

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("ENV", "test")
	t.Setenv("EDAMAM_API_ID", "integration-id")
	t.Setenv("EDAMAM_API_KEY", "integration-key")
	t.Setenv("ALLOWED_ORIGIN", "https://chefmate.netlify.app/")
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	var m detection.Model
	if model != nil {
		m = model
	}
	detector := detection.NewDetector(m,
		detection.WithTempDir(cfg.Detection.TempDir),
		detection.WithTimeout(cfg.Detection.Timeout),
	)
	recipes := edamam.NewClient(cfg.Recipes.BaseURL, cfg.EdamamAppID, cfg.EdamamAppKey, cfg.Recipes.PageSize,
		edamam.WithTimeout(cfg.Recipes.Timeout),
	)

	return &harness{
		cfg:     cfg,
		router:  api.NewRouter(cfg, api.NewServer(cfg, detector, recipes)),
		model:   model,
		tempDir: tempDir,
	}
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func (h *harness) assertNoTransientFiles(t *testing.T) {
	t.Helper()
	entries, err := os.ReadDir(h.tempDir)
	require.NoError(t, err)
	require.Empty(t, entries, "transient images left on disk")
}
