package detection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/chefmate/api/internal/errors"
	"github.com/chefmate/api/internal/metrics"
)

// ErrModelUnavailable is returned when no model backend was configured,
// which happens when GEMINI_API_KEY is missing.
var ErrModelUnavailable = errors.New("GEMINI_API_KEY is not set")

// remoteCleanupTimeout bounds the best-effort deletion of the uploaded file.
const remoteCleanupTimeout = 10 * time.Second

// UploadedImage references an image stored by the model provider.
type UploadedImage struct {
	Name     string
	URI      string
	MIMEType string
}

// Model is the generative backend used to recognise food.
type Model interface {
	UploadImage(ctx context.Context, r io.Reader, mimeType, displayName string) (*UploadedImage, error)
	ListFoodItems(ctx context.Context, image *UploadedImage) (string, error)
	DeleteImage(ctx context.Context, name string) error
}

// DetectionRequest is the body of POST /api/detect.
type DetectionRequest struct {
	ImageBase64 string `json:"imageBase64"`
}

// DetectionResult is the body of a successful detection response.
type DetectionResult struct {
	DetectedObjects []string `json:"detectedObjects"`
}

// Detector turns a base64 photo into a list of food names.
type Detector struct {
	model   Model
	tempDir string
	timeout time.Duration
}

type Option func(*Detector)

// WithTempDir sets where transient images are written.
func WithTempDir(dir string) Option {
	return func(d *Detector) {
		d.tempDir = dir
	}
}

// WithTimeout bounds one whole detection (upload plus generation).
func WithTimeout(timeout time.Duration) Option {
	return func(d *Detector) {
		d.timeout = timeout
	}
}

// NewDetector builds a Detector. A nil model is allowed; Detect then fails
// with ErrModelUnavailable.
func NewDetector(model Model, opts ...Option) *Detector {
	d := &Detector{model: model}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect decodes imageBase64, uploads it, asks the model for the food items
// it shows and returns them deduplicated and sorted. All failures are
// *apperrors.AppError values of type detection.
func (d *Detector) Detect(ctx context.Context, imageBase64 string) (items []string, err error) {
	defer func() {
		metrics.RecordDetection(ctx, len(items), err)
	}()

	if d.model == nil {
		return nil, apperrors.NewDetectionError("object detection is not configured", "MODEL_UNAVAILABLE", ErrModelUnavailable)
	}
	if imageBase64 == "" {
		return nil, apperrors.NewDetectionError("imageBase64 is required", "IMAGE_MISSING", nil)
	}

	slog.DebugContext(ctx, "Received image", "base64_length", len(imageBase64))

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	img, err := newTransientImage(d.tempDir, imageBase64)
	if err != nil {
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			return nil, apperrors.NewDetectionError("failed to decode image", "IMAGE_DECODE_FAILED", decodeErr)
		}
		return nil, apperrors.NewDetectionError("failed to store image", "IMAGE_STORE_FAILED", err)
	}
	defer func() {
		if cerr := img.Close(); cerr != nil {
			slog.WarnContext(ctx, "Failed to remove transient image", "path", img.Path(), "error", cerr)
		}
	}()

	uploaded, err := d.upload(ctx, img)
	if err != nil {
		return nil, err
	}
	defer d.deleteRemote(ctx, uploaded)

	text, err := d.model.ListFoodItems(ctx, uploaded)
	if err != nil {
		slog.ErrorContext(ctx, "Food detection failed", "file", uploaded.Name, "error", err)
		return nil, apperrors.NewDetectionError("failed to generate food list", "GENERATION_FAILED", err)
	}

	items = ParseFoodItems(text)
	slog.InfoContext(ctx, "Detected objects", "count", len(items), "items", items)

	return items, nil
}

func (d *Detector) upload(ctx context.Context, img *transientImage) (*UploadedImage, error) {
	displayName := "detect-" + uuid.NewString()

	uploaded, err := d.model.UploadImage(ctx, img, img.mimeType, displayName)
	if err != nil {
		slog.ErrorContext(ctx, "Error uploading file to Gemini", "display_name", displayName, "error", err)
		return nil, apperrors.NewDetectionError("failed to upload image", "UPLOAD_FAILED", err)
	}
	if uploaded == nil {
		return nil, apperrors.NewDetectionError("failed to upload image", "UPLOAD_FAILED", errors.New("provider returned no file"))
	}
	if uploaded.MIMEType == "" {
		uploaded.MIMEType = img.mimeType
	}

	slog.InfoContext(ctx, "Uploaded file",
		"display_name", displayName,
		"uri", uploaded.URI,
		"mime_type", uploaded.MIMEType,
		"bytes", img.size,
	)
	return uploaded, nil
}

// deleteRemote removes the provider copy even when ctx is already done.
func (d *Detector) deleteRemote(ctx context.Context, uploaded *UploadedImage) {
	if uploaded.Name == "" {
		return
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), remoteCleanupTimeout)
	defer cancel()

	if err := d.model.DeleteImage(cleanupCtx, uploaded.Name); err != nil {
		slog.WarnContext(ctx, "Failed to delete uploaded image", "file", uploaded.Name, "error", err)
	}
}
