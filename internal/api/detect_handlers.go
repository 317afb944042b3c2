package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/chefmate/api/internal/errors"
	"github.com/chefmate/api/internal/logger"
	"github.com/chefmate/api/internal/sentry"
	"github.com/chefmate/api/internal/services/detection"
)

// maxDetectBody caps the JSON body of a detection request.
const maxDetectBody = 32 << 20

// HandleDetect answers POST /api/detect. Every failure, including a body
// that cannot be read, is a 500 carrying the error text.
func (s *Server) HandleDetect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req detection.DetectionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDetectBody)).Decode(&req); err != nil {
		s.detectFailed(w, r, apperrors.NewDetectionError("invalid request body", "INVALID_BODY", err))
		return
	}

	items, err := s.detector.Detect(ctx, req.ImageBase64)
	if err != nil {
		s.detectFailed(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, detection.DetectionResult{DetectedObjects: items})
}

func (s *Server) detectFailed(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	status := apperrors.StatusOf(err)

	slog.ErrorContext(ctx, "Detection request failed", "error", err, "status", status, logger.WithTraceContext(ctx))
	if status >= http.StatusInternalServerError {
		sentry.CaptureError(ctx, err)
	}
	writeError(w, r, status, err.Error())
}
