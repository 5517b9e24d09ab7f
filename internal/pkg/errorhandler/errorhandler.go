package errorhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/saya/booking-api/internal/pkg/httpx"
	"github.com/saya/booking-api/internal/pkg/logger"
	"github.com/saya/booking-api/internal/pkg/response"
)

// HandleError logs err and sends the error envelope. The error itself never
// reaches the client.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	l := logger.FromContext(ctx)
	event := l.Error()
	if status < http.StatusInternalServerError || status == http.StatusBadGateway {
		event = l.Warn()
	}

	event.
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status).
		Err(err).
		Msg("Request error")

	response.Error(w, status, code, message)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Warn().
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
}

// LogExternalServiceError logs a failed call to the resort or mail API,
// including the upstream status and body when it answered.
func LogExternalServiceError(ctx context.Context, service string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("external_service", service).
		Err(err)

	var statusErr *httpx.StatusError
	switch {
	case errors.As(err, &statusErr):
		event = event.
			Int("status_code", statusErr.StatusCode).
			Str("response_body", truncateString(statusErr.Body, 1000))
	case errors.Is(err, httpx.ErrTimeout):
		event = event.Str("failure", "timeout")
	case errors.Is(err, httpx.ErrNetwork):
		event = event.Str("failure", "network")
	}

	event.Msg("External service error")
}

func truncateString(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + "...<truncated>"
	}
	return s
}
