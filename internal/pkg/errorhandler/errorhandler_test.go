package errorhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/saya/booking-api/internal/pkg/httpx"
	"github.com/saya/booking-api/internal/pkg/logger"
)

func captureLogs() (context.Context, *bytes.Buffer) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	return logger.WithContext(context.Background(), &l), &buf
}

func TestHandleErrorHidesCause(t *testing.T) {
	ctx, logs := captureLogs()
	w := httptest.NewRecorder()

	HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", errors.New("redis: connection refused"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "redis") {
		t.Fatalf("cause leaked to client: %s", w.Body.String())
	}
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Error.Code != "INTERNAL_ERROR" {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}
	if !strings.Contains(logs.String(), "redis: connection refused") || !strings.Contains(logs.String(), `"level":"error"`) {
		t.Fatalf("expected error logged, got %s", logs.String())
	}
}

func TestLogExternalServiceErrorIncludesUpstreamStatus(t *testing.T) {
	ctx, logs := captureLogs()
	err := fmt.Errorf("reserve: %w", &httpx.StatusError{Service: "resort api", StatusCode: 409, Body: "room taken"})

	LogExternalServiceError(ctx, "resort api", err)

	out := logs.String()
	if !strings.Contains(out, `"status_code":409`) || !strings.Contains(out, "room taken") {
		t.Fatalf("expected upstream status in log, got %s", out)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdef", 3); got != "abc...<truncated>" {
		t.Fatalf("unexpected truncation: %s", got)
	}
	if got := truncateString("abc", 3); got != "abc" {
		t.Fatalf("unexpected truncation: %s", got)
	}
}
