package middleware_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/stashport/internal/domain"
	"github.com/pkordes/stashport/internal/middleware"
)

// logOne runs a single request through NewSlogLogger and returns the decoded
// log line.
func logOne(t *testing.T, status int, ctx context.Context) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := middleware.NewSlogLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("hello"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, status, rec.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSlogLogger_logsRequestFields(t *testing.T) {
	// Stand-in for chimiddleware.RequestID.
	ctx := context.WithValue(context.Background(), chimiddleware.RequestIDKey, "test-req-id")

	entry := logOne(t, http.StatusOK, ctx)

	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/healthz", entry["path"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
	assert.EqualValues(t, 5, entry["bytes"])
	assert.Equal(t, "test-req-id", entry["request_id"])
	assert.NotNil(t, entry["duration_ms"])
	assert.NotContains(t, entry, "user_id")
}

func TestSlogLogger_levelsAndUser(t *testing.T) {
	id := uuid.New()
	ctx := middleware.WithIdentity(context.Background(), &domain.Identity{UserID: id})

	warn := logOne(t, http.StatusNotFound, ctx)
	assert.Equal(t, "WARN", warn["level"])
	assert.Equal(t, id.String(), warn["user_id"])

	failed := logOne(t, http.StatusInternalServerError, context.Background())
	assert.Equal(t, "ERROR", failed["level"])
}
