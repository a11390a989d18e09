package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogging_AssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	var ctxLogged bool
	handler := RequestLogging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		zerolog.Ctx(r.Context()).Info().Msg("inside")
		ctxLogged = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	require.True(t, ctxLogged)
	id := rec.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, id)

	dec := json.NewDecoder(&buf)
	var inside, done map[string]any
	require.NoError(t, dec.Decode(&inside))
	require.NoError(t, dec.Decode(&done))
	assert.Equal(t, id, inside["request_id"])
	assert.Equal(t, id, done["request_id"])
	assert.Equal(t, "warn", done["level"])
	assert.Equal(t, float64(http.StatusTeapot), done["status_code"])
}

func TestRequestLogging_DebugLogsStart(t *testing.T) {
	var buf bytes.Buffer
	handler := RequestLogging(zerolog.New(&buf).Level(zerolog.DebugLevel))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	dec := json.NewDecoder(&buf)
	var started, done map[string]any
	require.NoError(t, dec.Decode(&started))
	require.NoError(t, dec.Decode(&done))
	assert.Equal(t, "HTTP request started", started["message"])
	assert.Equal(t, "debug", started["level"])
	assert.Equal(t, "HTTP request completed", done["message"])
	assert.Equal(t, float64(http.StatusOK), done["status_code"])
}

func TestRequestLogging_KeepsIncomingID(t *testing.T) {
	handler := RequestLogging(zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRecovery(t *testing.T) {
	handler := Recovery()(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"internal server error"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	handler := CORS([]string{"http://localhost:5173", "https://album.example.com"})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	rec = httptest.NewRecorder()
	CORS(nil)(next).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://album.example.com"})

	req := httptest.NewRequest(http.MethodGet, "http://localhost:2108/api/kisses/live", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "http://localhost:2108")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://album.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}
