package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VijayGit-Hub/menu-upload-system/internal/models"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/verify-pin", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestPinThrottle_LimitsPerClient(t *testing.T) {
	th := NewPinThrottle(2, zap.NewNop())
	h := th.Handler(okHandler)

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1111").Code)
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:2222").Code, "порт не влияет на ключ клиента")

	rr := doRequest(h, "10.0.0.1:3333")
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	var body models.PinResult
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.False(t, body.Authorized)
	assert.Equal(t, MsgTooManyAttempts, body.Message)

	// Другой клиент не затронут
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1111").Code)
}

func TestPinThrottle_RefillsOverTime(t *testing.T) {
	now := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	th := NewPinThrottle(1, zap.NewNop())
	th.now = func() time.Time { return now }
	h := th.Handler(okHandler)

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:1").Code)

	now = now.Add(time.Minute)
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1").Code)
}

func TestPinThrottle_Disabled(t *testing.T) {
	h := NewPinThrottle(0, zap.NewNop()).Handler(okHandler)
	for range 50 {
		assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1").Code)
	}
}

func TestPinThrottle_PurgesIdleClients(t *testing.T) {
	now := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	th := NewPinThrottle(5, zap.NewNop())
	th.now = func() time.Time { return now }

	assert.True(t, th.allow("a"))
	now = now.Add(clientTTL + time.Second)
	assert.True(t, th.allow("b"))

	th.mu.Lock()
	defer th.mu.Unlock()
	assert.Len(t, th.clients, 1)
	assert.Contains(t, th.clients, "b")
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", clientKey(req))

	req.RemoteAddr = "192.168.1.5"
	assert.Equal(t, "192.168.1.5", clientKey(req))
}
