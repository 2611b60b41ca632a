package echoapi

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitMiddleware_throttlesPerIP(t *testing.T) {
	stop := make(chan struct{})
	defer close(stop)

	e := echo.New()
	handler := rateLimitMiddleware(2, 1, stop)(func(ctx echo.Context) error {
		return ctx.NoContent(http.StatusOK)
	})

	call := func(remoteAddr string) error {
		req := httptest.NewRequest(http.MethodPost, "/v1/session/login", nil)
		req.RemoteAddr = remoteAddr
		rec := httptest.NewRecorder()
		return handler(e.NewContext(req, rec))
	}

	assert.NoError(t, call("10.0.0.1:4000"))
	assert.NoError(t, call("10.0.0.1:4000"))
	assert.Equal(t, errTooManyRequests, call("10.0.0.1:4000"), "burst exhausted")

	// a different client has its own bucket
	assert.NoError(t, call("10.0.0.2:4000"))
}

func TestRateLimitMiddleware_sweeperStops(t *testing.T) {
	before := runtime.NumGoroutine()

	stop := make(chan struct{})
	_ = rateLimitMiddleware(1, 1, stop)
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() > before },
		time.Second, 10*time.Millisecond, "sweeper did not start")

	close(stop)
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= before },
		2*time.Second, 10*time.Millisecond, "sweeper survived stop")
}
