package echoapi

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/skiddy/skiddy/core/session"
)

const loginPath = "/login"

// sessionGuardMiddleware protects a route group: while no valid session is
// present the request is redirected to the login entry point before any
// handler runs, so protected content is never rendered to a logged-out
// client.
func sessionGuardMiddleware(sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !sessions.IsValid() {
				return ctx.Redirect(http.StatusFound, loginPath)
			}
			return next(ctx)
		}
	}
}

func adminMiddleware(sessions *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if usr := sessions.CurrentUser(); usr != nil && usr.IsAdmin() {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// rateLimitMiddleware applies a token-bucket limit per client IP. Buckets
// idle for more than 5 minutes are dropped by a background sweep; the sweep
// goroutine exits when stop is closed (the owning server's shutdown).
func rateLimitMiddleware(burst, perSecond int, stop <-chan struct{}) echo.MiddlewareFunc {
	type bucket struct {
		lim *rate.Limiter
		ts  time.Time
	}
	var (
		mu      sync.Mutex
		buckets = make(map[string]*bucket)
		ttl     = 5 * time.Minute
	)
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				now := time.Now()
				mu.Lock()
				for k, b := range buckets {
					if now.Sub(b.ts) > ttl {
						delete(buckets, k)
					}
				}
				mu.Unlock()
			case <-stop:
				return
			}
		}
	}()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ip := ctx.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			mu.Lock()
			b, ok := buckets[ip]
			if !ok {
				b = &bucket{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
				buckets[ip] = b
			}
			b.ts = time.Now()
			allowed := b.lim.Allow()
			mu.Unlock()

			if !allowed {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
