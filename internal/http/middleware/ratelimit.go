package middleware

import (
	"math"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// RateLimit applies one process-wide token bucket of rps tokens per second
// with the given burst. Rejected requests get fiber.ErrTooManyRequests and a
// Retry-After header. rps <= 0 disables limiting.
func RateLimit(rps, burst int, skipPaths ...string) fiber.Handler {
	if rps <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	skip := skipper(skipPaths)

	return func(c *fiber.Ctx) error {
		if skip(c) {
			return c.Next()
		}
		r := limiter.Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			return fiber.ErrTooManyRequests
		}
		return c.Next()
	}
}
