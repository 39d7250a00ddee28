package middleware

import (
	pkgLog "data-analyst-agent/pkg/log"
)

type Middleware struct {
	l       pkgLog.Logger
	limiter *rateLimiter
}

// New builds the middleware set. requestsPerMin bounds how many
// requests a single client may issue per minute; zero disables the
// limit.
func New(l pkgLog.Logger, requestsPerMin int) Middleware {
	return Middleware{
		l:       l,
		limiter: newRateLimiter(requestsPerMin),
	}
}
