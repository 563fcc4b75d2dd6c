// Package middleware provides the HTTP middleware of the Datash host.
//
// Middleware stack:
//   - CORS: cross-origin access for the web surface (gin-contrib/cors)
//   - RateLimit: per-IP token bucket rate limiting with idle-client cleanup
//   - GlobalRateLimit: one bucket shared by all clients
//   - Logger: structured request logging with zap
//   - Recovery: panic recovery answering 500 with a JSON error
//
// Example Usage:
//
//	router.Use(middleware.Recovery(logger), middleware.Logger(logger))
//	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
//	router.Use(middleware.RateLimit(middleware.DefaultRateLimitConfig()))
package middleware
