package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "booking_platform"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory lock tuning for the per-user conflict check. The TTL
	// bounds how long a crashed writer can hold a calendar; retries
	// cover the common case of two requests hitting the same calendar
	// within a few milliseconds.
	DefaultCalendarLockTTL        = 10 * time.Second
	DefaultCalendarLockRetries    = 3
	DefaultCalendarLockRetryDelay = 50 * time.Millisecond

	DefaultPaginationLimit = 100
)
