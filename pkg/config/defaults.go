package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "stayhub"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	// 833 permits ~= a 3M requests/hour throughput budget.
	DefaultAdmissionQueueCapacity = 10000
	DefaultAdmissionQueueWait     = 1 * time.Second
	DefaultAdmissionPermits       = 833
	DefaultAdmissionPermitWait    = 2 * time.Second
	DefaultAdmissionWorkers       = 0 // derived from available parallelism

	// Bookings mutate, so the by-id cache stays short-lived; per-user lists
	// change less often; availability has the highest churn.
	DefaultBookingCacheTTL       = 5 * time.Minute
	DefaultBookingCacheSize      = 10000
	DefaultUserBookingsCacheTTL  = 15 * time.Minute
	DefaultUserBookingsCacheSize = 1000
	DefaultAvailabilityCacheTTL  = 1 * time.Minute
	DefaultAvailabilityCacheSize = 5000
	DefaultCacheSweepInterval    = 1 * time.Minute

	DefaultRoomLockTTL = 10 * time.Second

	DefaultClientRateLimitRPS   = 50
	DefaultClientRateLimitBurst = 100

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultEventsEnabled = false
	DefaultEventsTopic   = "booking-events"
)
