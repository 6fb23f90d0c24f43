package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvAdmissionQueueCapacity = "ADMISSION_QUEUE_CAPACITY"
	EnvAdmissionQueueWait     = "ADMISSION_QUEUE_WAIT"
	EnvAdmissionPermits       = "ADMISSION_PERMITS"
	EnvAdmissionPermitWait    = "ADMISSION_PERMIT_WAIT"
	EnvAdmissionWorkers       = "ADMISSION_WORKERS"

	EnvBookingCacheTTL        = "BOOKING_CACHE_TTL"
	EnvBookingCacheSize       = "BOOKING_CACHE_SIZE"
	EnvUserBookingsCacheTTL   = "USER_BOOKINGS_CACHE_TTL"
	EnvUserBookingsCacheSize  = "USER_BOOKINGS_CACHE_SIZE"
	EnvAvailabilityCacheTTL   = "AVAILABILITY_CACHE_TTL"
	EnvAvailabilityCacheSize  = "AVAILABILITY_CACHE_SIZE"
	EnvCacheSweepInterval     = "CACHE_SWEEP_INTERVAL"

	EnvRoomLockTTL = "ROOM_LOCK_TTL"

	EnvClientRateLimitRPS   = "CLIENT_RATE_LIMIT_RPS"
	EnvClientRateLimitBurst = "CLIENT_RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvEventsEnabled = "EVENTS_ENABLED"
	EnvEventsTopic   = "EVENTS_TOPIC"
)
