package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"stayhub/pkg/client"
	"stayhub/pkg/logger"

	"github.com/google/uuid"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	AdmissionQueueCapacity int
	AdmissionQueueWait     time.Duration
	AdmissionPermits       int
	AdmissionPermitWait    time.Duration
	AdmissionWorkers       int

	BookingCacheTTL       time.Duration
	BookingCacheSize      int
	UserBookingsCacheTTL  time.Duration
	UserBookingsCacheSize int
	AvailabilityCacheTTL  time.Duration
	AvailabilityCacheSize int
	CacheSweepInterval    time.Duration

	RoomLockTTL time.Duration

	ClientRateLimitRPS   int
	ClientRateLimitBurst int

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	EventsEnabled bool
	EventsTopic   string

	// InstanceID identifies this process in published events so consumers
	// can skip events they originated.
	InstanceID string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		AdmissionQueueCapacity: getEnvNum(EnvAdmissionQueueCapacity, DefaultAdmissionQueueCapacity),
		AdmissionQueueWait:     getEnvDuration(EnvAdmissionQueueWait, DefaultAdmissionQueueWait),
		AdmissionPermits:       getEnvNum(EnvAdmissionPermits, DefaultAdmissionPermits),
		AdmissionPermitWait:    getEnvDuration(EnvAdmissionPermitWait, DefaultAdmissionPermitWait),
		AdmissionWorkers:       getEnvNum(EnvAdmissionWorkers, DefaultAdmissionWorkers),

		BookingCacheTTL:       getEnvDuration(EnvBookingCacheTTL, DefaultBookingCacheTTL),
		BookingCacheSize:      getEnvNum(EnvBookingCacheSize, DefaultBookingCacheSize),
		UserBookingsCacheTTL:  getEnvDuration(EnvUserBookingsCacheTTL, DefaultUserBookingsCacheTTL),
		UserBookingsCacheSize: getEnvNum(EnvUserBookingsCacheSize, DefaultUserBookingsCacheSize),
		AvailabilityCacheTTL:  getEnvDuration(EnvAvailabilityCacheTTL, DefaultAvailabilityCacheTTL),
		AvailabilityCacheSize: getEnvNum(EnvAvailabilityCacheSize, DefaultAvailabilityCacheSize),
		CacheSweepInterval:    getEnvDuration(EnvCacheSweepInterval, DefaultCacheSweepInterval),

		RoomLockTTL: getEnvDuration(EnvRoomLockTTL, DefaultRoomLockTTL),

		ClientRateLimitRPS:   getEnvNum(EnvClientRateLimitRPS, DefaultClientRateLimitRPS),
		ClientRateLimitBurst: getEnvNum(EnvClientRateLimitBurst, DefaultClientRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		EventsEnabled: getEnvBool(EnvEventsEnabled, DefaultEventsEnabled),
		EventsTopic:   getEnvStr(EnvEventsTopic, DefaultEventsTopic),

		InstanceID: uuid.NewString(),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}
	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}
	if cfg.MongoConnTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}

	if cfg.AdmissionQueueCapacity <= 0 {
		errs = append(errs, fmt.Sprintf("AdmissionQueueCapacity must be positive, got: %d", cfg.AdmissionQueueCapacity))
	}
	if cfg.AdmissionQueueWait <= 0 {
		errs = append(errs, fmt.Sprintf("AdmissionQueueWait must be positive, got: %s", cfg.AdmissionQueueWait))
	}
	if cfg.AdmissionPermits <= 0 {
		errs = append(errs, fmt.Sprintf("AdmissionPermits must be positive, got: %d", cfg.AdmissionPermits))
	}
	if cfg.AdmissionPermitWait <= 0 {
		errs = append(errs, fmt.Sprintf("AdmissionPermitWait must be positive, got: %s", cfg.AdmissionPermitWait))
	}
	if cfg.AdmissionWorkers < 0 {
		errs = append(errs, fmt.Sprintf("AdmissionWorkers cannot be negative, got: %d", cfg.AdmissionWorkers))
	}

	for name, d := range map[string]time.Duration{
		"BookingCacheTTL":      cfg.BookingCacheTTL,
		"UserBookingsCacheTTL": cfg.UserBookingsCacheTTL,
		"AvailabilityCacheTTL": cfg.AvailabilityCacheTTL,
		"CacheSweepInterval":   cfg.CacheSweepInterval,
		"RoomLockTTL":          cfg.RoomLockTTL,
		"RequestTimeout":       cfg.RequestTimeout,
		"IdempotencyTTL":       cfg.IdempotencyTTL,
		"ReadTimeout":          cfg.ReadTimeout,
		"WriteTimeout":         cfg.WriteTimeout,
		"IdleTimeout":          cfg.IdleTimeout,
		"ShutdownTimeout":      cfg.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	for name, n := range map[string]int{
		"BookingCacheSize":      cfg.BookingCacheSize,
		"UserBookingsCacheSize": cfg.UserBookingsCacheSize,
		"AvailabilityCacheSize": cfg.AvailabilityCacheSize,
		"ClientRateLimitRPS":    cfg.ClientRateLimitRPS,
		"ClientRateLimitBurst":  cfg.ClientRateLimitBurst,
		"MaxRequestSize":        cfg.MaxRequestSize,
	} {
		if n <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %d", name, n))
		}
	}

	if cfg.EventsEnabled && cfg.EventsTopic == "" {
		errs = append(errs, "EventsTopic cannot be empty when events are enabled")
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"admission_queue_capacity", cfg.AdmissionQueueCapacity,
		"admission_queue_wait", cfg.AdmissionQueueWait,
		"admission_permits", cfg.AdmissionPermits,
		"admission_permit_wait", cfg.AdmissionPermitWait,
		"admission_workers", cfg.AdmissionWorkers,
		"booking_cache_ttl", cfg.BookingCacheTTL,
		"booking_cache_size", cfg.BookingCacheSize,
		"user_bookings_cache_ttl", cfg.UserBookingsCacheTTL,
		"user_bookings_cache_size", cfg.UserBookingsCacheSize,
		"availability_cache_ttl", cfg.AvailabilityCacheTTL,
		"availability_cache_size", cfg.AvailabilityCacheSize,
		"cache_sweep_interval", cfg.CacheSweepInterval,
		"room_lock_ttl", cfg.RoomLockTTL,
		"client_rate_limit_rps", cfg.ClientRateLimitRPS,
		"client_rate_limit_burst", cfg.ClientRateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"events_enabled", cfg.EventsEnabled,
		"events_topic", cfg.EventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}
