package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL for message documents; zero keeps them forever
	MessageTTL time.Duration

	// UpsertRetries bounds the optimistic transaction loop for
	// answer merges under concurrent resubmission
	UpsertRetries int
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:           "redis://localhost:6379",
		PoolSize:      10,
		MinIdleConns:  2,
		MessageTTL:    30 * 24 * time.Hour,
		UpsertRetries: 5,
	}
}
