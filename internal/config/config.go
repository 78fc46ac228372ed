// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults, Load(ctx) to layer sources.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// BroadcastQueueSize bounds the in-memory broadcast queue.
	BroadcastQueueSize int `koanf:"broadcast_queue_size"`

	// DispatcherCount sets the number of broadcast dispatchers.
	DispatcherCount int `koanf:"dispatcher_count"`

	// ClientBufferSize sets the per-viewer outbound message buffer.
	ClientBufferSize int `koanf:"client_buffer_size"`

	// MaxPayloadBytes caps the size of a mutation request body.
	MaxPayloadBytes int `koanf:"max_payload_bytes"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":9080",
		BroadcastQueueSize: 10_000,
		DispatcherCount:    4,
		ClientBufferSize:   64,
		MaxPayloadBytes:    64 * 1024,
	}
}
