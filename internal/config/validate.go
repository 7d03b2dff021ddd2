package config

import (
	"fmt"
	"os"

	"github.com/zsiec/vtc/pkg/vtc"
)

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("redis config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics config: %w", err)
	}

	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache config: %w", err)
	}

	if err := c.Timecode.Validate(); err != nil {
		return fmt.Errorf("timecode config: %w", err)
	}

	if err := c.Stamp.Validate(); err != nil {
		return fmt.Errorf("stamp config: %w", err)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.HTTP3Port < 1 || s.HTTP3Port > 65535 {
		return fmt.Errorf("invalid HTTP3 port: %d", s.HTTP3Port)
	}

	if s.TLSCertFile == "" {
		return fmt.Errorf("TLS certificate file is required")
	}

	if s.TLSKeyFile == "" {
		return fmt.Errorf("TLS key file is required")
	}

	if _, err := os.Stat(s.TLSCertFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS certificate file not found: %s", s.TLSCertFile)
	}

	if _, err := os.Stat(s.TLSKeyFile); os.IsNotExist(err) {
		return fmt.Errorf("TLS key file not found: %s", s.TLSKeyFile)
	}

	if s.MaxIncomingStreams <= 0 {
		return fmt.Errorf("max_incoming_streams must be positive")
	}

	if s.MaxIncomingUniStreams <= 0 {
		return fmt.Errorf("max_incoming_uni_streams must be positive")
	}

	if s.EnableHTTP {
		if s.HTTPPort < 1 || s.HTTPPort > 65535 {
			return fmt.Errorf("invalid HTTP port: %d", s.HTTPPort)
		}
		if s.HTTPPort == s.HTTP3Port {
			return fmt.Errorf("HTTP and HTTP3 ports must be different")
		}
	}

	if err := s.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	return nil
}

func (r *RateLimitConfig) Validate() error {
	if !r.Enabled {
		return nil
	}

	if r.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}

	if r.Burst <= 0 {
		return fmt.Errorf("burst must be positive")
	}

	return nil
}

func (r *RedisConfig) Validate() error {
	if len(r.Addresses) == 0 {
		return fmt.Errorf("at least one Redis address is required")
	}

	if r.DB < 0 {
		return fmt.Errorf("invalid Redis database number: %d", r.DB)
	}

	if r.MaxRetries < 0 {
		return fmt.Errorf("max_retries cannot be negative")
	}

	if r.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be positive")
	}

	if r.MinIdleConns < 0 {
		return fmt.Errorf("min_idle_conns cannot be negative")
	}

	if r.MinIdleConns > r.PoolSize {
		return fmt.Errorf("min_idle_conns cannot be greater than pool_size")
	}

	return nil
}

func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"panic": true,
		"fatal": true,
		"error": true,
		"warn":  true,
		"info":  true,
		"debug": true,
		"trace": true,
	}

	if !validLevels[l.Level] {
		return fmt.Errorf("invalid log level: %s", l.Level)
	}

	if l.Format != "json" && l.Format != "text" {
		return fmt.Errorf("log format must be 'json' or 'text'")
	}

	if l.Output != "stdout" && l.Output != "stderr" {
		if l.MaxSize <= 0 {
			return fmt.Errorf("max_size must be positive for file output")
		}
		if l.MaxBackups < 0 {
			return fmt.Errorf("max_backups cannot be negative")
		}
		if l.MaxAge < 0 {
			return fmt.Errorf("max_age cannot be negative")
		}
	}

	return nil
}

func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.Port < 1 || m.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", m.Port)
		}

		if m.Path == "" {
			return fmt.Errorf("metrics path cannot be empty")
		}
	}

	return nil
}

func (c *CacheConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	if c.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}

	if c.KeyPrefix == "" {
		return fmt.Errorf("key_prefix cannot be empty")
	}

	return nil
}

func (t *TimecodeConfig) Validate() error {
	if _, err := vtc.ParseRate(t.DefaultRate); err != nil {
		return fmt.Errorf("invalid default_rate %q: %w", t.DefaultRate, err)
	}

	if t.RuntimePrecision < 0 || t.RuntimePrecision > 28 {
		return fmt.Errorf("runtime_precision must be between 0 and 28")
	}

	return nil
}

// Rate resolves DefaultRate.
func (t *TimecodeConfig) Rate() (vtc.Framerate, error) {
	return vtc.ParseRate(t.DefaultRate)
}

func (s *StampConfig) Validate() error {
	if s.ListenAddr == "" {
		return fmt.Errorf("listen_addr cannot be empty")
	}

	if s.ClockRate == 0 {
		return fmt.Errorf("clock_rate must be positive")
	}

	if s.BufferSize < 12 {
		return fmt.Errorf("buffer_size must hold at least an RTP header")
	}

	_, err := s.Start()
	return err
}

// Start resolves the stamping rate and the timecode of the first packet.
func (s *StampConfig) Start() (vtc.Timecode, error) {
	rate, err := vtc.ParseRate(s.Rate)
	if err != nil {
		return vtc.Timecode{}, fmt.Errorf("invalid rate %q: %w", s.Rate, err)
	}

	start, err := vtc.Parse(s.StartTimecode, rate)
	if err != nil {
		return vtc.Timecode{}, fmt.Errorf("invalid start_timecode %q: %w", s.StartTimecode, err)
	}
	return start, nil
}
