package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes one token bucket applied to a public auth
// route, keyed per client IP.  Capacity is the burst size; the bucket
// refills RefillTokens every RefillInterval.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	Prefix         string
	Debug          bool
}

// LoadRouteRateLimit builds the limiter config for a named route.
// Defaults come from the caller; RATE_LIMIT_<NAME>_CAPACITY and
// RATE_LIMIT_<NAME>_REFILL_EVERY override them, and RATE_LIMIT_ENABLED
// / RATE_LIMIT_DEBUG apply globally.  Login ships with 5 requests per
// minute per IP and forgot-password with 3, per the route registration.
func LoadRouteRateLimit(name string, capacity int, refillEvery time.Duration) RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBool("RATE_LIMIT_ENABLED", true),
		Capacity:       envInt("RATE_LIMIT_"+name+"_CAPACITY", capacity),
		RefillTokens:   1,
		RefillInterval: envDur("RATE_LIMIT_"+name+"_REFILL_EVERY", refillEvery),
		TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
		Prefix:         envStr("RATE_LIMIT_PREFIX", "rl:"+name),
		Debug:          envBool("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	if minTTL := 5 * cfg.RefillInterval; cfg.TTL < minTTL {
		cfg.TTL = minTTL
	}
	return cfg
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil {
		return dur
	}
	return d
}
