package redis

import (
	"time"

	"github.com/Alijeyrad/myvoice_backend/config"
)

// Config holds Redis connection settings
type Config struct {
	Addr     string
	DB       int
	Username string
	Password string

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func positiveOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// FromCentralConfig converts config.RedisConfig, filling unset values with
// defaults.
func FromCentralConfig(c config.RedisConfig) Config {
	return Config{
		Addr:         c.Addr,
		DB:           c.DB,
		Username:     c.Username,
		Password:     c.Password,
		PoolSize:     positiveOr(c.PoolSize, 10),
		MinIdleConns: positiveOr(c.MinIdleConns, 2),
		DialTimeout:  time.Duration(positiveOr(c.DialTimeoutSeconds, 5)) * time.Second,
		ReadTimeout:  time.Duration(positiveOr(c.ReadTimeoutSeconds, 3)) * time.Second,
		WriteTimeout: time.Duration(positiveOr(c.WriteTimeoutSeconds, 3)) * time.Second,
	}
}
