package redis

import (
	"testing"
	"time"

	"github.com/Alijeyrad/myvoice_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := FromCentralConfig(config.RedisConfig{Addr: "localhost:6379"})
		if cfg.PoolSize != 10 || cfg.MinIdleConns != 2 {
			t.Errorf("pool = (%d, %d), want (10, 2)", cfg.PoolSize, cfg.MinIdleConns)
		}
		if cfg.DialTimeout != 5*time.Second {
			t.Errorf("DialTimeout = %v, want 5s", cfg.DialTimeout)
		}
		if cfg.ReadTimeout != 3*time.Second || cfg.WriteTimeout != 3*time.Second {
			t.Errorf("read/write timeouts = %v/%v, want 3s", cfg.ReadTimeout, cfg.WriteTimeout)
		}
	})

	t.Run("explicit values win", func(t *testing.T) {
		cfg := FromCentralConfig(config.RedisConfig{
			Addr:               "cache:6379",
			DB:                 3,
			PoolSize:           40,
			ReadTimeoutSeconds: 1,
		})
		if cfg.DB != 3 || cfg.PoolSize != 40 {
			t.Errorf("got DB=%d PoolSize=%d", cfg.DB, cfg.PoolSize)
		}
		if cfg.ReadTimeout != time.Second {
			t.Errorf("ReadTimeout = %v, want 1s", cfg.ReadTimeout)
		}
	})
}

func TestNewRedis_EmptyAddr(t *testing.T) {
	if _, err := NewRedis(Config{}); err == nil {
		t.Fatal("NewRedis() expected error for empty addr")
	}
}
