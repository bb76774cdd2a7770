package probe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/fintrack/internal/core/gate"
)

// RedisProber sends PING over a short-lived client.
type RedisProber struct {
	url      string
	password string
}

// NewRedisProber creates a probe for a redis:// or rediss:// URL.
func NewRedisProber(url, password string) *RedisProber {
	return &RedisProber{url: url, password: password}
}

// Probe implements gate.Prober.
func (p *RedisProber) Probe(ctx context.Context) error {
	opts, err := redis.ParseURL(p.url)
	if err != nil {
		return gate.Misconfigured(fmt.Errorf("invalid redis url: %w", err))
	}
	if p.password != "" {
		opts.Password = p.password
	}
	opts.MaxRetries = -1 // the gate owns retries

	rdb := redis.NewClient(opts)
	defer func() {
		_ = rdb.Close()
	}()

	if err := rdb.Ping(ctx).Err(); err != nil {
		if ClassifyRedis(err) == gate.KindMisconfigured {
			return gate.Misconfigured(err)
		}
		return gate.Transient(err)
	}
	return nil
}

// ClassifyRedis treats network failures and the replies a recovering server
// sends (LOADING, BUSY, MASTERDOWN, ...) as transient. Authentication
// replies and anything else are misconfiguration.
func ClassifyRedis(err error) gate.Kind {
	if err == nil {
		return gate.KindTransient
	}
	if errors.Is(err, gate.ErrMisconfigured) {
		return gate.KindMisconfigured
	}
	if errors.Is(err, gate.ErrTransientUnavailable) ||
		errors.Is(err, redis.ErrPoolTimeout) ||
		gate.IsConnectivityError(err) {
		return gate.KindTransient
	}

	msg := err.Error()
	for _, prefix := range []string{"LOADING", "BUSY", "TRYAGAIN", "MASTERDOWN", "CLUSTERDOWN"} {
		if strings.HasPrefix(msg, prefix) {
			return gate.KindTransient
		}
	}
	return gate.KindMisconfigured
}
