package cache

import (
	"context"
	"time"
)

// Noop satisfies Cacher when no redis address is configured; every lookup is
// a miss and writes are dropped.
type Noop struct{}

func (Noop) Get(ctx context.Context, key string) (string, bool, error) { return "", false, nil }

func (Noop) Set(ctx context.Context, key, val string, ttl time.Duration) error { return nil }

func (Noop) Delete(ctx context.Context, key string) error { return nil }

func (Noop) Ping(ctx context.Context) error { return nil }

func (Noop) Close() error { return nil }
