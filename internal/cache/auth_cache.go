package cache

import (
	"context"
	"time"
)

const (
	MaxLoginFailures   = 5
	LoginLockoutWindow = 15 * time.Minute
)

func loginFailureKey(email string) string {
	return "login_failures:" + email
}

// RecordLoginFailure counts a failed sign-in and reports whether the
// account is now locked for LoginLockoutWindow.
func (c *Cache) RecordLoginFailure(ctx context.Context, email string) (bool, error) {
	n, err := c.IncrementRateLimit(ctx, loginFailureKey(email), LoginLockoutWindow)
	if err != nil {
		return false, err
	}
	return n >= MaxLoginFailures, nil
}

func (c *Cache) LoginLocked(ctx context.Context, email string) bool {
	n, err := c.client.Get(ctx, loginFailureKey(email)).Int64()
	if err != nil {
		return false
	}
	return n >= MaxLoginFailures
}

func (c *Cache) ResetLoginFailures(ctx context.Context, email string) {
	c.client.Del(ctx, loginFailureKey(email))
}

// LoginRetryAfter is how long a locked email stays locked.
func (c *Cache) LoginRetryAfter(ctx context.Context, email string) time.Duration {
	return c.TTL(ctx, loginFailureKey(email))
}
