package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atriumhq/atrium/internal/config"
	obsmetrics "github.com/atriumhq/atrium/internal/observability/metrics"
)

const (
	keyLoginEmail = "login:email:%s"
	keyLoginIP    = "login:ip:%s"
)

// LoginLimiter throttles login attempts per email and per source IP to
// slow down credential stuffing. Disabled it allows everything.
type LoginLimiter struct {
	enabled bool

	bucket *TokenBucket
	rate   float64
	burst  int

	metrics *obsmetrics.Metrics
}

func NewLoginLimiter(cfg config.Config, bucket *TokenBucket, metrics *obsmetrics.Metrics) *LoginLimiter {
	if !cfg.RateLimitEnabled || bucket == nil {
		return &LoginLimiter{}
	}
	return &LoginLimiter{
		enabled: true,
		bucket:  bucket,
		rate:    cfg.LoginRate,
		burst:   cfg.LoginBurst,
		metrics: metrics,
	}
}

func (l *LoginLimiter) Enabled() bool {
	return l != nil && l.enabled
}

// Allow checks both buckets. A Redis failure fails open so an outage never
// locks everyone out.
func (l *LoginLimiter) Allow(ctx context.Context, email, ip string) (*RateLimitResult, error) {
	if !l.Enabled() {
		return &RateLimitResult{Allowed: true}, nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	ip = strings.TrimSpace(ip)

	if email != "" {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginEmail, email), l.rate, l.burst)
		if err != nil {
			return &RateLimitResult{Allowed: true}, err
		}
		if !res.Allowed {
			l.metrics.RecordRateLimitDenied(ctx, "login", "email")
			return res, nil
		}
	}
	if ip != "" {
		res, err := l.bucket.Allow(ctx, fmt.Sprintf(keyLoginIP, ip), l.rate, l.burst)
		if err != nil {
			return &RateLimitResult{Allowed: true}, err
		}
		if !res.Allowed {
			l.metrics.RecordRateLimitDenied(ctx, "login", "ip")
			return res, nil
		}
	}

	l.metrics.RecordRateLimitAllowed(ctx, "login")
	return &RateLimitResult{Allowed: true}, nil
}

// RetryAfterSeconds rounds the retry hint up for a Retry-After header.
func (r *RateLimitResult) RetryAfterSeconds() int {
	if r == nil || r.RetryAfter <= 0 {
		return 1
	}
	secs := int((r.RetryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
