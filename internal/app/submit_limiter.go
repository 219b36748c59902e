package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultSubmitLimitPrefix = "poly:submit_limit"
	minSubmitWindow          = time.Second
)

// submitWindowScript counts one attempt and returns {attempts, milliseconds left in the window}.
var submitWindowScript = redis.NewScript(`
local attempts = redis.call("INCR", KEYS[1])
if attempts == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {attempts, redis.call("PTTL", KEYS[1])}
`)

// SubmitLimiter caps registration attempts per wizard session. The window lives in
// Redis so every instance of the service shares it.
type SubmitLimiter struct {
	client redis.Scripter
	prefix string
	limit  int
	window time.Duration
}

// NewSubmitLimiter allows limit attempts per window. A nil client or a non-positive
// limit disables limiting.
func NewSubmitLimiter(client redis.Scripter, prefix string, limit int, window time.Duration) *SubmitLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultSubmitLimitPrefix
	}
	if window < minSubmitWindow {
		window = minSubmitWindow
	}
	return &SubmitLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// AllowSubmit records an attempt for the session. When the session is over its limit
// it reports how many seconds remain until the window resets.
func (l *SubmitLimiter) AllowSubmit(ctx context.Context, sessionID string) (allowed bool, retryAfter int, err error) {
	sessionID = strings.TrimSpace(sessionID)
	if l == nil || l.client == nil || l.limit <= 0 || sessionID == "" {
		return true, 0, nil
	}

	raw, err := submitWindowScript.Run(ctx, l.client, []string{l.key(sessionID)}, l.window.Milliseconds()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count submit attempt: %w", err)
	}
	attempts, remaining, err := parseWindowResult(raw, l.window)
	if err != nil {
		return false, 0, err
	}
	if attempts <= int64(l.limit) {
		return true, 0, nil
	}
	return false, retryAfterSeconds(remaining), nil
}

func (l *SubmitLimiter) key(sessionID string) string {
	return l.prefix + ":" + sessionID
}

// parseWindowResult reads the script reply. A key without a TTL counts as a full window.
func parseWindowResult(raw interface{}, window time.Duration) (attempts int64, remaining time.Duration, err error) {
	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected submit limiter reply: %v", raw)
	}
	attempts, ok = values[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected submit limiter count: %T", values[0])
	}
	ttl, ok := values[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected submit limiter ttl: %T", values[1])
	}
	if ttl < 0 {
		return attempts, window, nil
	}
	return attempts, time.Duration(ttl) * time.Millisecond, nil
}

// retryAfterSeconds rounds up and never goes below one second.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
