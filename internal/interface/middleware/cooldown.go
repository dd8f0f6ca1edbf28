package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lua script: atomic INCR, set PEXPIRE only on the first hit of a window.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// Decision is the result of one counted hit.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Cooldown is a fixed-window counter in Redis. A nil *Cooldown allows
// everything, so callers do not have to care whether Redis is configured.
type Cooldown struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewCooldown returns nil when rdb is nil or the limits are not positive.
func NewCooldown(rdb *redis.Client, limit int, window time.Duration) *Cooldown {
	if rdb == nil || limit <= 0 || window <= 0 {
		return nil
	}
	return &Cooldown{rdb: rdb, limit: limit, window: window}
}

// CommandKey scopes a cooldown to one command and one Discord user.
func CommandKey(command string, userID uint64) string {
	return "cd:" + command + ":user:" + strconv.FormatUint(userID, 10)
}

// Allow counts one hit against key. On a Redis error the hit is allowed and
// the error returned so the caller can log it.
func (c *Cooldown) Allow(ctx context.Context, key string) (Decision, error) {
	if c == nil {
		return Decision{Allowed: true}, nil
	}
	res, err := incrExpireScript.Run(ctx, c.rdb, []string{key}, c.window.Milliseconds()).Result()
	if err != nil {
		return Decision{Allowed: true, Limit: c.limit, Remaining: c.limit}, err
	}
	count := toInt(res)

	ttl, err := c.rdb.PTTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = 0
	}
	d := Decision{
		Allowed:   count <= c.limit,
		Limit:     c.limit,
		Remaining: max(c.limit-count, 0),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d, nil
}

func toInt(v interface{}) int {
	switch x := v.(type) {
	case int64:
		return int(x)
	case int:
		return x
	case string:
		i, _ := strconv.Atoi(x)
		return i
	}
	return 0
}
