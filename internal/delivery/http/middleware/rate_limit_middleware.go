package middleware

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"marketplace-booking/pkg/response"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var fixedWindowScript = redis.NewScript(`
	local current = redis.call('INCR', KEYS[1])
	if current == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return current
`)

// RateLimiter is a fixed-window limiter shared by all instances through Redis.
// It fails open: a Redis outage must not take the public slot search down.
type RateLimiter struct {
	redisClient *redis.Client
	log         *logrus.Logger
	limit       int
	window      time.Duration
	prefix      string
	trusted     []netip.Prefix
}

// NewRateLimiter builds a limiter keyed by client address. trustedProxies
// holds addresses or CIDRs; X-Forwarded-For is only read when the peer is
// one of them. Unparsable entries are logged and skipped.
func NewRateLimiter(redisClient *redis.Client, log *logrus.Logger, limit int, window time.Duration, prefix string, trustedProxies []string) *RateLimiter {
	if limit <= 0 {
		limit = 120
	}
	if window <= 0 {
		window = time.Minute
	}
	if prefix == "" {
		prefix = "rl"
	}
	l := &RateLimiter{redisClient: redisClient, log: log, limit: limit, window: window, prefix: prefix}
	for _, entry := range trustedProxies {
		p, err := parsePrefix(entry)
		if err != nil {
			log.Warnf("Ignoring trusted proxy %q: %+v", entry, err)
			continue
		}
		l.trusted = append(l.trusted, p)
	}
	return l
}

func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := l.prefix + ":" + l.clientIP(r)
		count, err := l.incr(r.Context(), key)
		if err != nil {
			l.log.Warnf("Rate limiter unavailable, letting request through: %+v", err)
			next.ServeHTTP(w, r)
			return
		}
		if count > int64(l.limit) {
			w.Header().Set("Retry-After", l.retryAfter())
			response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) incr(ctx context.Context, key string) (int64, error) {
	return fixedWindowScript.Run(ctx, l.redisClient, []string{key}, l.window.Milliseconds()).Int64()
}

func (l *RateLimiter) retryAfter() string {
	secs := int(l.window / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// clientIP is the peer address, or, when the peer is a trusted proxy, the
// right-most X-Forwarded-For hop that is not itself a trusted proxy. Hops
// left of that were written by the caller and cannot be believed.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r)
	if !l.isTrusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if !l.isTrusted(hop) {
			return hop
		}
	}
	return peer
}

func (l *RateLimiter) isTrusted(host string) bool {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range l.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parsePrefix(entry string) (netip.Prefix, error) {
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		return p.Masked(), err
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, err
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}
