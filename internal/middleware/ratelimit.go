package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// clientIdleTTL is how long a client's bucket survives without requests.
const clientIdleTTL = 10 * time.Minute

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// clientLimiter keeps one token bucket per client IP.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// allow takes one token for ip. When none is available it returns false and
// how long the client should wait.
func (cl *clientLimiter) allow(ip string) (bool, time.Duration) {
	cl.mu.Lock()
	now := cl.now()
	b, ok := cl.clients[ip]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(cl.limit, cl.burst)}
		cl.clients[ip] = b
	}
	b.lastSeen = now
	cl.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// evictIdle drops buckets not used within clientIdleTTL.
func (cl *clientLimiter) evictIdle() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cutoff := cl.now().Add(-clientIdleTTL)
	for ip, b := range cl.clients {
		if b.lastSeen.Before(cutoff) {
			delete(cl.clients, ip)
		}
	}
}

func (cl *clientLimiter) janitor(done <-chan struct{}) {
	ticker := time.NewTicker(clientIdleTTL)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			cl.evictIdle()
		}
	}
}

// RateLimit returns middleware that limits requests per client IP.
// rps is the allowed requests per second, burst is the maximum burst size.
// Rejected requests get 429 with a Retry-After header. The janitor goroutine
// stops when done is closed; a nil done never stops.
func RateLimit(rps float64, burst int, done <-chan struct{}) func(http.Handler) http.Handler {
	cl := newClientLimiter(rps, burst)
	go cl.janitor(done)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := cl.allow(clientIP(r))
			if !ok {
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				writeError(w, http.StatusTooManyRequests, "Too Many Attempts.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
