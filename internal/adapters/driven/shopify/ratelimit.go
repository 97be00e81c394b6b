package shopify

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRequestsPerSecond is the proactive throttle rate per shop.
	DefaultRequestsPerSecond = 2.0

	// MinAvailableCost is the cost buffer kept in the shop's bucket.
	MinAvailableCost = 100.0
)

// throttleStatus mirrors extensions.cost.throttleStatus.
type throttleStatus struct {
	MaximumAvailable   float64 `json:"maximumAvailable"`
	CurrentlyAvailable float64 `json:"currentlyAvailable"`
	RestoreRate        float64 `json:"restoreRate"`
}

// queryCost mirrors extensions.cost.
type queryCost struct {
	RequestedQueryCost float64        `json:"requestedQueryCost"`
	ActualQueryCost    *float64       `json:"actualQueryCost"`
	ThrottleStatus     throttleStatus `json:"throttleStatus"`
}

// RateLimiter combines a proactive token bucket with the cost budget
// reported by the API for one shop.
type RateLimiter struct {
	mu        sync.Mutex
	available float64
	restore   float64
	updatedAt time.Time
	bucket    *rate.Limiter
	minBuffer float64
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second.
func NewRateLimiter(rps float64) *RateLimiter {
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	return &RateLimiter{
		available: -1, // unknown until the first response
		bucket:    rate.NewLimiter(rate.Limit(rps), 1),
		minBuffer: MinAvailableCost,
		now:       time.Now,
	}
}

// Wait blocks until it is safe to send a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	d := r.delay()
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// delay returns how long until the bucket has restored past the buffer.
func (r *RateLimiter) delay() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.available < 0 || r.restore <= 0 {
		return 0
	}
	elapsed := r.now().Sub(r.updatedAt).Seconds()
	current := r.available + elapsed*r.restore
	if current >= r.minBuffer {
		return 0
	}
	return time.Duration((r.minBuffer - current) / r.restore * float64(time.Second))
}

// Update records the throttle status of a response.
func (r *RateLimiter) Update(cost *queryCost) {
	if cost == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.available = cost.ThrottleStatus.CurrentlyAvailable
	r.restore = cost.ThrottleStatus.RestoreRate
	r.updatedAt = r.now()
}

// Available returns the last reported available cost, or -1 if unknown.
func (r *RateLimiter) Available() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.available
}

// limiters holds one RateLimiter per shop.
type limiters struct {
	mu    sync.Mutex
	rps   float64
	shops map[string]*RateLimiter
}

func newLimiters(rps float64) *limiters {
	return &limiters{rps: rps, shops: make(map[string]*RateLimiter)}
}

func (l *limiters) get(shop string) *RateLimiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl, ok := l.shops[shop]
	if !ok {
		rl = NewRateLimiter(l.rps)
		l.shops[shop] = rl
	}
	return rl
}
