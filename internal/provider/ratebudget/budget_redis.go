package ratebudget

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"kycgate/pkg/platform/circuit"
)

var (
	reservedSlots = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kycgate_provider_budget_slots_total",
		Help: "Provider budget slots requested and granted",
	}, []string{"result"}) // result: "granted", "denied"

	budgetFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kycgate_provider_budget_fallbacks_total",
		Help: "Reservations served by the local budget because Redis failed",
	})
)

const budgetKeyPrefix = "kyc:provider_budget:"

// RedisBudget is a fixed window counter shared through Redis, so the limit
// holds across every process using the same provider account.
type RedisBudget struct {
	client   *redis.Client
	limit    int
	window   time.Duration
	fallback *LocalBudget
	breaker  *circuit.Breaker
	logger   *slog.Logger
	now      func() time.Time
}

type RedisOption func(*RedisBudget)

func WithLogger(logger *slog.Logger) RedisOption {
	return func(b *RedisBudget) {
		b.logger = logger
	}
}

func NewRedis(client *redis.Client, limit int, window time.Duration, opts ...RedisOption) *RedisBudget {
	b := &RedisBudget{
		client:   client,
		limit:    limit,
		window:   window,
		fallback: NewLocal(limit, window),
		breaker:  circuit.New("provider_budget"),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// WithBreaker replaces the default circuit breaker around Redis.
func WithBreaker(cb *circuit.Breaker) RedisOption {
	return func(b *RedisBudget) {
		b.breaker = cb
	}
}

// Reserve grants up to n slots in the current window. When Redis is
// unreachable the local budget answers instead of stalling the batch. While
// the circuit recovers, a grant must fit both windows.
func (b *RedisBudget) Reserve(ctx context.Context, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	granted, err := b.reserve(ctx, n)
	if err != nil {
		budgetFallbacks.Inc()
		if _, change := b.breaker.RecordFailure(); change.Opened {
			b.logger.WarnContext(ctx, "provider budget circuit opened, using local window", "error", err)
		} else {
			b.logger.DebugContext(ctx, "provider budget unavailable, using local window", "error", err)
		}
		granted, err = b.fallback.Reserve(ctx, n)
	} else {
		usePrimary, change := b.breaker.RecordSuccess()
		if change.Closed {
			b.logger.InfoContext(ctx, "provider budget circuit closed")
		}
		if !usePrimary {
			granted, err = b.fallback.Reserve(ctx, granted)
		}
	}
	if err == nil {
		reservedSlots.WithLabelValues("granted").Add(float64(granted))
		reservedSlots.WithLabelValues("denied").Add(float64(n - granted))
	}
	return granted, err
}

func (b *RedisBudget) reserve(ctx context.Context, n int) (int, error) {
	key := b.key(b.now())

	var incr *redis.IntCmd
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.IncrBy(ctx, key, int64(n))
		pipe.ExpireNX(ctx, key, 2*b.window)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("reserve provider budget: %w", err)
	}

	before := int(incr.Val()) - n
	granted := max(0, min(n, b.limit-before))
	if excess := n - granted; excess > 0 {
		if err := b.client.DecrBy(ctx, key, int64(excess)).Err(); err != nil {
			// the window expires anyway; an unreturned excess only shrinks this window
			b.logger.WarnContext(ctx, "failed to return unused provider budget", "error", err)
		}
	}
	return granted, nil
}

func (b *RedisBudget) key(now time.Time) string {
	slot := now.UnixNano() / int64(b.window)
	return budgetKeyPrefix + strconv.FormatInt(slot, 10)
}
