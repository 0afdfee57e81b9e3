package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/metrics"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/internal/repository"
	"github.com/carlosedufaraujo/Plataforma-gesta-futuros-black/types"
)

// Store is the external persistence the service reads snapshots from and
// sends mutation intents to. repository.Database implements it.
type Store interface {
	ListPositions(ctx context.Context) ([]types.Position, error)
	GetPosition(ctx context.Context, id string) (types.Position, error)
	CreatePosition(ctx context.Context, p types.Position) error
	UpdatePosition(ctx context.Context, p types.Position) error
	DeletePosition(ctx context.Context, id string) error

	ListOptions(ctx context.Context) ([]types.OptionLeg, error)
	GetOption(ctx context.Context, id string) (types.OptionLeg, error)
	CreateOption(ctx context.Context, o types.OptionLeg) error
	UpdateOption(ctx context.Context, o types.OptionLeg) error
	DeleteOption(ctx context.Context, id string) error

	ListTransactions(ctx context.Context, f types.TransactionFilter) ([]types.Transaction, error)
	CreateTransaction(ctx context.Context, tx types.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}

type BoundaryPolicy struct {
	Timeout     time.Duration
	MaxRetries  uint
	MaxRequests uint32
	Interval    time.Duration
	OpenTimeout time.Duration
}

func DefaultBoundaryPolicy() BoundaryPolicy {
	return BoundaryPolicy{
		Timeout:     5 * time.Second,
		MaxRetries:  3,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		OpenTimeout: 30 * time.Second,
	}
}

// guardedStore wraps every call with a timeout and a circuit breaker. Reads
// are also retried with exponential backoff; writes are attempted once.
type guardedStore struct {
	next    Store
	policy  BoundaryPolicy
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
	log     zerolog.Logger

	// initialInterval is the first backoff delay; tests shorten it.
	initialInterval time.Duration
}

func NewGuardedStore(next Store, policy BoundaryPolicy, m *metrics.Metrics, log zerolog.Logger) Store {
	g := &guardedStore{
		next:            next,
		policy:          policy,
		metrics:         m,
		log:             log,
		initialInterval: 100 * time.Millisecond,
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "store",
		MaxRequests: policy.MaxRequests,
		Interval:    policy.Interval,
		Timeout:     policy.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isPermanent(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
			if m != nil {
				m.BreakerState.Set(float64(to))
			}
		},
	})
	return g
}

// isPermanent reports errors that another attempt cannot fix: missing
// records, invalid input, corrupt rows and an open breaker.
func isPermanent(err error) bool {
	switch {
	case errors.Is(err, repository.ErrPositionNotFound),
		errors.Is(err, repository.ErrOptionNotFound),
		errors.Is(err, repository.ErrTransactionNotFound),
		errors.Is(err, repository.ErrCorruptRecord),
		errors.Is(err, types.ErrInvalidQuantity),
		errors.Is(err, types.ErrInvalidPrice),
		errors.Is(err, types.ErrInvalidDirection),
		errors.Is(err, types.ErrMissingContract),
		errors.Is(err, types.ErrMissingExit),
		errors.Is(err, types.ErrUnknownOptionType),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests),
		errors.Is(err, context.Canceled):
		return true
	}
	return false
}

func (g *guardedStore) call(ctx context.Context, fn func(context.Context) error) error {
	_, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.policy.Timeout)
		defer cancel()
		return nil, fn(callCtx)
	})
	return err
}

func (g *guardedStore) observe(op string, start time.Time, err error) {
	if g.metrics == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	g.metrics.StoreCalls.WithLabelValues(op, result).Inc()
	g.metrics.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func read[T any](ctx context.Context, g *guardedStore, op string, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		if attempt > 1 && g.metrics != nil {
			g.metrics.StoreRetries.WithLabelValues(op).Inc()
		}
		var out T
		err := g.call(ctx, func(c context.Context) error {
			var err error
			out, err = fn(c)
			return err
		})
		if err != nil && isPermanent(err) {
			return out, backoff.Permanent(err)
		}
		if err != nil {
			g.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("store read failed")
		}
		return out, err
	},
		backoff.WithBackOff(g.backOff()),
		backoff.WithMaxTries(g.policy.MaxRetries),
	)
	g.observe(op, start, err)
	return res, err
}

func (g *guardedStore) write(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	err := g.call(ctx, fn)
	g.observe(op, start, err)
	if err != nil {
		g.log.Error().Err(err).Str("op", op).Msg("store write failed")
	}
	return err
}

func (g *guardedStore) backOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.initialInterval
	b.MaxInterval = 2 * time.Second
	return b
}

func (g *guardedStore) ListPositions(ctx context.Context) ([]types.Position, error) {
	return read(ctx, g, "list_positions", g.next.ListPositions)
}

func (g *guardedStore) GetPosition(ctx context.Context, id string) (types.Position, error) {
	return read(ctx, g, "get_position", func(c context.Context) (types.Position, error) {
		return g.next.GetPosition(c, id)
	})
}

func (g *guardedStore) CreatePosition(ctx context.Context, p types.Position) error {
	return g.write(ctx, "create_position", func(c context.Context) error { return g.next.CreatePosition(c, p) })
}

func (g *guardedStore) UpdatePosition(ctx context.Context, p types.Position) error {
	return g.write(ctx, "update_position", func(c context.Context) error { return g.next.UpdatePosition(c, p) })
}

func (g *guardedStore) DeletePosition(ctx context.Context, id string) error {
	return g.write(ctx, "delete_position", func(c context.Context) error { return g.next.DeletePosition(c, id) })
}

func (g *guardedStore) ListOptions(ctx context.Context) ([]types.OptionLeg, error) {
	return read(ctx, g, "list_options", g.next.ListOptions)
}

func (g *guardedStore) GetOption(ctx context.Context, id string) (types.OptionLeg, error) {
	return read(ctx, g, "get_option", func(c context.Context) (types.OptionLeg, error) {
		return g.next.GetOption(c, id)
	})
}

func (g *guardedStore) CreateOption(ctx context.Context, o types.OptionLeg) error {
	return g.write(ctx, "create_option", func(c context.Context) error { return g.next.CreateOption(c, o) })
}

func (g *guardedStore) UpdateOption(ctx context.Context, o types.OptionLeg) error {
	return g.write(ctx, "update_option", func(c context.Context) error { return g.next.UpdateOption(c, o) })
}

func (g *guardedStore) DeleteOption(ctx context.Context, id string) error {
	return g.write(ctx, "delete_option", func(c context.Context) error { return g.next.DeleteOption(c, id) })
}

func (g *guardedStore) ListTransactions(ctx context.Context, f types.TransactionFilter) ([]types.Transaction, error) {
	return read(ctx, g, "list_transactions", func(c context.Context) ([]types.Transaction, error) {
		return g.next.ListTransactions(c, f)
	})
}

func (g *guardedStore) CreateTransaction(ctx context.Context, tx types.Transaction) error {
	return g.write(ctx, "create_transaction", func(c context.Context) error { return g.next.CreateTransaction(c, tx) })
}

func (g *guardedStore) DeleteTransaction(ctx context.Context, id string) error {
	return g.write(ctx, "delete_transaction", func(c context.Context) error { return g.next.DeleteTransaction(c, id) })
}
