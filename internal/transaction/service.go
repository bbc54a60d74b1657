package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	ListTransactions(ctx context.Context, filter ListFilter) ([]*Transaction, error)
	Statistics(ctx context.Context, filter Filter) (Statistics, error)
	// CountByBucket returns the number of transactions per bucket index of scheme.
	// Indexes with no transactions may be absent.
	CountByBucket(ctx context.Context, filter Filter, scheme Scheme) (map[int]int64, error)
	CountByCategory(ctx context.Context, filter Filter) ([]CategoryCount, error)
}

// Cache stores aggregate results keyed by string.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}

type Service struct {
	repo   Repository
	scheme Scheme
	cache  Cache
}

type Option func(*Service)

// WithScheme sets the bar chart bucketing. The default is Hundreds.
func WithScheme(s Scheme) Option {
	return func(svc *Service) { svc.scheme = s }
}

// WithCache enables caching of aggregate results.
func WithCache(c Cache) Option {
	return func(svc *Service) { svc.cache = c }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo, scheme: Hundreds}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Scheme returns the bucketing used for bar charts.
func (s *Service) Scheme() Scheme {
	return s.scheme
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Transaction, error) {
	filter, err := filter.normalize()
	if err != nil {
		return nil, err
	}

	txs, err := s.repo.ListTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	return txs, nil
}

func (s *Service) Statistics(ctx context.Context, filter Filter) (Statistics, error) {
	if err := requireMonth(filter); err != nil {
		return Statistics{}, err
	}

	return cached(ctx, s.cache, "statistics:"+filter.Key(), func(ctx context.Context) (Statistics, error) {
		stats, err := s.repo.Statistics(ctx, filter)
		if err != nil {
			return Statistics{}, fmt.Errorf("computing statistics: %w", err)
		}

		return stats, nil
	})
}

func (s *Service) BarChart(ctx context.Context, filter Filter) ([]Bucket, error) {
	if err := requireMonth(filter); err != nil {
		return nil, err
	}

	key := "bar-chart:" + s.scheme.Name + ":" + filter.Key()

	return cached(ctx, s.cache, key, func(ctx context.Context) ([]Bucket, error) {
		counts, err := s.repo.CountByBucket(ctx, filter, s.scheme)
		if err != nil {
			return nil, fmt.Errorf("counting price buckets: %w", err)
		}

		return s.scheme.Buckets(counts), nil
	})
}

func (s *Service) PieChart(ctx context.Context, filter Filter) ([]CategoryCount, error) {
	if err := requireMonth(filter); err != nil {
		return nil, err
	}

	return cached(ctx, s.cache, "pie-chart:"+filter.Key(), func(ctx context.Context) ([]CategoryCount, error) {
		counts, err := s.repo.CountByCategory(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("counting categories: %w", err)
		}

		sort.Slice(counts, func(i, j int) bool { return counts[i].Category < counts[j].Category })

		if counts == nil {
			counts = []CategoryCount{}
		}

		return counts, nil
	})
}

// Combined computes the three aggregates concurrently. The first failure
// cancels the remaining calls and fails the whole result.
func (s *Service) Combined(ctx context.Context, filter Filter) (*Combined, error) {
	if err := requireMonth(filter); err != nil {
		return nil, err
	}

	var out Combined

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := s.Statistics(gctx, filter)
		out.Statistics = stats

		return err
	})

	g.Go(func() error {
		buckets, err := s.BarChart(gctx, filter)
		out.BarChart = buckets

		return err
	})

	g.Go(func() error {
		categories, err := s.PieChart(gctx, filter)
		out.PieChart = categories

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &out, nil
}

func requireMonth(filter Filter) error {
	if err := filter.validate(); err != nil {
		return err
	}

	if filter.Month == 0 {
		return fmt.Errorf("%w: month is required", ErrInvalidMonth)
	}

	return nil
}

// cached serves key from c when present and stores freshly loaded values.
// Cache failures are logged and never fail the call.
func cached[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	var hit T

	found, err := c.Get(ctx, key, &hit)
	if err != nil {
		slog.WarnContext(ctx, "cache get failed", "key", key, "error", err)
	} else if found {
		return hit, nil
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if err := c.Set(ctx, key, v); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}

	return v, nil
}
