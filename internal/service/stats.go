package service

import (
	"context"

	"github.com/and161185/debtdesk/internal/cache"
	"github.com/and161185/debtdesk/internal/model"
	"github.com/and161185/debtdesk/internal/transport"
)

// Stats reads server-computed aggregates. Read-only.
type Stats struct {
	api   *transport.Client
	cache *cache.Store
}

// NewStats constructs the statistics service.
func NewStats(api *transport.Client, store *cache.Store) *Stats {
	return &Stats{api: api, cache: store}
}

// Monthly returns per-month expected debt, realized income and remaining debt.
func (s *Stats) Monthly(ctx context.Context) ([]model.MonthlyStatistic, error) {
	return cache.Get(ctx, s.cache, statsMonthlyKey,
		func(ctx context.Context) ([]model.MonthlyStatistic, error) {
			return transport.Get[[]model.MonthlyStatistic](ctx, s.api, "/statistics/monthly")
		})
}
