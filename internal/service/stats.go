package service

import (
	"context"
	"log/slog"
	"time"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/internal/auth"
	"foodMarketplace/internal/lifecycle"
	"foodMarketplace/models"
	"foodMarketplace/repository"
)

// StatsService derives restaurant statistics from raw order rows. It is
// stateless and recomputes on every call; there is deliberately no
// cache because nothing invalidates one.
type StatsService struct {
	stats       *repository.StatsRepository
	restaurants *repository.RestaurantRepository
	log         *slog.Logger
	dailyDays   int
}

func NewStatsService(stats *repository.StatsRepository, restaurants *repository.RestaurantRepository,
	log *slog.Logger, dailyDays int) *StatsService {
	if log == nil {
		log = slog.Default()
	}
	if dailyDays <= 0 {
		dailyDays = 7
	}
	return &StatsService{stats: stats, restaurants: restaurants, log: log, dailyDays: dailyDays}
}

// RestaurantStats computes the dashboard summary for a restaurant as of
// the given instant. asOf is explicit so callers (and tests) control
// the clock; the windows are the asOf calendar month and year plus a
// trailing daily window.
func (s *StatsService) RestaurantStats(ctx context.Context, actor *auth.Actor, restaurantID int64, asOf time.Time) (*models.RestaurantStats, error) {
	if actor == nil || actor.ID == 0 {
		return nil, apperr.NotAuthenticated()
	}
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, s.internal(err, "get restaurant")
	}
	if restaurant == nil {
		return nil, apperr.NotFound("restaurant")
	}
	res := auth.Resource{Restaurant: restaurant}
	if err := auth.CanAct(actor, res, auth.Request{Action: auth.ActionViewStats}); err != nil {
		return nil, err
	}

	asOf = asOf.UTC()
	monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	dayEnd := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	dailyFrom := dayEnd.AddDate(0, 0, -s.dailyDays)

	byStatus, err := s.stats.CountOrdersByStatus(ctx, restaurantID)
	if err != nil {
		return nil, s.internal(err, "count orders by status")
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}

	monthly, err := s.stats.CountOrdersSince(ctx, restaurantID, stamp(monthStart))
	if err != nil {
		return nil, s.internal(err, "count monthly orders")
	}
	yearly, err := s.stats.CountOrdersSince(ctx, restaurantID, stamp(yearStart))
	if err != nil {
		return nil, s.internal(err, "count yearly orders")
	}
	monthlyRevenue, err := s.stats.RevenueSince(ctx, restaurantID, stamp(monthStart))
	if err != nil {
		return nil, s.internal(err, "sum monthly revenue")
	}
	yearlyRevenue, err := s.stats.RevenueSince(ctx, restaurantID, stamp(yearStart))
	if err != nil {
		return nil, s.internal(err, "sum yearly revenue")
	}
	daily, err := s.stats.DailyOrders(ctx, restaurantID, stamp(dailyFrom), stamp(dayEnd))
	if err != nil {
		return nil, s.internal(err, "daily orders")
	}
	popular, err := s.stats.PopularItems(ctx, restaurantID, 5)
	if err != nil {
		return nil, s.internal(err, "popular items")
	}

	// Empty aggregations serialize as [] / 0, never null.
	if daily == nil {
		daily = []models.DailyStat{}
	}
	if popular == nil {
		popular = []models.PopularItem{}
	}

	return &models.RestaurantStats{
		RestaurantID: restaurantID,
		Orders: models.OrderCounts{
			Total:     total,
			Pending:   byStatus[models.OrderStatusPending],
			Completed: byStatus[models.OrderStatusDelivered],
			Cancelled: byStatus[models.OrderStatusCancelled],
			Monthly:   monthly,
			Yearly:    yearly,
		},
		Revenue: models.RevenueSummary{
			Monthly: models.Round2(monthlyRevenue),
			Yearly:  models.Round2(yearlyRevenue),
		},
		DailyOrders:  daily,
		PopularItems: popular,
	}, nil
}

func (s *StatsService) internal(err error, op string) error {
	s.log.Error(op, "err", err)
	return apperr.Internal(err)
}

func stamp(t time.Time) string {
	return t.UTC().Format(lifecycle.TimeFormat)
}
