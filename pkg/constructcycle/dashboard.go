package constructcycle

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

const (
	buyerStatsPath  = "/auth/buyer-dashboard-stats/"
	sellerStatsPath = "/auth/seller-dashboard-stats/"
)

// DefaultRecentLimit is used when a non-positive limit is given
const DefaultRecentLimit = 5

// dashboardService implements the DashboardService interface. The dashboard
// endpoints wrap their payload in {success, data}; a 2xx with success false
// is returned as an error.
type dashboardService struct {
	client *Client
}

// BuyerStats returns the buyer dashboard counters
func (s *dashboardService) BuyerStats(ctx context.Context) (*BuyerStats, error) {
	var env Envelope[*BuyerStats]
	if err := s.client.Get(ctx, buyerStatsPath, &env); err != nil {
		return nil, err
	}
	stats, err := env.unwrap()
	if err != nil {
		return nil, errors.Wrap(err, "buyer dashboard")
	}
	return stats, nil
}

// SellerStats returns the seller dashboard counters. Buyers get a 403.
func (s *dashboardService) SellerStats(ctx context.Context) (*SellerStats, error) {
	var env Envelope[*SellerStats]
	if err := s.client.Get(ctx, sellerStatsPath, &env); err != nil {
		return nil, err
	}
	stats, err := env.unwrap()
	if err != nil {
		return nil, errors.Wrap(err, "seller dashboard")
	}
	return stats, nil
}

// RecentOrders returns the buyer's latest orders
func (s *dashboardService) RecentOrders(ctx context.Context, limit int) ([]*Order, error) {
	return s.recent(ctx, "/auth/recent-orders/", limit)
}

// RecentSales returns the seller's latest sales
func (s *dashboardService) RecentSales(ctx context.Context, limit int) ([]*Order, error) {
	return s.recent(ctx, "/auth/recent-sales/", limit)
}

func (s *dashboardService) recent(ctx context.Context, path string, limit int) ([]*Order, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	var env Envelope[[]*Order]
	if err := s.client.Get(ctx, fmt.Sprintf("%s?limit=%d", path, limit), &env); err != nil {
		return nil, err
	}
	orders, err := env.unwrap()
	if err != nil {
		return nil, errors.Wrapf(err, "recent %s", path)
	}
	if orders == nil {
		orders = []*Order{}
	}
	return orders, nil
}
