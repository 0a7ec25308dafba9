package constructcycle

import (
	"context"
	"fmt"
)

const (
	orderCreatePath = "/orders/create/"
	myOrdersPath    = "/orders/my-orders/"
	mySalesPath     = "/orders/my-sales/"
)

// orderService implements the OrderService interface
type orderService struct {
	client *Client
}

// Create places an order
func (s *orderService) Create(ctx context.Context, params *CreateOrderParams) (*Order, error) {
	if params == nil {
		params = &CreateOrderParams{}
	}

	var order Order
	if err := s.client.Post(ctx, orderCreatePath, params, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Mine lists the buyer's orders
func (s *orderService) Mine(ctx context.Context) (*Page[OrderSummary], error) {
	var result Page[OrderSummary]
	if err := s.client.Get(ctx, myOrdersPath, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Sales lists the seller's incoming orders
func (s *orderService) Sales(ctx context.Context) (*Page[OrderSummary], error) {
	var result Page[OrderSummary]
	if err := s.client.Get(ctx, mySalesPath, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves a single order
func (s *orderService) Get(ctx context.Context, orderID int64) (*Order, error) {
	var order Order
	if err := s.client.Get(ctx, fmt.Sprintf("/orders/%d/", orderID), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// UpdateStatus moves an order to status. The backend decides which
// transitions are allowed.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status, sellerNote string) (*Order, error) {
	body := map[string]interface{}{
		"status":      status,
		"seller_note": sellerNote,
	}

	var order Order
	if err := s.client.Patch(ctx, fmt.Sprintf("/orders/%d/update-status/", orderID), body, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Cancel cancels a pending order. It posts no body.
func (s *orderService) Cancel(ctx context.Context, orderID int64) (*CancelOrderResponse, error) {
	var result CancelOrderResponse
	if err := s.client.Post(ctx, fmt.Sprintf("/orders/%d/cancel/", orderID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
