package travelapi

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Domenick1991/travelbook/internal/domain"
)

// CalculateRefund asks the travel API what cancelling the booking right now
// would return. The policy tiers behind it are owned by the API.
func (c *Client) CalculateRefund(ctx context.Context, bookingID int64) (*domain.RefundCalculation, error) {
	var calc domain.RefundCalculation
	if err := c.post(ctx, fmt.Sprintf("/refunds/calculate/%d", bookingID), nil, &calc); err != nil {
		return nil, err
	}
	return &calc, nil
}

func (c *Client) CreateRefundRequest(ctx context.Context, req domain.RefundRequest) (*domain.Refund, error) {
	var refund domain.Refund
	if err := c.post(ctx, "/refunds/", req, &refund); err != nil {
		return nil, err
	}
	return &refund, nil
}

func (c *Client) GetUserRefunds(ctx context.Context, userID string) ([]domain.Refund, error) {
	var refunds []domain.Refund
	if err := c.get(ctx, "/refunds/user/"+url.PathEscape(userID), &refunds); err != nil {
		return nil, err
	}
	return refunds, nil
}

func (c *Client) GetBookingRefunds(ctx context.Context, bookingID int64) ([]domain.Refund, error) {
	var refunds []domain.Refund
	if err := c.get(ctx, fmt.Sprintf("/refunds/booking/%d", bookingID), &refunds); err != nil {
		return nil, err
	}
	return refunds, nil
}

func (c *Client) GetActivePolicies(ctx context.Context) ([]domain.CancellationPolicy, error) {
	var policies []domain.CancellationPolicy
	if err := c.get(ctx, "/refunds/policies/active", &policies); err != nil {
		return nil, err
	}
	return policies, nil
}
