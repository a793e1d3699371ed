package catalog

import (
	"context"

	"greenthumb/internal/api"
	"greenthumb/internal/model"
)

// DashboardService serves the authenticated admin metrics endpoint.
type DashboardService interface {
	Metrics(ctx context.Context) (*model.Dashboard, error)
}

type dashboardService struct {
	client *api.Client
	tokens TokenSource
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(client *api.Client, tokens TokenSource) DashboardService {
	return &dashboardService{client: client, tokens: tokens}
}

func (s *dashboardService) Metrics(ctx context.Context) (*model.Dashboard, error) {
	resp := api.Call[model.Dashboard](ctx, s.client, api.Request{
		Path:  "/dashboard/metrics",
		Token: s.tokens.GetAccessToken(ctx),
	})
	return resp.Payload()
}
