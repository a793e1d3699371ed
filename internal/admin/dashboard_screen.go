package admin

import (
	"context"

	"greenthumb/internal/catalog"
	"greenthumb/internal/model"
)

// DashboardScreen drives the admin landing page metrics.
type DashboardScreen struct {
	svc catalog.DashboardService

	metrics *model.Dashboard
	loading bool
	err     string
}

// NewDashboardScreen creates the screen in its unloaded state.
func NewDashboardScreen(svc catalog.DashboardService) *DashboardScreen {
	return &DashboardScreen{svc: svc}
}

// Load fetches the metrics.
func (s *DashboardScreen) Load(ctx context.Context) error {
	s.loading = true
	s.err = ""
	defer func() { s.loading = false }()

	metrics, err := s.svc.Metrics(ctx)
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.metrics = metrics
	return nil
}

// Metrics returns the last loaded metrics; nil before the first load.
func (s *DashboardScreen) Metrics() *model.Dashboard { return s.metrics }

// Loading reports whether a load is in flight.
func (s *DashboardScreen) Loading() bool { return s.loading }

// Err returns the screen's error slot; "" when clear.
func (s *DashboardScreen) Err() string { return s.err }
