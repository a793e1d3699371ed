package catalog

import (
	"context"

	"greenthumb/internal/api"
	"greenthumb/internal/model"
)

// LookupService serves the auxiliary catalogs the product form offers as
// dropdowns.
type LookupService interface {
	LightLevels(ctx context.Context) ([]model.LightLevel, error)
	WateringFrequencies(ctx context.Context) ([]model.WateringFrequency, error)
}

type lookupService struct {
	client *api.Client
}

// NewLookupService creates a lookup service.
func NewLookupService(client *api.Client) LookupService {
	return &lookupService{client: client}
}

func (s *lookupService) LightLevels(ctx context.Context) ([]model.LightLevel, error) {
	resp := api.Call[[]model.LightLevel](ctx, s.client, api.Request{Path: "/nivelesluz"})
	if !resp.Ok() {
		return nil, resp.Error()
	}
	if resp.Data == nil {
		return nil, nil
	}
	return *resp.Data, nil
}

func (s *lookupService) WateringFrequencies(ctx context.Context) ([]model.WateringFrequency, error) {
	resp := api.Call[[]model.WateringFrequency](ctx, s.client, api.Request{Path: "/frecuenciasriego"})
	if !resp.Ok() {
		return nil, resp.Error()
	}
	if resp.Data == nil {
		return nil, nil
	}
	return *resp.Data, nil
}
