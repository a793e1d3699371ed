// Package catalog exposes typed services over the category, product and
// lookup endpoints. Services translate the wrapper's result envelope into
// (value, error) pairs; the error message is the envelope's failure message.
package catalog

import (
	"context"
	"net/http"
	"strconv"

	"greenthumb/internal/api"
	"greenthumb/internal/model"
)

// deleteReason is what admin-initiated deletes record as the removal cause.
// The backend requires it in the DELETE body.
const deleteReason = "Eliminado desde panel de admin"

type deleteBody struct {
	Reason string `json:"motivoBaja"`
}

// TokenSource supplies the bearer token for protected endpoints. An empty
// token means the call goes out unauthenticated and the backend decides.
type TokenSource interface {
	GetAccessToken(ctx context.Context) string
}

// CategoryService handles category reads and admin writes.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Get(ctx context.Context, id int) (*model.Category, error)
	Create(ctx context.Context, payload model.CategoryPayload) (*model.Category, error)
	Update(ctx context.Context, id int, payload model.CategoryPayload) (*model.Category, error)
	Delete(ctx context.Context, id int) error
}

type categoryService struct {
	client *api.Client
	tokens TokenSource
}

// NewCategoryService creates a category service.
func NewCategoryService(client *api.Client, tokens TokenSource) CategoryService {
	return &categoryService{client: client, tokens: tokens}
}

// List returns all categories.
func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	resp := api.Call[[]model.Category](ctx, s.client, api.Request{Path: "/categorias"})
	if !resp.Ok() {
		return nil, resp.Error()
	}
	if resp.Data == nil {
		return nil, nil
	}
	return *resp.Data, nil
}

// Get returns one category by id.
func (s *categoryService) Get(ctx context.Context, id int) (*model.Category, error) {
	resp := api.Call[model.Category](ctx, s.client, api.Request{Path: "/categorias/" + strconv.Itoa(id)})
	return resp.Payload()
}

// Create adds a category.
func (s *categoryService) Create(ctx context.Context, payload model.CategoryPayload) (*model.Category, error) {
	resp := api.Call[model.Category](ctx, s.client, api.Request{
		Method: http.MethodPost,
		Path:   "/categorias",
		Body:   payload,
		Token:  s.tokens.GetAccessToken(ctx),
	})
	return resp.Payload()
}

// Update replaces a category's fields.
func (s *categoryService) Update(ctx context.Context, id int, payload model.CategoryPayload) (*model.Category, error) {
	resp := api.Call[model.Category](ctx, s.client, api.Request{
		Method: http.MethodPut,
		Path:   "/categorias/" + strconv.Itoa(id),
		Body:   payload,
		Token:  s.tokens.GetAccessToken(ctx),
	})
	return resp.Payload()
}

// Delete soft-deletes a category, recording the admin removal reason.
func (s *categoryService) Delete(ctx context.Context, id int) error {
	resp := api.Call[struct{}](ctx, s.client, api.Request{
		Method: http.MethodDelete,
		Path:   "/categorias/" + strconv.Itoa(id),
		Body:   deleteBody{Reason: deleteReason},
		Token:  s.tokens.GetAccessToken(ctx),
	})
	return resp.Error()
}
