// Package cart holds the client-side view of the backend-owned shopping
// cart. Every mutation round-trips through the backend and is followed by a
// full re-fetch; the store never computes a post-mutation cart itself, so
// the displayed cart always equals the last server-confirmed state.
package cart

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"greenthumb/internal/api"
	"greenthumb/internal/model"
)

// ClientIDSource supplies the session identity that scopes cart endpoints.
type ClientIDSource interface {
	AnonymousClientID() string
}

// Store caches the server-confirmed cart items for the active session
// identity. Concurrent mutations are not sequenced: when several
// mutate+refetch pairs overlap, the last refetch to resolve wins.
type Store struct {
	client *api.Client
	ids    ClientIDSource
	log    *zap.SugaredLogger

	items []model.CartItem
}

// NewStore creates an empty cart store.
func NewStore(client *api.Client, ids ClientIDSource, log *zap.SugaredLogger) *Store {
	return &Store{client: client, ids: ids, log: log}
}

// Refresh replaces the cached items with the backend's current cart. On
// failure the previous cache is left in place.
func (s *Store) Refresh(ctx context.Context) error {
	resp := api.Call[[]model.CartItem](ctx, s.client, api.Request{
		Path: "/carrito/" + s.ids.AnonymousClientID(),
	})
	if !resp.Ok() {
		s.log.Warnw("cart fetch failed", "error", resp.Err)
		return resp.Error()
	}
	if resp.Data != nil {
		s.items = *resp.Data
	} else {
		s.items = nil
	}
	return nil
}

// AddItem adds quantity units of a product. The backend merges quantities
// for products already in the cart; the merged result is taken from the
// re-fetch, never guessed locally.
func (s *Store) AddItem(ctx context.Context, productID, quantity int) error {
	q := url.Values{}
	q.Set("productoId", strconv.Itoa(productID))
	q.Set("cantidad", strconv.Itoa(quantity))
	return s.mutate(ctx, api.Request{
		Method: http.MethodPost,
		Path:   "/carrito/" + s.ids.AnonymousClientID() + "/agregar",
		Query:  q,
	})
}

// UpdateQuantity sets the quantity for a product already in the cart. A
// target below 1 is a removal, not an error.
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int) error {
	if quantity < 1 {
		return s.RemoveItem(ctx, productID)
	}
	q := url.Values{}
	q.Set("productoId", strconv.Itoa(productID))
	q.Set("nuevaCantidad", strconv.Itoa(quantity))
	return s.mutate(ctx, api.Request{
		Method: http.MethodPut,
		Path:   "/carrito/" + s.ids.AnonymousClientID() + "/actualizar",
		Query:  q,
	})
}

// RemoveItem deletes a product from the cart.
func (s *Store) RemoveItem(ctx context.Context, productID int) error {
	return s.mutate(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/carrito/" + s.ids.AnonymousClientID() + "/eliminar/" + strconv.Itoa(productID),
	})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/carrito/" + s.ids.AnonymousClientID() + "/vaciar",
	})
}

// Checkout places an order from the current cart and returns the payment
// preference for the payment widget.
func (s *Store) Checkout(ctx context.Context, paymentMethod, notes string) (*model.PaymentPreference, error) {
	clientID, err := strconv.Atoi(s.ids.AnonymousClientID())
	if err != nil {
		// Identifiers minted locally are UUIDs; the backend checkout contract
		// wants its numeric client id, which only seeded/registered clients
		// have.
		clientID = 0
	}
	resp := api.Call[model.PaymentPreference](ctx, s.client, api.Request{
		Method: http.MethodPost,
		Path:   "/carrito/checkout",
		Body: model.CheckoutRequest{
			ClientID:      clientID,
			PaymentMethod: paymentMethod,
			CustomerNotes: notes,
		},
	})
	pref, err := resp.Payload()
	if err != nil {
		s.log.Warnw("checkout failed", "error", err)
		return nil, err
	}
	return pref, nil
}

// Items returns a copy of the last server-confirmed cart.
func (s *Store) Items() []model.CartItem {
	out := make([]model.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// ItemCount is the sum of quantities, recomputed from the cached items so it
// can never drift from them.
func (s *Store) ItemCount() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Total is the sum of price times quantity over the cached items.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// mutate issues one mutation and then unconditionally re-fetches the cart.
// A failed mutation keeps the previous cache; a failed re-fetch after a
// successful mutation surfaces the error but cannot roll the backend back,
// so the cache may be stale until the next successful Refresh.
func (s *Store) mutate(ctx context.Context, req api.Request) error {
	resp := api.Call[model.CartItem](ctx, s.client, req)
	if !resp.Ok() {
		s.log.Warnw("cart mutation failed", "path", req.Path, "error", resp.Err)
		return resp.Error()
	}
	return s.Refresh(ctx)
}
