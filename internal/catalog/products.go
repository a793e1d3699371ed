package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"greenthumb/internal/api"
	"greenthumb/internal/model"
)

// ErrDetailMismatch is returned when a product write carries a detail block
// that does not match the product type discriminator.
var ErrDetailMismatch = errors.New("detail block does not match product type")

// ProductQuery selects and pages the product list.
type ProductQuery struct {
	Page       int
	Size       int
	CategoryID int
	Search     string
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	if q.Size > 0 {
		v.Set("size", strconv.Itoa(q.Size))
	}
	if q.CategoryID > 0 {
		v.Set("categoriaId", strconv.Itoa(q.CategoryID))
	}
	if q.Search != "" {
		v.Set("busqueda", q.Search)
	}
	return v
}

// DetailBlock is the tagged type-specific part of a product write. Which
// field must be set is decided by the payload's type discriminator, never by
// inspecting the block shape.
type DetailBlock struct {
	Plant *model.PlantDetails
	Tool  *model.ToolDetails
	Seed  *model.SeedDetails
}

// ImageUpload is an optional image file attached to a product write.
type ImageUpload struct {
	Filename string
	Data     []byte
}

// ProductWrite is the full multipart payload for product create/update.
type ProductWrite struct {
	Payload model.ProductPayload
	Details DetailBlock
	Image   *ImageUpload
}

// ProductService handles product reads and admin writes.
type ProductService interface {
	List(ctx context.Context, query ProductQuery) (*model.Page[model.ProductSummary], error)
	Get(ctx context.Context, id int) (*model.ProductDetail, error)
	Create(ctx context.Context, write ProductWrite) (*model.ProductDetail, error)
	Update(ctx context.Context, id int, write ProductWrite) (*model.ProductDetail, error)
	Delete(ctx context.Context, id int) error
	Types(ctx context.Context) ([]model.ProductType, error)
}

type productService struct {
	client *api.Client
	tokens TokenSource
}

// NewProductService creates a product service.
func NewProductService(client *api.Client, tokens TokenSource) ProductService {
	return &productService{client: client, tokens: tokens}
}

// List returns one page of the product list.
func (s *productService) List(ctx context.Context, query ProductQuery) (*model.Page[model.ProductSummary], error) {
	resp := api.Call[model.Page[model.ProductSummary]](ctx, s.client, api.Request{
		Path:  "/productos",
		Query: query.values(),
	})
	return resp.Payload()
}

// Get returns the full detail view of one product.
func (s *productService) Get(ctx context.Context, id int) (*model.ProductDetail, error) {
	resp := api.Call[model.ProductDetail](ctx, s.client, api.Request{Path: "/productos/" + strconv.Itoa(id)})
	return resp.Payload()
}

// Create adds a product through the multipart endpoint.
func (s *productService) Create(ctx context.Context, write ProductWrite) (*model.ProductDetail, error) {
	form, err := buildProductForm(write)
	if err != nil {
		return nil, err
	}
	resp := api.Call[model.ProductDetail](ctx, s.client, api.Request{
		Method: http.MethodPost,
		Path:   "/productos",
		Form:   form,
		Token:  s.tokens.GetAccessToken(ctx),
	})
	return resp.Payload()
}

// Update replaces a product through the multipart endpoint.
func (s *productService) Update(ctx context.Context, id int, write ProductWrite) (*model.ProductDetail, error) {
	form, err := buildProductForm(write)
	if err != nil {
		return nil, err
	}
	resp := api.Call[model.ProductDetail](ctx, s.client, api.Request{
		Method: http.MethodPut,
		Path:   "/productos/" + strconv.Itoa(id),
		Form:   form,
		Token:  s.tokens.GetAccessToken(ctx),
	})
	return resp.Payload()
}

// Delete soft-deletes a product, recording the admin removal reason.
func (s *productService) Delete(ctx context.Context, id int) error {
	resp := api.Call[struct{}](ctx, s.client, api.Request{
		Method: http.MethodDelete,
		Path:   "/productos/" + strconv.Itoa(id),
		Body:   deleteBody{Reason: deleteReason},
		Token:  s.tokens.GetAccessToken(ctx),
	})
	return resp.Error()
}

// Types lists the product type discriminator values.
func (s *productService) Types(ctx context.Context) ([]model.ProductType, error) {
	resp := api.Call[[]model.ProductType](ctx, s.client, api.Request{Path: "/productos/tipos-producto"})
	if !resp.Ok() {
		return nil, resp.Error()
	}
	if resp.Data == nil {
		return nil, nil
	}
	return *resp.Data, nil
}

// buildProductForm assembles the multipart parts: "producto", the detail
// part named by the type discriminator, and the optional "imagen" file.
func buildProductForm(write ProductWrite) (*api.Form, error) {
	form := (&api.Form{}).AddJSON("producto", write.Payload)

	switch write.Payload.TypeID {
	case model.ProductTypePlant:
		if write.Details.Plant == nil {
			return nil, ErrDetailMismatch
		}
		form.AddJSON("detallesPlanta", write.Details.Plant)
	case model.ProductTypeTool:
		if write.Details.Tool == nil {
			return nil, ErrDetailMismatch
		}
		form.AddJSON("detallesHerramienta", write.Details.Tool)
	case model.ProductTypeSeed:
		if write.Details.Seed == nil {
			return nil, ErrDetailMismatch
		}
		form.AddJSON("detallesSemilla", write.Details.Seed)
	default:
		return nil, ErrDetailMismatch
	}

	if write.Image != nil {
		form.AddFile("imagen", write.Image.Filename, write.Image.Data)
	}
	return form, nil
}
