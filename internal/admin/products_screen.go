package admin

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"greenthumb/internal/catalog"
	"greenthumb/internal/model"
)

// ProductsScreen drives the product CRUD screen. It mirrors the category
// screen but submits multipart payloads and pages its list.
type ProductsScreen struct {
	svc      catalog.ProductService
	confirm  Confirmer
	validate *validator.Validate
	log      *zap.SugaredLogger

	page       *model.Page[model.ProductSummary]
	query      catalog.ProductQuery
	loading    bool
	modalOpen  bool
	editing    *model.ProductDetail
	submitting bool
	err        string
}

// NewProductsScreen creates the screen in its unloaded state.
func NewProductsScreen(svc catalog.ProductService, confirm Confirmer, validate *validator.Validate, log *zap.SugaredLogger) *ProductsScreen {
	return &ProductsScreen{svc: svc, confirm: confirm, validate: validate, log: log, query: catalog.ProductQuery{Size: 20}}
}

// Load fetches the current page of the product list.
func (s *ProductsScreen) Load(ctx context.Context) error {
	s.loading = true
	s.err = ""
	defer func() { s.loading = false }()

	page, err := s.svc.List(ctx, s.query)
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.page = page
	return nil
}

// SetPage moves to another page and reloads.
func (s *ProductsScreen) SetPage(ctx context.Context, page int) error {
	s.query.Page = page
	return s.Load(ctx)
}

// OpenCreate opens the modal in create mode.
func (s *ProductsScreen) OpenCreate() {
	s.editing = nil
	s.modalOpen = true
}

// OpenEdit fetches the full detail view for the product and opens the modal
// editing it. The list view lacks the detail block, so the edit form always
// starts from a fresh detail fetch.
func (s *ProductsScreen) OpenEdit(ctx context.Context, id int) error {
	detail, err := s.svc.Get(ctx, id)
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.editing = detail
	s.modalOpen = true
	return nil
}

// CloseModal closes the modal and drops the editing target.
func (s *ProductsScreen) CloseModal() {
	s.modalOpen = false
	s.editing = nil
}

// Submit validates the structured payload and creates or updates depending
// on the editing target. Success closes the modal and reloads; failure
// leaves the modal open with the error slot set.
func (s *ProductsScreen) Submit(ctx context.Context, write catalog.ProductWrite) error {
	if err := s.validate.Struct(write.Payload); err != nil {
		s.err = err.Error()
		return err
	}

	s.submitting = true
	s.err = ""
	defer func() { s.submitting = false }()

	var err error
	if s.editing != nil {
		_, err = s.svc.Update(ctx, s.editing.ID, write)
	} else {
		_, err = s.svc.Create(ctx, write)
	}
	if err != nil {
		s.err = err.Error()
		return err
	}

	s.CloseModal()
	return s.Load(ctx)
}

// Delete removes a product after interactive confirmation, then reloads.
func (s *ProductsScreen) Delete(ctx context.Context, id int) error {
	if !s.confirm.Confirm("¿Eliminar este producto?") {
		return nil
	}
	s.err = ""
	if err := s.svc.Delete(ctx, id); err != nil {
		s.err = err.Error()
		return err
	}
	return s.Load(ctx)
}

// Products returns the current page's rows; nil before the first load.
func (s *ProductsScreen) Products() []model.ProductSummary {
	if s.page == nil {
		return nil
	}
	return s.page.Content
}

// Page returns the full pagination envelope of the last load.
func (s *ProductsScreen) Page() *model.Page[model.ProductSummary] { return s.page }

// Loading reports whether a load is in flight.
func (s *ProductsScreen) Loading() bool { return s.loading }

// ModalOpen reports whether the form modal is showing.
func (s *ProductsScreen) ModalOpen() bool { return s.modalOpen }

// Editing returns the modal's editing target; nil means create mode.
func (s *ProductsScreen) Editing() *model.ProductDetail { return s.editing }

// Submitting reports whether a form submission is in flight.
func (s *ProductsScreen) Submitting() bool { return s.submitting }

// Err returns the screen's error slot; "" when clear.
func (s *ProductsScreen) Err() string { return s.err }
