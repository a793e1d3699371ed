// Package admin holds the state behind the admin console screens: the
// fetched list, the modal with its optional editing target, the submitting
// flag, and the screen-local error slot. Rendering is left to the front end;
// these types are the screen contracts it drives.
package admin

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"greenthumb/internal/catalog"
	"greenthumb/internal/model"
)

// Confirmer asks the operator to confirm a destructive action.
type Confirmer interface {
	Confirm(prompt string) bool
}

// CategoriesScreen drives the category CRUD screen.
type CategoriesScreen struct {
	svc      catalog.CategoryService
	confirm  Confirmer
	validate *validator.Validate
	log      *zap.SugaredLogger

	categories []model.Category
	loading    bool
	modalOpen  bool
	editing    *model.Category
	submitting bool
	err        string
}

// NewCategoriesScreen creates the screen in its unloaded state.
func NewCategoriesScreen(svc catalog.CategoryService, confirm Confirmer, validate *validator.Validate, log *zap.SugaredLogger) *CategoriesScreen {
	return &CategoriesScreen{svc: svc, confirm: confirm, validate: validate, log: log}
}

// Load replaces the full list from the backend.
func (s *CategoriesScreen) Load(ctx context.Context) error {
	s.loading = true
	s.err = ""
	defer func() { s.loading = false }()

	categories, err := s.svc.List(ctx)
	if err != nil {
		s.err = err.Error()
		return err
	}
	s.categories = categories
	return nil
}

// OpenCreate opens the modal in create mode.
func (s *CategoriesScreen) OpenCreate() {
	s.editing = nil
	s.modalOpen = true
}

// OpenEdit opens the modal editing the given category.
func (s *CategoriesScreen) OpenEdit(category model.Category) {
	c := category
	s.editing = &c
	s.modalOpen = true
}

// CloseModal closes the modal and drops the editing target.
func (s *CategoriesScreen) CloseModal() {
	s.modalOpen = false
	s.editing = nil
}

// Submit creates or updates depending on the editing target. On success the
// modal closes and the list reloads; on failure the modal stays open with
// the error in the screen's error slot so the input can be corrected.
func (s *CategoriesScreen) Submit(ctx context.Context, payload model.CategoryPayload) error {
	if err := s.validate.Struct(payload); err != nil {
		s.err = err.Error()
		return err
	}

	s.submitting = true
	s.err = ""
	defer func() { s.submitting = false }()

	var err error
	if s.editing != nil {
		_, err = s.svc.Update(ctx, s.editing.ID, payload)
	} else {
		_, err = s.svc.Create(ctx, payload)
	}
	if err != nil {
		s.err = err.Error()
		return err
	}

	s.CloseModal()
	return s.Load(ctx)
}

// Delete removes a category after interactive confirmation, then reloads.
func (s *CategoriesScreen) Delete(ctx context.Context, id int) error {
	if !s.confirm.Confirm("¿Eliminar esta categoría?") {
		return nil
	}
	s.err = ""
	if err := s.svc.Delete(ctx, id); err != nil {
		s.err = err.Error()
		return err
	}
	return s.Load(ctx)
}

// Categories returns the loaded list.
func (s *CategoriesScreen) Categories() []model.Category { return s.categories }

// Loading reports whether a load is in flight.
func (s *CategoriesScreen) Loading() bool { return s.loading }

// ModalOpen reports whether the form modal is showing.
func (s *CategoriesScreen) ModalOpen() bool { return s.modalOpen }

// Editing returns the modal's editing target; nil means create mode.
func (s *CategoriesScreen) Editing() *model.Category { return s.editing }

// Submitting reports whether a form submission is in flight.
func (s *CategoriesScreen) Submitting() bool { return s.submitting }

// Err returns the screen's error slot; "" when clear.
func (s *CategoriesScreen) Err() string { return s.err }
