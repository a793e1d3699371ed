package model

// Category groups products in the catalog.
type Category struct {
	ID          int    `json:"categoriaId"`
	Name        string `json:"nombreCategoria"`
	Description string `json:"descripcionCategoria"`
}

// CategoryPayload is the request body for category create and update calls.
type CategoryPayload struct {
	Name        string `json:"nombreCategoria" validate:"required,max=255"`
	Description string `json:"descripcionCategoria" validate:"required"`
}
