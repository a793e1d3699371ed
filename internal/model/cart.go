package model

import "github.com/shopspring/decimal"

// CartItem is one line of the backend-owned cart.
type CartItem struct {
	ProductID   int             `json:"productoId"`
	ProductName string          `json:"nombreProducto"`
	Quantity    int             `json:"cantidad"`
	UnitPrice   decimal.Decimal `json:"precioUnitario"`
	ImageURL    string          `json:"imagenProductoUrl"`
}

// CheckoutRequest starts an order from the current cart.
type CheckoutRequest struct {
	ClientID      int    `json:"clienteId"`
	PaymentMethod string `json:"metodoPago"`
	CustomerNotes string `json:"notasCliente,omitempty"`
}

// PaymentPreference identifies the payment-widget session created at checkout.
type PaymentPreference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"initPoint,omitempty"`
	SandboxInitPoint string `json:"sandboxInitPoint,omitempty"`
}
