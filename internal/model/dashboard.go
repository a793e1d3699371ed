package model

// TopProduct is one entry of the dashboard best-sellers ranking.
type TopProduct struct {
	ProductID   int    `json:"productoId"`
	ProductName string `json:"nombreProducto"`
	UnitsSold   int    `json:"cantidadVendida"`
}

// Dashboard aggregates the admin landing-page metrics.
type Dashboard struct {
	TotalProducts    int          `json:"totalProductos"`
	TotalActiveUsers int          `json:"totalUsuariosActivos"`
	TotalOrders      int          `json:"totalPedidos"`
	TopSellers       []TopProduct `json:"top5ProductosMasVendidos"`
}
