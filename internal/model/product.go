package model

import "github.com/shopspring/decimal"

// ProductType discriminates which detail block applies to a product.
type ProductType struct {
	ID   int    `json:"tipoProductoId"`
	Name string `json:"nombreTipoProducto"`
}

// Known product type IDs used by the backend.
const (
	ProductTypePlant = 1
	ProductTypeTool  = 2
	ProductTypeSeed  = 3
)

// ProductSummary is the list-view projection of a product.
type ProductSummary struct {
	ID           int             `json:"productoId"`
	Name         string          `json:"nombreProducto"`
	CategoryName string          `json:"categoriaNombre"`
	Price        decimal.Decimal `json:"precioVentaActual"`
	ImageURL     string          `json:"imagenUrlPrincipal"`
	Stock        int             `json:"stockActual"`
}

// ProductImage is one image attached to a product.
type ProductImage struct {
	ID      int    `json:"imagenId"`
	URL     string `json:"urlImagen"`
	AltText string `json:"textoAlternativo"`
}

// CurrentPrice is the sale price in effect for a product.
type CurrentPrice struct {
	Amount decimal.Decimal `json:"precioVenta"`
	Since  string          `json:"fechaInicioVigencia"`
}

// CurrentCost is the purchase cost in effect for a product.
type CurrentCost struct {
	Amount decimal.Decimal `json:"precioCosto"`
	Since  string          `json:"fechaInicioVigencia"`
}

// PlantDetails holds the plant-specific attribute block.
type PlantDetails struct {
	ScientificName    string `json:"nombreCientifico"`
	LightLevel        string `json:"nivelLuzDescripcion"`
	WateringFrequency string `json:"frecuenciaRiegoDescripcion"`
	Poisonous         bool   `json:"esVenenosa"`
	SpecialCare       string `json:"cuidadosEspeciales"`
	Environment       string `json:"tipoAmbiente"`
}

// ToolDetails holds the tool-specific attribute block.
type ToolDetails struct {
	Material            string          `json:"materialPrincipal"`
	Dimensions          string          `json:"dimensiones"`
	WeightKG            decimal.Decimal `json:"pesoKG"`
	RecommendedUse      string          `json:"usoRecomendado"`
	RequiresMaintenance bool            `json:"requiereMantenimiento"`
}

// SeedDetails holds the seed-specific attribute block.
type SeedDetails struct {
	SpeciesVariety  string          `json:"especieVariedad"`
	GerminationDays string          `json:"tiempoGerminacionDias"`
	SowingDepthCM   decimal.Decimal `json:"profundidadSiembraCM"`
	IdealSeason     string          `json:"epocaSiembraIdeal"`
	SowingGuide     string          `json:"instruccionesSiembra"`
}

// ProductDetail is the full product view returned by get-by-id. Exactly one
// of the detail blocks is non-nil, selected by the product type.
type ProductDetail struct {
	ID           int            `json:"productoId"`
	Name         string         `json:"nombreProducto"`
	Description  string         `json:"descripcionGeneral"`
	Stock        int            `json:"stockActual"`
	ReorderPoint int            `json:"puntoDeReorden"`
	Category     Category       `json:"categoria"`
	Type         ProductType    `json:"tipoProducto"`
	CurrentPrice *CurrentPrice  `json:"precioActual,omitempty"`
	CurrentCost  *CurrentCost   `json:"costoActual,omitempty"`
	Images       []ProductImage `json:"imagenes"`
	PlantDetails *PlantDetails  `json:"detallesPlanta,omitempty"`
	ToolDetails  *ToolDetails   `json:"detallesHerramienta,omitempty"`
	SeedDetails  *SeedDetails   `json:"detallesSemilla,omitempty"`
}

// ProductPayload is the "producto" part of a multipart product write.
type ProductPayload struct {
	Name         string          `json:"nombreProducto" validate:"required,max=255"`
	Description  string          `json:"descripcionGeneral" validate:"required"`
	Stock        int             `json:"stockActual" validate:"gte=0"`
	ReorderPoint int             `json:"puntoDeReorden" validate:"gte=0"`
	CategoryID   int             `json:"categoriaId" validate:"required,gt=0"`
	TypeID       int             `json:"tipoProductoId" validate:"required,gt=0"`
	Price        decimal.Decimal `json:"precioVenta"`
	Cost         decimal.Decimal `json:"costo"`
}

// LightLevel is a catalog lookup value for plant light requirements.
type LightLevel struct {
	ID          int    `json:"nivelLuzId"`
	Description string `json:"descripcionNivelLuz"`
}

// WateringFrequency is a catalog lookup value for plant watering cadence.
type WateringFrequency struct {
	ID          int    `json:"frecuenciaRiegoId"`
	Description string `json:"descripcionFrecuenciaRiego"`
}
