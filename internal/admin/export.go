package admin

import (
	"strconv"

	"github.com/tealeg/xlsx"

	"greenthumb/internal/model"
)

// ExportProductsXLSX writes the given product rows to an xlsx workbook at
// path, one row per product plus a header row.
func ExportProductsXLSX(path string, products []model.ProductSummary) error {
	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Productos")
	if err != nil {
		return err
	}

	header := sheet.AddRow()
	for _, title := range []string{"ID", "Nombre", "Categoría", "Precio", "Stock"} {
		header.AddCell().SetString(title)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetString(strconv.Itoa(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.CategoryName)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetString(strconv.Itoa(p.Stock))
	}

	return wb.Save(path)
}
