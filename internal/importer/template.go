package importer

import (
	"encoding/csv"
	"io"

	"github.com/xuri/excelize/v2"

	"storefront-admin-service/internal/models"
)

// TemplateColumns returns the column definitions for the product import
// file. The header names are exactly what the row mapper reads back, so
// a downloaded template always round-trips through the import.
func TemplateColumns() []models.ImportTemplateColumn {
	return []models.ImportTemplateColumn{
		{Name: "name", Description: "Product name", Required: true, Type: "string", Example: "Blue Cotton T-Shirt"},
		{Name: "sku", Description: "Unique product SKU", Required: false, Type: "string", Example: "TSH-BLU-001"},
		{Name: "regular_price", Description: "Regular price, decimal as text", Required: false, Type: "number", Example: "29.99"},
		{Name: "sale_price", Description: "Sale price, decimal as text", Required: false, Type: "number", Example: "19.99"},
		{Name: "stock_status", Description: "One of instock, outofstock, onbackorder", Required: false, Type: "string", Example: "instock"},
		{Name: "manage_stock", Description: "true to track stock quantity", Required: false, Type: "boolean", Example: "true"},
		{Name: "stock_quantity", Description: "Stock quantity when managed", Required: false, Type: "number", Example: "12"},
		{Name: "status", Description: "publish or draft", Required: false, Type: "string", Example: "draft"},
		{Name: "description", Description: "Long description; pipe-separated lines become a list", Required: false, Type: "string", Example: "Fast|Durable|Cheap"},
		{Name: "short_description", Description: "Short description; same pipe convention", Required: false, Type: "string", Example: "Simple text"},
		{Name: "Attribute 1 name", Description: "Display name of the first attribute", Required: false, Type: "string", Example: "Color"},
		{Name: "Attribute 1 values", Description: "Pipe-separated attribute options", Required: false, Type: "string", Example: "Red | Blue | Green"},
		{Name: "Attribute 2 name", Description: "Display name of the second attribute", Required: false, Type: "string", Example: ""},
		{Name: "Attribute 2 values", Description: "Pipe-separated attribute options", Required: false, Type: "string", Example: ""},
	}
}

// Template returns the template definition for products.
func Template() models.ImportTemplate {
	return models.ImportTemplate{
		Entity:  "products",
		Version: "1.0",
		Columns: TemplateColumns(),
	}
}

// WriteCSVTemplate writes the header-only CSV template.
func WriteCSVTemplate(w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	columns := TemplateColumns()
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	if err := writer.Write(headers); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSXTemplate writes an Excel template with a styled header row
// and an Instructions sheet describing each column.
func WriteXLSXTemplate(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Products"
	f.SetSheetName("Sheet1", sheetName)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	requiredStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"C65911"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	columns := TemplateColumns()
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col.Name)
		if col.Required {
			f.SetCellStyle(sheetName, cell, cell, requiredStyle)
		} else {
			f.SetCellStyle(sheetName, cell, cell, headerStyle)
		}
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 20)
	}

	f.NewSheet("Instructions")
	f.SetCellValue("Instructions", "A1", "Product Import Instructions")
	f.SetCellValue("Instructions", "A3", "Descriptions support a pipe convention: \"Fast|Durable|Cheap\" becomes a bullet list, a single value becomes a paragraph.")
	f.SetCellValue("Instructions", "A4", "Attribute columns come in pairs: \"Attribute N name\" holds the display name, \"Attribute N values\" a pipe-separated option list.")
	f.SetCellValue("Instructions", "A5", "Rows without a name are skipped and counted as failures.")

	f.SetCellValue("Instructions", "A7", "Column")
	f.SetCellValue("Instructions", "B7", "Description")
	f.SetCellValue("Instructions", "C7", "Required")
	f.SetCellValue("Instructions", "D7", "Example")
	for i, col := range columns {
		row := i + 8
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellB, _ := excelize.CoordinatesToCellName(2, row)
		cellC, _ := excelize.CoordinatesToCellName(3, row)
		cellD, _ := excelize.CoordinatesToCellName(4, row)
		f.SetCellValue("Instructions", cellA, col.Name)
		f.SetCellValue("Instructions", cellB, col.Description)
		required := "Optional"
		if col.Required {
			required = "Required"
		}
		f.SetCellValue("Instructions", cellC, required)
		f.SetCellValue("Instructions", cellD, col.Example)
	}
	f.SetColWidth("Instructions", "A", "A", 25)
	f.SetColWidth("Instructions", "B", "B", 70)
	f.SetColWidth("Instructions", "C", "C", 15)
	f.SetColWidth("Instructions", "D", "D", 30)

	sheetIdx, _ := f.GetSheetIndex(sheetName)
	f.SetActiveSheet(sheetIdx)

	return f.Write(w)
}
