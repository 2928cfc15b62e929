package importer

import (
	"fmt"
	"strconv"
	"strings"

	"storefront-admin-service/internal/models"
)

// Header markers for the attribute column convention. A header that
// contains both "attribute" and "name" designates an attribute-name
// column; the sibling column with "name" replaced by "values" carries a
// pipe-delimited option list.
const (
	attributeMarker = "attribute"
	nameMarker      = "name"
	valuesMarker    = "values"
)

// attributePair is one detected attribute column slot.
type attributePair struct {
	nameColumn   string
	valuesColumn string
}

// Plan is the column-mapping schema derived from a file's header row.
// Headers are matched once here instead of per row, so the row loop is a
// straight field lookup.
type Plan struct {
	attributes []attributePair
}

// BuildPlan inspects the headers and fixes the mapping for the run.
func BuildPlan(headers []string) *Plan {
	plan := &Plan{}
	for _, header := range headers {
		lower := strings.ToLower(header)
		if !strings.Contains(lower, attributeMarker) || !strings.Contains(lower, nameMarker) {
			continue
		}
		idx := strings.Index(lower, nameMarker)
		valuesColumn := header[:idx] + valuesMarker + header[idx+len(nameMarker):]
		plan.attributes = append(plan.attributes, attributePair{
			nameColumn:   header,
			valuesColumn: valuesColumn,
		})
	}
	return plan
}

// MapRow turns one parsed row into a product draft. The draft is
// consumed by a single create call and then discarded.
func (p *Plan) MapRow(row map[string]string) *models.Product {
	product := &models.Product{
		Name:             row["name"],
		SKU:              row["sku"],
		RegularPrice:     row["regular_price"],
		SalePrice:        row["sale_price"],
		StockStatus:      models.StockStatus(row["stock_status"]),
		ManageStock:      row["manage_stock"] == "true",
		Status:           models.ProductStatus(row["status"]),
		Description:      FormatHTML(row["description"]),
		ShortDescription: FormatHTML(row["short_description"]),
	}

	if qty := row["stock_quantity"]; qty != "" {
		if n, err := strconv.Atoi(qty); err == nil {
			product.StockQuantity = &n
		}
	}

	for _, pair := range p.attributes {
		name := row[pair.nameColumn]
		if name == "" {
			continue
		}
		raw := row[pair.valuesColumn]
		if raw == "" {
			continue
		}
		options := strings.Split(raw, "|")
		for i := range options {
			options[i] = strings.TrimSpace(options[i])
		}
		product.Attributes = append(product.Attributes, models.ProductAttribute{
			Name:      name,
			Options:   options,
			Visible:   true,
			Variation: false,
		})
	}

	return product
}

// FormatHTML expands a pipe-delimited free-text value into HTML: more
// than one segment becomes an unordered list, a single segment one
// paragraph, empty input stays empty.
func FormatHTML(text string) string {
	if text == "" {
		return ""
	}
	parts := strings.Split(text, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) == 1 {
		return fmt.Sprintf("<p>%s</p>", parts[0])
	}
	var b strings.Builder
	b.WriteString("<ul>")
	for _, part := range parts {
		b.WriteString("<li>")
		b.WriteString(part)
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}
