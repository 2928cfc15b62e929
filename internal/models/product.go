package models

// StockStatus is the stock state the storefront API accepts on a product
type StockStatus string

const (
	StockStatusInStock     StockStatus = "instock"
	StockStatusOutOfStock  StockStatus = "outofstock"
	StockStatusOnBackorder StockStatus = "onbackorder"
)

// ProductStatus is the publish state of a product
type ProductStatus string

const (
	ProductStatusPublish ProductStatus = "publish"
	ProductStatusDraft   ProductStatus = "draft"
)

// ProductImage references an uploaded media item attached to a product.
// Src must be a public URL, which means the file has to go through the
// media upload endpoint first.
type ProductImage struct {
	ID  int64  `json:"id,omitempty"`
	Src string `json:"src"`
	Alt string `json:"alt,omitempty"`
}

// ProductCategoryRef links a product to a category by ID
type ProductCategoryRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
}

// ProductAttribute is an attribute assignment on a product, e.g.
// {name: "Color", options: ["Red", "Blue"]}
type ProductAttribute struct {
	ID        int64    `json:"id,omitempty"`
	Name      string   `json:"name"`
	Position  int      `json:"position,omitempty"`
	Visible   bool     `json:"visible"`
	Variation bool     `json:"variation"`
	Options   []string `json:"options"`
}

// Product mirrors the storefront REST API product payload. Prices travel
// as decimal strings, never floats, because that is what the API returns
// and expects.
type Product struct {
	ID               int64                `json:"id,omitempty"`
	Name             string               `json:"name"`
	SKU              string               `json:"sku,omitempty"`
	RegularPrice     string               `json:"regular_price,omitempty"`
	SalePrice        string               `json:"sale_price,omitempty"`
	StockStatus      StockStatus          `json:"stock_status,omitempty"`
	ManageStock      bool                 `json:"manage_stock"`
	StockQuantity    *int                 `json:"stock_quantity,omitempty"`
	Status           ProductStatus        `json:"status,omitempty"`
	Description      string               `json:"description,omitempty"`
	ShortDescription string               `json:"short_description,omitempty"`
	Images           []ProductImage       `json:"images,omitempty"`
	Categories       []ProductCategoryRef `json:"categories,omitempty"`
	Brands           []ProductCategoryRef `json:"brands,omitempty"`
	Attributes       []ProductAttribute   `json:"attributes,omitempty"`
}

// ProductList is one page of products plus the totals the API reports in
// the X-WP-Total / X-WP-TotalPages response headers.
type ProductList struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	TotalPages int       `json:"totalPages"`
}

// Category is a product category from the taxonomy endpoints
type Category struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Parent int64  `json:"parent,omitempty"`
	Count  int    `json:"count,omitempty"`
}

// Attribute is a global product attribute (e.g. brand, color, size)
type Attribute struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	Type    string `json:"type,omitempty"`
	OrderBy string `json:"order_by,omitempty"`
}

// AttributeTerm is one value of a global attribute (e.g. "IWC" for brand)
type AttributeTerm struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count,omitempty"`
}

// Brand is a product brand from the taxonomy endpoints
type Brand struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count,omitempty"`
}

// Media is the storefront response for an uploaded file. SourceURL is the
// public URL to reference in product image payloads.
type Media struct {
	ID        int64  `json:"id"`
	SourceURL string `json:"source_url"`
	MimeType  string `json:"mime_type,omitempty"`
	Title     any    `json:"title,omitempty"`
}

// Error is the error body of an API response envelope
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope returned on request failure
type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}
