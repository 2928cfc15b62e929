package storeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/gateway"
	"storefront-admin-service/internal/models"
)

// Response headers the storefront API reports list totals in.
const (
	headerTotal      = "X-WP-Total"
	headerTotalPages = "X-WP-TotalPages"
)

// ProductsClient wraps the product endpoints of the storefront API.
type ProductsClient struct {
	gw  *gateway.Gateway
	log *logrus.Entry
}

// NewProductsClient creates a products client over the gateway.
func NewProductsClient(gw *gateway.Gateway, logger *logrus.Logger) *ProductsClient {
	return &ProductsClient{
		gw:  gw,
		log: logger.WithField("component", "products_client"),
	}
}

// List fetches one page of products. Totals come from response headers,
// not the body. An empty search is omitted from the query.
func (c *ProductsClient) List(ctx context.Context, page, perPage int, search string) (*models.ProductList, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
	}
	if search != "" {
		query.Set("search", search)
	}

	body, header, err := c.gw.Do(ctx, http.MethodGet, "/products", query, nil)
	if err != nil {
		return nil, err
	}

	var items []models.Product
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to parse products response: %w", err)
	}

	total, _ := strconv.Atoi(header.Get(headerTotal))
	totalPages, _ := strconv.Atoi(header.Get(headerTotalPages))

	return &models.ProductList{
		Items:      items,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get fetches a single product by ID.
func (c *ProductsClient) Get(ctx context.Context, id int64) (*models.Product, error) {
	body, _, err := c.gw.Do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to parse product response: %w", err)
	}
	return &product, nil
}

// Create submits a new product.
func (c *ProductsClient) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	body, _, err := c.gw.Do(ctx, http.MethodPost, "/products", nil, product)
	if err != nil {
		return nil, err
	}

	var created models.Product
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("failed to parse create response: %w", err)
	}
	c.log.WithFields(logrus.Fields{"id": created.ID, "sku": created.SKU}).Debug("Product created")
	return &created, nil
}

// Update replaces the given fields of an existing product.
func (c *ProductsClient) Update(ctx context.Context, id int64, product *models.Product) (*models.Product, error) {
	body, _, err := c.gw.Do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), nil, product)
	if err != nil {
		return nil, err
	}

	var updated models.Product
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse update response: %w", err)
	}
	return &updated, nil
}

// Delete removes a product. The storefront API only hard-deletes when
// the force flag is set; without it products land in the trash.
func (c *ProductsClient) Delete(ctx context.Context, id int64, force bool) error {
	query := url.Values{"force": {strconv.FormatBool(force)}}
	_, _, err := c.gw.Do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), query, nil)
	return err
}
