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

// TaxonomyClient wraps the category, attribute and brand endpoints.
// These are plain paginated GETs with generous page sizes; the admin UI
// shows them as flat pick lists.
type TaxonomyClient struct {
	gw  *gateway.Gateway
	log *logrus.Entry
}

// NewTaxonomyClient creates a taxonomy client over the gateway.
func NewTaxonomyClient(gw *gateway.Gateway, logger *logrus.Logger) *TaxonomyClient {
	return &TaxonomyClient{
		gw:  gw,
		log: logger.WithField("component", "taxonomy_client"),
	}
}

// Categories fetches up to perPage product categories.
func (c *TaxonomyClient) Categories(ctx context.Context, perPage int) ([]models.Category, error) {
	if perPage < 1 {
		perPage = 100
	}
	body, _, err := c.gw.Do(ctx, http.MethodGet, "/products/categories", url.Values{"per_page": {strconv.Itoa(perPage)}}, nil)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories response: %w", err)
	}
	return categories, nil
}

// Attributes fetches the global product attributes.
func (c *TaxonomyClient) Attributes(ctx context.Context) ([]models.Attribute, error) {
	body, _, err := c.gw.Do(ctx, http.MethodGet, "/products/attributes", url.Values{"per_page": {"50"}}, nil)
	if err != nil {
		return nil, err
	}

	var attributes []models.Attribute
	if err := json.Unmarshal(body, &attributes); err != nil {
		return nil, fmt.Errorf("failed to parse attributes response: %w", err)
	}
	return attributes, nil
}

// AttributeTerms fetches the terms of one attribute, e.g. the individual
// brand names of a "brand" attribute.
func (c *TaxonomyClient) AttributeTerms(ctx context.Context, attributeID int64) ([]models.AttributeTerm, error) {
	path := fmt.Sprintf("/products/attributes/%d/terms", attributeID)
	body, _, err := c.gw.Do(ctx, http.MethodGet, path, url.Values{"per_page": {"100"}}, nil)
	if err != nil {
		return nil, err
	}

	var terms []models.AttributeTerm
	if err := json.Unmarshal(body, &terms); err != nil {
		return nil, fmt.Errorf("failed to parse attribute terms response: %w", err)
	}
	return terms, nil
}

// Brands fetches the product brands.
func (c *TaxonomyClient) Brands(ctx context.Context) ([]models.Brand, error) {
	body, _, err := c.gw.Do(ctx, http.MethodGet, "/products/brands", url.Values{"per_page": {"100"}}, nil)
	if err != nil {
		return nil, err
	}

	var brands []models.Brand
	if err := json.Unmarshal(body, &brands); err != nil {
		return nil, fmt.Errorf("failed to parse brands response: %w", err)
	}
	return brands, nil
}
