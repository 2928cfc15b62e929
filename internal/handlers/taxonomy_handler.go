package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/storeapi"
)

// TaxonomyHandler exposes the category/attribute/brand pick lists.
type TaxonomyHandler struct {
	taxonomy *storeapi.TaxonomyClient
	log      *logrus.Entry
}

func NewTaxonomyHandler(taxonomy *storeapi.TaxonomyClient, logger *logrus.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{
		taxonomy: taxonomy,
		log:      logger.WithField("component", "taxonomy_handler"),
	}
}

// GetCategories lists product categories.
// GET /api/v1/categories
func (h *TaxonomyHandler) GetCategories(c *gin.Context) {
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "100"))

	categories, err := h.taxonomy.Categories(c.Request.Context(), perPage)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": categories})
}

// GetAttributes lists the global product attributes.
// GET /api/v1/attributes
func (h *TaxonomyHandler) GetAttributes(c *gin.Context) {
	attributes, err := h.taxonomy.Attributes(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": attributes})
}

// GetAttributeTerms lists the terms of one attribute.
// GET /api/v1/attributes/:id/terms
func (h *TaxonomyHandler) GetAttributeTerms(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "INVALID_ID", "Attribute ID must be numeric")
		return
	}

	terms, err := h.taxonomy.AttributeTerms(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": terms})
}

// GetBrands lists product brands.
// GET /api/v1/brands
func (h *TaxonomyHandler) GetBrands(c *gin.Context) {
	brands, err := h.taxonomy.Brands(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": brands})
}
