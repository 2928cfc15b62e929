package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"storefront-admin-service/internal/models"
	"storefront-admin-service/internal/storeapi"
)

// ProductsHandler proxies product CRUD to the storefront API.
type ProductsHandler struct {
	products *storeapi.ProductsClient
	log      *logrus.Entry
}

func NewProductsHandler(products *storeapi.ProductsClient, logger *logrus.Logger) *ProductsHandler {
	return &ProductsHandler{
		products: products,
		log:      logger.WithField("component", "products_handler"),
	}
}

// GetProducts lists one page of products.
// GET /api/v1/products?page=1&per_page=10&search=
func (h *ProductsHandler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	search := c.Query("search")

	list, err := h.products.List(c.Request.Context(), page, perPage, search)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

// GetProduct fetches a single product.
// GET /api/v1/products/:id
func (h *ProductsHandler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "INVALID_ID", "Product ID must be numeric")
		return
	}

	product, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": product})
}

// CreateProduct submits a new product.
// POST /api/v1/products
func (h *ProductsHandler) CreateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "INVALID_INPUT", err.Error())
		return
	}
	if product.Name == "" {
		badRequest(c, "NAME_REQUIRED", "Product name is required")
		return
	}

	created, err := h.products.Create(c.Request.Context(), &product)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": created})
}

// UpdateProduct updates an existing product.
// PUT /api/v1/products/:id
func (h *ProductsHandler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "INVALID_ID", "Product ID must be numeric")
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		badRequest(c, "INVALID_INPUT", err.Error())
		return
	}

	updated, err := h.products.Update(c.Request.Context(), id, &product)
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": updated})
}

// DeleteProduct removes a product. Deletes are forced (hard delete) by
// default, matching the dashboard's delete action.
// DELETE /api/v1/products/:id?force=true
func (h *ProductsHandler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "INVALID_ID", "Product ID must be numeric")
		return
	}
	force := c.DefaultQuery("force", "true") == "true"

	if err := h.products.Delete(c.Request.Context(), id, force); err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
