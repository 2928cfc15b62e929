package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-admin-service/internal/middleware"
	"storefront-admin-service/internal/session"
	"storefront-admin-service/internal/storeapi"
)

func newProductsRouter(t *testing.T, sessions *session.Store, products *storeapi.ProductsClient) *gin.Engine {
	t.Helper()
	handler := NewProductsHandler(products, testLogger())

	router := gin.New()
	guarded := router.Group("")
	guarded.Use(middleware.RequireConnection(sessions))
	guarded.GET("/products", handler.GetProducts)
	guarded.GET("/products/:id", handler.GetProduct)
	guarded.POST("/products", handler.CreateProduct)
	guarded.DELETE("/products/:id", handler.DeleteProduct)
	return router
}

func TestGetProductsPaginates(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("per_page"))
		assert.Equal(t, "shirt", r.URL.Query().Get("search"))
		w.Header().Set("X-WP-Total", "57")
		w.Header().Set("X-WP-TotalPages", "6")
		w.Write([]byte(`[{"id":1,"name":"Blue Shirt"}]`))
	}))
	defer store.Close()

	sessions, gw := newStack(t)
	connect(t, sessions, store.URL)
	router := newProductsRouter(t, sessions, storeapi.NewProductsClient(gw, testLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products?page=2&per_page=10&search=shirt", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":57`)
	assert.Contains(t, w.Body.String(), `"totalPages":6`)
	assert.Contains(t, w.Body.String(), "Blue Shirt")
}

func TestGetProductRejectsNonNumericID(t *testing.T) {
	sessions, gw := newStack(t)
	connect(t, sessions, "https://shop.example.com")
	router := newProductsRouter(t, sessions, storeapi.NewProductsClient(gw, testLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
}

func TestCreateProductRequiresName(t *testing.T) {
	sessions, gw := newStack(t)
	connect(t, sessions, "https://shop.example.com")
	router := newProductsRouter(t, sessions, storeapi.NewProductsClient(gw, testLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(`{"sku":"WID-001"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "NAME_REQUIRED")
}

func TestUpstreamErrorKeepsStatusAndCode(t *testing.T) {
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"woocommerce_rest_product_invalid_id","message":"Invalid ID."}`))
	}))
	defer store.Close()

	sessions, gw := newStack(t)
	connect(t, sessions, store.URL)
	router := newProductsRouter(t, sessions, storeapi.NewProductsClient(gw, testLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/999", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "woocommerce_rest_product_invalid_id")
}

func TestDeleteProductForcesByDefault(t *testing.T) {
	var gotForce string
	store := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotForce = r.URL.Query().Get("force")
		w.Write([]byte(`{"id":7}`))
	}))
	defer store.Close()

	sessions, gw := newStack(t)
	connect(t, sessions, store.URL)
	router := newProductsRouter(t, sessions, storeapi.NewProductsClient(gw, testLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/products/7", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", gotForce)
}

func TestGuardedRoutesRejectWhenDisconnected(t *testing.T) {
	sessions, gw := newStack(t)
	router := newProductsRouter(t, sessions, storeapi.NewProductsClient(gw, testLogger()))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_CONNECTED")
}
