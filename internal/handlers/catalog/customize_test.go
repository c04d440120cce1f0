package catalog

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newCatalogRouter(userID string) *gin.Engine {
	r := gin.New()
	r.GET("/api/products", GetProducts)
	r.GET("/api/products/:id", GetProductByID)
	r.GET("/api/search", SearchProducts)
	r.GET("/api/products/:id/customize", fakeAuth(userID), GetCustomizeProduct)
	r.POST("/api/products/:id/customize", fakeAuth(userID), CustomizeProduct)
	return r
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCustomizeProductAppliesSurcharge(t *testing.T) {
	store.UseMemory()
	mug := models.Product{Name: "Mug personnalisé", Price: 299, Customizable: true}
	require.NoError(t, store.Products.Create(&mug))

	router := newCatalogRouter("alice")
	w := doJSON(router, http.MethodPost, "/api/products/"+mug.ID.String()+"/customize", gin.H{
		"customization_details": "Photo de famille",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		CustomProduct models.CustomProduct `json:"custom_product"`
		CartLine      models.CartLine      `json:"cart_line"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	// Prix = base + supplément de personnalisation
	assert.Equal(t, 399.0, resp.CustomProduct.Price)
	assert.Equal(t, mug.ID, resp.CustomProduct.BaseProductID)
	assert.Equal(t, "alice", resp.CustomProduct.UserID)

	// Une ligne de panier quantité 1 est créée
	assert.Equal(t, 1, resp.CartLine.Quantity)
	assert.Equal(t, models.LineCustom, resp.CartLine.Ref.Kind)

	lines, err := store.Cart.Lines("alice")
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestCustomizeProductEachCallNewLine(t *testing.T) {
	store.UseMemory()
	mug := models.Product{Name: "Mug personnalisé", Price: 299, Customizable: true}
	require.NoError(t, store.Products.Create(&mug))

	router := newCatalogRouter("alice")
	for i := 0; i < 2; i++ {
		w := doJSON(router, http.MethodPost, "/api/products/"+mug.ID.String()+"/customize", gin.H{
			"customization_details": "Gravure",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	// Deux personnalisations = deux lignes distinctes, jamais de fusion
	lines, err := store.Cart.Lines("alice")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestCustomizeProductNotCustomizable(t *testing.T) {
	store.UseMemory()
	rakhi := models.Product{Name: "Rakhi", Price: 99, Customizable: false}
	require.NoError(t, store.Products.Create(&rakhi))

	router := newCatalogRouter("alice")

	w := doJSON(router, http.MethodPost, "/api/products/"+rakhi.ID.String()+"/customize", gin.H{
		"customization_details": "Gravure",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/products/"+rakhi.ID.String()+"/customize", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProductsLimits(t *testing.T) {
	store.UseMemory()
	for i := 0; i < 10; i++ {
		p := models.Product{Name: "P", Price: 10, Customizable: i%2 == 0}
		require.NoError(t, store.Products.Create(&p))
	}

	router := newCatalogRouter("")

	var resp struct {
		Products []models.Product `json:"products"`
	}

	w := doJSON(router, http.MethodGet, "/api/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 6)

	w = doJSON(router, http.MethodGet, "/api/products?customizable=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Products, 4)
}

func TestGetProductByIDNotFound(t *testing.T) {
	store.UseMemory()
	router := newCatalogRouter("")

	w := doJSON(router, http.MethodGet, "/api/products/"+gocql.TimeUUID().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(router, http.MethodGet, "/api/products/pas-un-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchFallsBackToStore(t *testing.T) {
	store.UseMemory()
	mug := models.Product{Name: "Mug personnalisé", Description: "Céramique", Price: 299, Category: "personnalisé"}
	require.NoError(t, store.Products.Create(&mug))
	rakhi := models.Product{Name: "Rakhi", Price: 99, Category: "festival"}
	require.NoError(t, store.Products.Create(&rakhi))

	router := newCatalogRouter("")

	// Sans Elasticsearch, la recherche passe par le store
	w := doJSON(router, http.MethodGet, "/api/search?q=mug", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Results []models.Product `json:"results"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Mug personnalisé", resp.Results[0].Name)

	w = doJSON(router, http.MethodGet, "/api/search?category=festival", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Rakhi", resp.Results[0].Name)
}
