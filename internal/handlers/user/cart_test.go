package user

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

// fakeAuth remplace le middleware JWT dans les tests de handlers.
func fakeAuth(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

func newCartRouter(userID string) *gin.Engine {
	r := gin.New()
	auth := r.Group("/api", fakeAuth(userID))
	auth.GET("/cart", GetCart)
	auth.POST("/cart/add", AddToCart)
	auth.POST("/cart/update", UpdateCart)
	auth.DELETE("/cart/clear", ClearCart)
	auth.DELETE("/cart/:lineId", RemoveFromCart)
	return r
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seedProduct(t *testing.T, name string, price float64) models.Product {
	p := models.Product{Name: name, Price: price}
	require.NoError(t, store.Products.Create(&p))
	return p
}

func getCartView(t *testing.T, router *gin.Engine) models.CartView {
	w := doJSON(router, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view models.CartView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func TestAddToCartMergesQuantities(t *testing.T) {
	store.UseMemory()
	mug := seedProduct(t, "Mug personnalisé", 299)

	router := newCartRouter("alice")

	w := doJSON(router, http.MethodPost, "/api/cart/add", gin.H{"product_id": mug.ID.String(), "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(router, http.MethodPost, "/api/cart/add", gin.H{"product_id": mug.ID.String(), "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)

	view := getCartView(t, router)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, 3, view.Lines[0].Quantity)
	assert.Equal(t, 897.0, view.Total)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	store.UseMemory()
	router := newCartRouter("alice")

	w := doJSON(router, http.MethodPost, "/api/cart/add", gin.H{"product_id": gocql.TimeUUID().String()})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateCartQuantityZeroRemovesLine(t *testing.T) {
	store.UseMemory()
	mug := seedProduct(t, "Mug personnalisé", 299)

	line, err := store.Cart.AddLine("alice", models.PlainRef(mug.ID), 2)
	require.NoError(t, err)

	router := newCartRouter("alice")
	w := doJSON(router, http.MethodPost, "/api/cart/update", gin.H{"line_id": line.ID.String(), "quantity": 0})
	require.Equal(t, http.StatusOK, w.Code)

	view := getCartView(t, router)
	assert.Empty(t, view.Lines)
	assert.Equal(t, 0.0, view.Total)
}

func TestRemoveFromCartIdempotent(t *testing.T) {
	store.UseMemory()
	mug := seedProduct(t, "Mug personnalisé", 299)

	line, err := store.Cart.AddLine("alice", models.PlainRef(mug.ID), 1)
	require.NoError(t, err)

	router := newCartRouter("alice")
	w := doJSON(router, http.MethodDelete, "/api/cart/"+line.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Deuxième suppression de la même ligne : toujours un succès
	w = doJSON(router, http.MethodDelete, "/api/cart/"+line.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClearCart(t *testing.T) {
	store.UseMemory()
	mug := seedProduct(t, "Mug personnalisé", 299)
	frame := seedProduct(t, "Cadre photo", 599)

	_, err := store.Cart.AddLine("alice", models.PlainRef(mug.ID), 1)
	require.NoError(t, err)
	_, err = store.Cart.AddLine("alice", models.PlainRef(frame.ID), 1)
	require.NoError(t, err)

	router := newCartRouter("alice")
	w := doJSON(router, http.MethodDelete, "/api/cart/clear", nil)
	require.Equal(t, http.StatusOK, w.Code)

	view := getCartView(t, router)
	assert.Empty(t, view.Lines)
}

func TestCartIsolationBetweenUsers(t *testing.T) {
	store.UseMemory()
	mug := seedProduct(t, "Mug personnalisé", 299)

	_, err := store.Cart.AddLine("alice", models.PlainRef(mug.ID), 1)
	require.NoError(t, err)

	view := getCartView(t, newCartRouter("bob"))
	assert.Empty(t, view.Lines)
}
