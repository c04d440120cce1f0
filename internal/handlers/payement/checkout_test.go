package payement

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/payment"
	"giftbox_back_end/internal/store"

	"github.com/gin-gonic/gin"
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

func newCheckoutRouter(userID string) *gin.Engine {
	r := gin.New()
	r.POST("/api/checkout", fakeAuth(userID), Checkout)
	r.POST("/api/payment/success", fakeAuth(userID), PaymentSuccess)
	return r
}

func newFakeGateway(t *testing.T, fail bool) (*httptest.Server, *int64) {
	var gotAmount int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			http.Error(w, `{"error":"indisponible"}`, http.StatusInternalServerError)
			return
		}
		var body struct {
			Amount int64 `json:"amount"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotAmount = body.Amount
		json.NewEncoder(w).Encode(map[string]string{"id": "order_GW001"})
	}))
	return server, &gotAmount
}

func seedCart(t *testing.T, userID string) {
	mug := models.Product{Name: "Mug personnalisé", Price: 299}
	require.NoError(t, store.Products.Create(&mug))
	frame := models.Product{Name: "Cadre photo", Price: 599}
	require.NoError(t, store.Products.Create(&frame))

	_, err := store.Cart.AddLine(userID, models.PlainRef(mug.ID), 2)
	require.NoError(t, err)
	_, err = store.Cart.AddLine(userID, models.PlainRef(frame.ID), 1)
	require.NoError(t, err)
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCheckoutSuccess(t *testing.T) {
	store.UseMemory()
	seedCart(t, "alice")

	server, gotAmount := newFakeGateway(t, false)
	defer server.Close()
	payment.Gateway = &payment.Client{
		BaseURL:    server.URL,
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_test_secret",
		HTTPClient: server.Client(),
	}

	router := newCheckoutRouter("alice")
	w := postJSON(router, "/api/checkout", gin.H{"address": "12 rue des Lilas"})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		GatewayOrderID string `json:"gateway_order_id"`
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
		KeyID          string `json:"key_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order_GW001", resp.GatewayOrderID)
	assert.Equal(t, int64(119700), resp.Amount) // (299×2 + 599) × 100 paise
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.KeyID)
	assert.Equal(t, int64(119700), *gotAmount)

	// Commande persistée en attente, total figé, panier vidé
	order, err := store.Orders.ByGatewayOrderID("order_GW001")
	require.NoError(t, err)
	assert.Equal(t, "alice", order.UserID)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, 1197.0, order.TotalAmount)
	assert.Equal(t, "12 rue des Lilas", order.ShippingAddress)

	items, err := store.Orders.Items(order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	lines, err := store.Cart.Lines("alice")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCheckoutGatewayFailureWritesNothing(t *testing.T) {
	store.UseMemory()
	seedCart(t, "alice")

	server, _ := newFakeGateway(t, true)
	defer server.Close()
	payment.Gateway = &payment.Client{
		BaseURL:    server.URL,
		KeyID:      "k",
		KeySecret:  "s",
		HTTPClient: server.Client(),
	}

	router := newCheckoutRouter("alice")
	w := postJSON(router, "/api/checkout", gin.H{"address": "12 rue des Lilas"})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// Aucune écriture : pas de commande, panier intact
	orders, err := store.Orders.ByUser("alice")
	require.NoError(t, err)
	assert.Empty(t, orders)

	lines, err := store.Cart.Lines("alice")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestCheckoutEmptyCart(t *testing.T) {
	store.UseMemory()

	server, _ := newFakeGateway(t, false)
	defer server.Close()
	payment.Gateway = &payment.Client{
		BaseURL:    server.URL,
		KeyID:      "k",
		KeySecret:  "s",
		HTTPClient: server.Client(),
	}

	router := newCheckoutRouter("alice")
	w := postJSON(router, "/api/checkout", gin.H{"address": "12 rue des Lilas"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutMissingAddress(t *testing.T) {
	store.UseMemory()
	seedCart(t, "alice")

	router := newCheckoutRouter("alice")
	w := postJSON(router, "/api/checkout", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
