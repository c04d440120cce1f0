package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	client := &Client{KeySecret: "secret_test"}

	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	signature := sign("secret_test", orderID, paymentID)

	assert.True(t, client.VerifySignature(orderID, paymentID, signature))
}

func TestVerifySignatureRejectsAnyMutation(t *testing.T) {
	client := &Client{KeySecret: "secret_test"}

	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"
	signature := sign("secret_test", orderID, paymentID)

	// Chaque caractère de chaque champ est altéré tour à tour
	mutate := func(s string, i int) string {
		b := []byte(s)
		b[i] ^= 0x01
		return string(b)
	}

	for i := range orderID {
		assert.False(t, client.VerifySignature(mutate(orderID, i), paymentID, signature))
	}
	for i := range paymentID {
		assert.False(t, client.VerifySignature(orderID, mutate(paymentID, i), signature))
	}
	for i := range signature {
		assert.False(t, client.VerifySignature(orderID, paymentID, mutate(signature, i)))
	}
}

func TestVerifySignatureWrongSecret(t *testing.T) {
	client := &Client{KeySecret: "secret_test"}
	signature := sign("autre_secret", "order_1", "pay_1")
	assert.False(t, client.VerifySignature("order_1", "pay_1", signature))
}

func TestCreateOrder(t *testing.T) {
	var got struct {
		Amount         int64  `json:"amount"`
		Currency       string `json:"currency"`
		Receipt        string `json:"receipt"`
		PaymentCapture int    `json:"payment_capture"`
	}
	var gotAuthUser, gotAuthPass string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		gotAuthUser, gotAuthPass, _ = r.BasicAuth()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{"id": "order_FAKE001"})
	}))
	defer server.Close()

	client := &Client{
		BaseURL:    server.URL,
		KeyID:      "rzp_test_key",
		KeySecret:  "rzp_test_secret",
		HTTPClient: server.Client(),
	}

	id, err := client.CreateOrder(119700, "INR", "order_1700000000")
	require.NoError(t, err)
	assert.Equal(t, "order_FAKE001", id)

	assert.Equal(t, int64(119700), got.Amount)
	assert.Equal(t, "INR", got.Currency)
	assert.Equal(t, "order_1700000000", got.Receipt)
	assert.Equal(t, 1, got.PaymentCapture)
	assert.Equal(t, "rzp_test_key", gotAuthUser)
	assert.Equal(t, "rzp_test_secret", gotAuthPass)
}

func TestCreateOrderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := &Client{
		BaseURL:    server.URL,
		KeyID:      "k",
		KeySecret:  "s",
		HTTPClient: server.Client(),
	}

	_, err := client.CreateOrder(100, "INR", "r")
	assert.Error(t, err)
}

func TestCreateOrderMissingID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := &Client{
		BaseURL:    server.URL,
		KeyID:      "k",
		KeySecret:  "s",
		HTTPClient: server.Client(),
	}

	_, err := client.CreateOrder(100, "INR", "r")
	assert.Error(t, err)
}
