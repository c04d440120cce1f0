package payment

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// Gateway est le client partagé vers la passerelle de paiement,
// construit dans cmd/server et remplaçable dans les tests.
var Gateway *Client

// Client parle à la passerelle de paiement (API Razorpay) : création
// d'ordre côté fournisseur et vérification de la signature de callback.
type Client struct {
	BaseURL    string
	KeyID      string
	KeySecret  string
	HTTPClient *http.Client
}

func NewClientFromEnv() (*Client, error) {
	keyID := os.Getenv("RAZORPAY_KEY_ID")
	keySecret := os.Getenv("RAZORPAY_KEY_SECRET")
	if keyID == "" || keySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID / RAZORPAY_KEY_SECRET manquants")
	}

	baseURL := os.Getenv("RAZORPAY_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.razorpay.com"
	}

	return &Client{
		BaseURL:    baseURL,
		KeyID:      keyID,
		KeySecret:  keySecret,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type createOrderRequest struct {
	Amount         int64  `json:"amount"` // en paise
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder crée un ordre de paiement côté passerelle et retourne son
// identifiant opaque. Le montant est en unités mineures (paise).
func (c *Client) CreateOrder(amountPaise int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(createOrderRequest{
		Amount:         amountPaise,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("appel passerelle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("❌ Passerelle de paiement HTTP %d: %s", resp.StatusCode, payload)
		return "", fmt.Errorf("passerelle de paiement: HTTP %d", resp.StatusCode)
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("réponse passerelle illisible: %w", err)
	}
	if out.ID == "" {
		return "", fmt.Errorf("réponse passerelle sans identifiant d'ordre")
	}

	log.Printf("💳 Ordre de paiement créé : %s (%d paise)", out.ID, amountPaise)
	return out.ID, nil
}

// VerifySignature vérifie la signature envoyée par la passerelle après
// paiement : HMAC-SHA256 hex de "orderID|paymentID" avec le secret
// partagé. Comparaison en temps constant ; toute altération est refusée.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
