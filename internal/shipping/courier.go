package shipping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"giftbox_back_end/internal/models"
)

// Courier est le client partagé vers le transporteur (API Shiprocket),
// construit dans cmd/server et remplaçable dans les tests.
var Courier *Client

// Les tokens Shiprocket sont valables 10 jours ; on renouvelle un peu
// avant pour ne jamais expédier avec un token limite.
const tokenTTL = 9 * 24 * time.Hour

// Dimensions de colis fixes du flux d'expédition (cm / kg).
const (
	packageLength  = 10.0
	packageBreadth = 15.0
	packageHeight  = 20.0
	packageWeight  = 0.5
)

// Client parle au transporteur. Le bearer token est détenu avec sa date
// d'expiration et rafraîchi à l'expiration ou sur une réponse 401.
type Client struct {
	BaseURL    string
	Email      string
	Password   string
	HTTPClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClientFromEnv() (*Client, error) {
	email := os.Getenv("SHIPROCKET_EMAIL")
	password := os.Getenv("SHIPROCKET_PASSWORD")
	if email == "" || password == "" {
		return nil, fmt.Errorf("SHIPROCKET_EMAIL / SHIPROCKET_PASSWORD manquants")
	}

	baseURL := os.Getenv("SHIPROCKET_BASE_URL")
	if baseURL == "" {
		baseURL = "https://apiv2.shiprocket.in"
	}

	return &Client{
		BaseURL:    baseURL,
		Email:      email,
		Password:   password,
		HTTPClient: &http.Client{Timeout: 20 * time.Second},
	}, nil
}

// Token retourne le bearer token courant, en se reconnectant si besoin.
func (c *Client) Token() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}
	return c.loginLocked()
}

func (c *Client) loginLocked() (string, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    c.Email,
		"password": c.Password,
	})

	resp, err := c.HTTPClient.Post(c.BaseURL+"/v1/external/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("login transporteur: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login transporteur: HTTP %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("réponse login illisible: %w", err)
	}
	if out.Token == "" {
		return "", fmt.Errorf("login transporteur: token absent de la réponse")
	}

	c.token = out.Token
	c.tokenExpiry = time.Now().Add(tokenTTL)
	log.Println("🔑 Token transporteur renouvelé")
	return c.token, nil
}

// invalidateToken force une reconnexion au prochain appel.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

type shipmentItem struct {
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	Units        int    `json:"units"`
	SellingPrice string `json:"selling_price"`
}

type shipmentRequest struct {
	OrderID             string         `json:"order_id"`
	OrderDate           string         `json:"order_date"`
	PickupLocation      string         `json:"pickup_location"`
	ChannelID           string         `json:"channel_id"`
	Comment             string         `json:"comment"`
	BillingCustomerName string         `json:"billing_customer_name"`
	BillingLastName     string         `json:"billing_last_name"`
	BillingAddress      string         `json:"billing_address"`
	BillingAddress2     string         `json:"billing_address_2"`
	BillingCity         string         `json:"billing_city"`
	BillingPincode      string         `json:"billing_pincode"`
	BillingState        string         `json:"billing_state"`
	BillingCountry      string         `json:"billing_country"`
	BillingEmail        string         `json:"billing_email"`
	BillingPhone        string         `json:"billing_phone"`
	ShippingIsBilling   bool           `json:"shipping_is_billing"`
	OrderItems          []shipmentItem `json:"order_items"`
	PaymentMethod       string         `json:"payment_method"`
	ShippingCharges     float64        `json:"shipping_charges"`
	GiftwrapCharges     float64        `json:"giftwrap_charges"`
	TransactionCharges  float64        `json:"transaction_charges"`
	TotalDiscount       float64        `json:"total_discount"`
	SubTotal            float64        `json:"sub_total"`
	Length              float64        `json:"length"`
	Breadth             float64        `json:"breadth"`
	Height              float64        `json:"height"`
	Weight              float64        `json:"weight"`
}

// BookShipment enregistre une commande payée auprès du transporteur et
// retourne son identifiant d'expédition. Sur un 401 (token révoqué côté
// fournisseur), on se reconnecte une fois et on rejoue la requête.
func (c *Client) BookShipment(order *models.Order, items []models.OrderItem, user *models.User) (string, error) {
	payload := c.buildPayload(order, items, user)
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	shipmentID, retry, err := c.submit(body)
	if retry {
		log.Println("⚠️ Token transporteur refusé (401) — reconnexion puis nouvel essai")
		c.invalidateToken()
		shipmentID, _, err = c.submit(body)
	}
	if err != nil {
		return "", err
	}

	log.Printf("📦 Expédition créée : %s (commande %s)", shipmentID, order.ID)
	return shipmentID, nil
}

// submit envoie la requête ; retry indique un 401 à rejouer après re-login.
func (c *Client) submit(body []byte) (string, bool, error) {
	token, err := c.Token()
	if err != nil {
		return "", false, err
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+"/v1/external/orders/create/adhoc", bytes.NewReader(body))
	if err != nil {
		return "", false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("appel transporteur: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return "", true, fmt.Errorf("transporteur: HTTP 401")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		log.Printf("❌ Transporteur HTTP %d: %s", resp.StatusCode, payload)
		return "", false, fmt.Errorf("transporteur: HTTP %d", resp.StatusCode)
	}

	var out struct {
		ShipmentID json.Number `json:"shipment_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("réponse transporteur illisible: %w", err)
	}
	if out.ShipmentID.String() == "" {
		return "", false, fmt.Errorf("réponse transporteur sans shipment_id")
	}
	return out.ShipmentID.String(), false, nil
}

func (c *Client) buildPayload(order *models.Order, items []models.OrderItem, user *models.User) shipmentRequest {
	shipItems := make([]shipmentItem, 0, len(items))
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = "Produit personnalisé"
		}
		shipItems = append(shipItems, shipmentItem{
			Name:         name,
			SKU:          item.Ref.SKU(),
			Units:        item.Quantity,
			SellingPrice: fmt.Sprintf("%.2f", item.Price),
		})
	}

	return shipmentRequest{
		OrderID:             order.GatewayOrderID,
		OrderDate:           time.Now().Format("2006-01-02 15:04:05"),
		PickupLocation:      "Primary",
		BillingCustomerName: user.Username,
		BillingAddress:      order.ShippingAddress,
		BillingCity:         "Mumbai",
		BillingPincode:      "400001",
		BillingState:        "Maharashtra",
		BillingCountry:      "India",
		BillingEmail:        user.Email,
		BillingPhone:        user.Phone,
		ShippingIsBilling:   true,
		OrderItems:          shipItems,
		PaymentMethod:       "Prepaid",
		SubTotal:            order.TotalAmount,
		Length:              packageLength,
		Breadth:             packageBreadth,
		Height:              packageHeight,
		Weight:              packageWeight,
	}
}
