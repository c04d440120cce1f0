package models

import (
	"time"

	"github.com/gocql/gocql"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Order est un instantané immuable du panier au moment du checkout.
// Seuls les champs de paiement/expédition sont mis à jour ensuite.
type Order struct {
	ID              gocql.UUID `json:"id"`
	UserID          string     `json:"user_id"`
	OrderDate       time.Time  `json:"order_date"`
	TotalAmount     float64    `json:"total_amount"`
	PaymentStatus   string     `json:"payment_status"`
	GatewayOrderID  string     `json:"gateway_order_id"`
	PaymentID       string     `json:"payment_id,omitempty"`
	ShipmentID      string     `json:"shipment_id,omitempty"`
	ShippingAddress string     `json:"shipping_address"`
	ItemCount       int        `json:"item_count,omitempty"`
}

// OrderItem fige nom, prix et quantité au moment de la commande. Les
// modifications ultérieures du catalogue ne le touchent jamais.
type OrderItem struct {
	ID       gocql.UUID `json:"id"`
	OrderID  gocql.UUID `json:"order_id"`
	Ref      LineRef    `json:"ref"`
	Name     string     `json:"name"`
	Quantity int        `json:"quantity"`
	Price    float64    `json:"price"`
}

// Subtotal retourne le sous-total figé de la ligne.
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemsFromCart fige les lignes résolues d'un panier en lignes de commande.
func ItemsFromCart(orderID gocql.UUID, lines []ResolvedLine) []OrderItem {
	items := make([]OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, OrderItem{
			ID:       gocql.TimeUUID(),
			OrderID:  orderID,
			Ref:      line.Ref,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.UnitPrice,
		})
	}
	return items
}
