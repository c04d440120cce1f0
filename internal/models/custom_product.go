package models

import (
	"time"

	"github.com/gocql/gocql"
)

// CustomProduct est une variante personnalisée d'un produit de base,
// propre à un utilisateur. Immuable après création.
type CustomProduct struct {
	ID                   gocql.UUID `json:"id" db:"custom_product_id"`
	BaseProductID        gocql.UUID `json:"base_product_id" db:"base_product_id"`
	UserID               string     `json:"user_id" db:"user_id"`
	CustomizationDetails string     `json:"customization_details" db:"customization_details"`
	Length               float64    `json:"length" db:"length"`
	Width                float64    `json:"width" db:"width"`
	Height               float64    `json:"height" db:"height"`
	Price                float64    `json:"price" db:"price"`
	ImageURL             string     `json:"image_url,omitempty" db:"image_url"`
	CreatedAt            *time.Time `json:"created_at,omitempty" db:"created_at"`
}
