package models

import (
	"time"

	"github.com/gocql/gocql"
)

type Product struct {
	ID           gocql.UUID `json:"id" db:"product_id"`
	Name         string     `json:"name" db:"name"`
	Description  string     `json:"description" db:"description"`
	Length       float64    `json:"length" db:"length"`
	Width        float64    `json:"width" db:"width"`
	Height       float64    `json:"height" db:"height"`
	Weight       float64    `json:"weight" db:"weight"`
	Price        float64    `json:"price" db:"price"`
	Stock        int        `json:"stock" db:"stock"`
	Category     string     `json:"category" db:"category"`
	ImageURLs    []string   `json:"image_urls" db:"image_urls"`
	Customizable bool       `json:"customizable" db:"customizable"`
	CreatedAt    *time.Time `json:"created_at,omitempty" db:"created_at"`
}
