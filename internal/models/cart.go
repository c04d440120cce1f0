package models

import (
	"fmt"

	"github.com/gocql/gocql"
)

// LineKind distingue une ligne de panier référençant un produit du
// catalogue d'une ligne référençant un produit personnalisé.
type LineKind string

const (
	LineProduct LineKind = "product"
	LineCustom  LineKind = "custom"
)

// LineRef référence exactement un produit OU un produit personnalisé.
// On passe par les constructeurs PlainRef / CustomRef pour garantir
// qu'un seul des deux identifiants est renseigné.
type LineRef struct {
	Kind            LineKind   `json:"kind"`
	ProductID       gocql.UUID `json:"product_id,omitempty"`
	CustomProductID gocql.UUID `json:"custom_product_id,omitempty"`
}

func PlainRef(productID gocql.UUID) LineRef {
	return LineRef{Kind: LineProduct, ProductID: productID}
}

func CustomRef(customProductID gocql.UUID) LineRef {
	return LineRef{Kind: LineCustom, CustomProductID: customProductID}
}

// SKU retourne l'identifiant référencé, quel que soit le type de ligne.
func (r LineRef) SKU() string {
	if r.Kind == LineCustom {
		return r.CustomProductID.String()
	}
	return r.ProductID.String()
}

func (r LineRef) Valid() bool {
	switch r.Kind {
	case LineProduct:
		return r.ProductID != (gocql.UUID{})
	case LineCustom:
		return r.CustomProductID != (gocql.UUID{})
	}
	return false
}

// CartLine est une ligne de panier persistée.
type CartLine struct {
	ID       gocql.UUID `json:"id"`
	UserID   string     `json:"user_id"`
	Ref      LineRef    `json:"ref"`
	Quantity int        `json:"quantity"`
}

// ResolvedLine est une ligne de panier enrichie avec le prix unitaire
// résolu (le prix personnalisé prime sur le prix catalogue).
type ResolvedLine struct {
	LineID        gocql.UUID `json:"line_id"`
	Ref           LineRef    `json:"ref"`
	Name          string     `json:"name"`
	UnitPrice     float64    `json:"unit_price"`
	Quantity      int        `json:"quantity"`
	Subtotal      float64    `json:"subtotal"`
	ImageURL      string     `json:"image_url,omitempty"`
	Customization string     `json:"customization,omitempty"`
}

type CartView struct {
	Lines []ResolvedLine `json:"items"`
	Total float64        `json:"total"`
}

// ResolveCart résout chaque ligne du panier contre le catalogue et les
// produits personnalisés, et calcule le total = Σ(prix unitaire × quantité).
// L'ordre des lignes est conservé. Une référence cassée est une erreur.
func ResolveCart(lines []CartLine, products map[gocql.UUID]Product, customs map[gocql.UUID]CustomProduct) (CartView, error) {
	view := CartView{Lines: make([]ResolvedLine, 0, len(lines))}

	for _, line := range lines {
		resolved := ResolvedLine{
			LineID:   line.ID,
			Ref:      line.Ref,
			Quantity: line.Quantity,
		}

		switch line.Ref.Kind {
		case LineProduct:
			p, ok := products[line.Ref.ProductID]
			if !ok {
				return CartView{}, fmt.Errorf("produit introuvable: %s", line.Ref.ProductID)
			}
			resolved.Name = p.Name
			resolved.UnitPrice = p.Price
			if len(p.ImageURLs) > 0 {
				resolved.ImageURL = p.ImageURLs[0]
			}
		case LineCustom:
			cp, ok := customs[line.Ref.CustomProductID]
			if !ok {
				return CartView{}, fmt.Errorf("produit personnalisé introuvable: %s", line.Ref.CustomProductID)
			}
			base, ok := products[cp.BaseProductID]
			if ok {
				resolved.Name = base.Name
				if len(base.ImageURLs) > 0 {
					resolved.ImageURL = base.ImageURLs[0]
				}
			} else {
				resolved.Name = "Produit personnalisé"
			}
			resolved.UnitPrice = cp.Price
			resolved.Customization = cp.CustomizationDetails
		default:
			return CartView{}, fmt.Errorf("type de ligne inconnu: %q", line.Ref.Kind)
		}

		resolved.Subtotal = resolved.UnitPrice * float64(line.Quantity)
		view.Total += resolved.Subtotal
		view.Lines = append(view.Lines, resolved)
	}

	return view, nil
}
