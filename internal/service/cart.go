package service

import (
	"giftbox_back_end/internal/models"
	"giftbox_back_end/internal/store"

	"github.com/gocql/gocql"
)

// LoadCart charge les lignes du panier d'un utilisateur et les résout
// contre le catalogue (prix, noms, images). Utilisé par le panier, le
// websocket et le checkout.
func LoadCart(userID string) (models.CartView, []models.CartLine, error) {
	lines, err := store.Cart.Lines(userID)
	if err != nil {
		return models.CartView{}, nil, err
	}

	productIDs := []gocql.UUID{}
	customIDs := []gocql.UUID{}
	for _, line := range lines {
		switch line.Ref.Kind {
		case models.LineProduct:
			productIDs = append(productIDs, line.Ref.ProductID)
		case models.LineCustom:
			customIDs = append(customIDs, line.Ref.CustomProductID)
		}
	}

	customs, err := store.Customs.ByIDs(customIDs)
	if err != nil {
		return models.CartView{}, nil, err
	}
	// Le nom et l'image d'une ligne personnalisée viennent du produit de base.
	for _, cp := range customs {
		productIDs = append(productIDs, cp.BaseProductID)
	}

	products, err := store.Products.ByIDs(productIDs)
	if err != nil {
		return models.CartView{}, nil, err
	}

	view, err := models.ResolveCart(lines, products, customs)
	if err != nil {
		return models.CartView{}, nil, err
	}
	return view, lines, nil
}
