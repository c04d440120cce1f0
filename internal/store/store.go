package store

import (
	"errors"

	"giftbox_back_end/internal/models"

	"github.com/gocql/gocql"
)

var (
	ErrNotFound  = errors.New("enregistrement introuvable")
	ErrDuplicate = errors.New("enregistrement déjà existant")
)

type UserStore interface {
	Create(u *models.User) error
	ByID(id string) (*models.User, error)
	ByEmail(email string) (*models.User, error)
	Update(u *models.User) error
}

type ProductStore interface {
	Create(p *models.Product) error
	ByID(id gocql.UUID) (*models.Product, error)
	ByIDs(ids []gocql.UUID) (map[gocql.UUID]models.Product, error)
	Featured(limit int) ([]models.Product, error)
	Customizable(limit int) ([]models.Product, error)
	Search(query, category string) ([]models.Product, error)
	AddImageURL(id gocql.UUID, url string) error
}

type CategoryStore interface {
	Create(c *models.Category) error
	All() ([]models.Category, error)
}

type CustomProductStore interface {
	Create(cp *models.CustomProduct) error
	ByID(id gocql.UUID) (*models.CustomProduct, error)
	ByIDs(ids []gocql.UUID) (map[gocql.UUID]models.CustomProduct, error)
}

type CartStore interface {
	Lines(userID string) ([]models.CartLine, error)
	// AddLine incrémente la quantité si une ligne (user, produit simple)
	// identique existe déjà ; une référence personnalisée crée toujours
	// une nouvelle ligne.
	AddLine(userID string, ref models.LineRef, quantity int) (models.CartLine, error)
	// UpdateQuantity supprime la ligne si quantity <= 0.
	UpdateQuantity(userID string, lineID gocql.UUID, quantity int) error
	// RemoveLine est idempotent.
	RemoveLine(userID string, lineID gocql.UUID) error
	Clear(userID string) error
}

type OrderStore interface {
	Create(o *models.Order, items []models.OrderItem) error
	ByID(id gocql.UUID) (*models.Order, error)
	ByGatewayOrderID(gatewayOrderID string) (*models.Order, error)
	ByUser(userID string) ([]models.Order, error)
	Items(orderID gocql.UUID) ([]models.OrderItem, error)
	MarkPaid(orderID gocql.UUID, paymentID string) error
	SetShipmentID(orderID gocql.UUID, shipmentID string) error
}

// Handles globaux, câblés au démarrage (UseScylla ou UseMemory).
var (
	Users      UserStore
	Products   ProductStore
	Categories CategoryStore
	Customs    CustomProductStore
	Cart       CartStore
	Orders     OrderStore
)

// UseMemory bascule tous les stores sur le backend en mémoire
// (tests et mode développement STORE_BACKEND=memory).
func UseMemory() {
	db := newMemoryDB()
	Users = &MemoryUsers{db}
	Products = &MemoryProducts{db}
	Categories = &MemoryCategories{db}
	Customs = &MemoryCustoms{db}
	Cart = &MemoryCart{db}
	Orders = &MemoryOrders{db}
}

// UseScylla bascule tous les stores sur ScyllaDB.
func UseScylla() {
	Users = &ScyllaUsers{}
	Products = &ScyllaProducts{}
	Categories = &ScyllaCategories{}
	Customs = &ScyllaCustoms{}
	Cart = &ScyllaCart{}
	Orders = &ScyllaOrders{}
}
