package store

import (
	"testing"
	"time"

	"giftbox_back_end/internal/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCartAddLineMergesPlainProducts(t *testing.T) {
	UseMemory()
	productID := gocql.TimeUUID()

	first, err := Cart.AddLine("alice", models.PlainRef(productID), 1)
	require.NoError(t, err)

	second, err := Cart.AddLine("alice", models.PlainRef(productID), 2)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 3, second.Quantity)

	lines, err := Cart.Lines("alice")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestMemoryCartCustomRefAlwaysNewLine(t *testing.T) {
	UseMemory()
	customID := gocql.TimeUUID()

	_, err := Cart.AddLine("alice", models.CustomRef(customID), 1)
	require.NoError(t, err)
	_, err = Cart.AddLine("alice", models.CustomRef(customID), 1)
	require.NoError(t, err)

	lines, err := Cart.Lines("alice")
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}

func TestMemoryCartUpdateQuantityZeroDeletes(t *testing.T) {
	UseMemory()
	line, err := Cart.AddLine("alice", models.PlainRef(gocql.TimeUUID()), 2)
	require.NoError(t, err)

	require.NoError(t, Cart.UpdateQuantity("alice", line.ID, 0))

	lines, err := Cart.Lines("alice")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestMemoryCartRemoveLineIdempotent(t *testing.T) {
	UseMemory()
	line, err := Cart.AddLine("alice", models.PlainRef(gocql.TimeUUID()), 1)
	require.NoError(t, err)

	require.NoError(t, Cart.RemoveLine("alice", line.ID))
	require.NoError(t, Cart.RemoveLine("alice", line.ID))
	require.NoError(t, Cart.RemoveLine("alice", gocql.TimeUUID()))
}

func TestMemoryCartClear(t *testing.T) {
	UseMemory()
	_, err := Cart.AddLine("alice", models.PlainRef(gocql.TimeUUID()), 1)
	require.NoError(t, err)
	_, err = Cart.AddLine("alice", models.PlainRef(gocql.TimeUUID()), 1)
	require.NoError(t, err)
	_, err = Cart.AddLine("bob", models.PlainRef(gocql.TimeUUID()), 1)
	require.NoError(t, err)

	require.NoError(t, Cart.Clear("alice"))

	lines, err := Cart.Lines("alice")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// Le panier de bob n'est pas touché
	lines, err = Cart.Lines("bob")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestMemoryCartLinesPreserveInsertionOrder(t *testing.T) {
	UseMemory()
	ids := []gocql.UUID{gocql.TimeUUID(), gocql.TimeUUID(), gocql.TimeUUID()}
	for _, id := range ids {
		_, err := Cart.AddLine("alice", models.PlainRef(id), 1)
		require.NoError(t, err)
	}

	lines, err := Cart.Lines("alice")
	require.NoError(t, err)
	require.Len(t, lines, 3)
	for i, line := range lines {
		assert.Equal(t, ids[i], line.Ref.ProductID)
	}
}

func TestMemoryUsersDuplicateEmail(t *testing.T) {
	UseMemory()

	first := models.User{ID: "u1", Username: "alice", Email: "alice@example.com"}
	require.NoError(t, Users.Create(&first))

	sameEmail := models.User{ID: "u2", Username: "alice2", Email: "alice@example.com"}
	assert.ErrorIs(t, Users.Create(&sameEmail), ErrDuplicate)

	sameUsername := models.User{ID: "u3", Username: "alice", Email: "autre@example.com"}
	assert.ErrorIs(t, Users.Create(&sameUsername), ErrDuplicate)
}

func TestMemoryOrdersItemsFrozenAgainstCatalogChanges(t *testing.T) {
	UseMemory()

	product := models.Product{ID: gocql.TimeUUID(), Name: "Rakhi", Price: 99}
	require.NoError(t, Products.Create(&product))

	orderID := gocql.TimeUUID()
	order := models.Order{
		ID:            orderID,
		UserID:        "alice",
		OrderDate:     time.Now(),
		TotalAmount:   198,
		PaymentStatus: models.PaymentStatusPending,
	}
	items := []models.OrderItem{
		{ID: gocql.TimeUUID(), OrderID: orderID, Ref: models.PlainRef(product.ID), Name: "Rakhi", Quantity: 2, Price: 99},
	}
	require.NoError(t, Orders.Create(&order, items))

	// Changement de prix catalogue après la commande
	product.Price = 149
	require.NoError(t, Products.Create(&product))

	stored, err := Orders.Items(orderID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 99.0, stored[0].Price)
}

func TestMemoryOrdersLookups(t *testing.T) {
	UseMemory()

	orderID := gocql.TimeUUID()
	order := models.Order{
		ID:             orderID,
		UserID:         "alice",
		OrderDate:      time.Now(),
		TotalAmount:    99,
		PaymentStatus:  models.PaymentStatusPending,
		GatewayOrderID: "order_gw_123",
	}
	require.NoError(t, Orders.Create(&order, nil))

	byGateway, err := Orders.ByGatewayOrderID("order_gw_123")
	require.NoError(t, err)
	assert.Equal(t, orderID, byGateway.ID)

	_, err = Orders.ByGatewayOrderID("inconnu")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, Orders.MarkPaid(orderID, "pay_42"))
	paid, err := Orders.ByID(orderID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	assert.Equal(t, "pay_42", paid.PaymentID)

	require.NoError(t, Orders.SetShipmentID(orderID, "ship_7"))
	shipped, err := Orders.ByID(orderID)
	require.NoError(t, err)
	assert.Equal(t, "ship_7", shipped.ShipmentID)
}
