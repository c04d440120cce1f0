package store

import (
	"fmt"
	"strings"
	"time"

	"giftbox_back_end/internal/database"
	"giftbox_back_end/internal/models"

	"github.com/gocql/gocql"
)

// Backend ScyllaDB. Les tables sont créées via scripts/scylla_init.cql ;
// pas de jointures côté base, les assemblages se font côté application.

type ScyllaUsers struct{}
type ScyllaProducts struct{}
type ScyllaCategories struct{}
type ScyllaCustoms struct{}
type ScyllaCart struct{}
type ScyllaOrders struct{}

// ---------- Users ----------

func (s *ScyllaUsers) Create(u *models.User) error {
	now := time.Now()
	u.CreatedAt = &now

	// Réservation atomique de l'email puis du nom d'utilisateur via les
	// tables de correspondance (LWT) : deux inscriptions concurrentes
	// sur le même email ne peuvent pas réussir toutes les deux.
	q, err := database.GetPreparedInsertUserByEmail(u.Email, u.ID)
	if err != nil {
		return err
	}
	applied, err := q.MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réservation email: %w", err)
	}
	if !applied {
		return ErrDuplicate
	}

	q, err = database.GetPreparedInsertUserByUsername(u.Username, u.ID)
	if err != nil {
		return err
	}
	applied, err = q.MapScanCAS(map[string]interface{}{})
	if err != nil {
		return fmt.Errorf("réservation nom d'utilisateur: %w", err)
	}
	if !applied {
		// On libère l'email réservé : l'inscription échoue en bloc.
		if del, derr := database.GetPreparedDeleteUserByEmail(u.Email); derr == nil {
			del.Exec()
		}
		return ErrDuplicate
	}

	q, err = database.GetPreparedInsertUser(u.ID, u.Username, u.Email, u.Password,
		u.Address, u.Phone, u.Provider, u.Role, now, now)
	if err != nil {
		return err
	}
	if err := q.Exec(); err != nil {
		return fmt.Errorf("insertion utilisateur: %w", err)
	}
	return nil
}

func (s *ScyllaUsers) ByID(id string) (*models.User, error) {
	q, err := database.GetPreparedGetUserByID(id)
	if err != nil {
		return nil, err
	}

	u := models.User{ID: id}
	var createdAt, updatedAt time.Time
	err = q.Scan(&u.Username, &u.Email, &u.Password, &u.Address, &u.Phone, &u.Provider, &u.Role, &createdAt, &updatedAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = &createdAt
	u.UpdatedAt = &updatedAt
	return &u, nil
}

func (s *ScyllaUsers) ByEmail(email string) (*models.User, error) {
	q, err := database.GetPreparedGetUserByEmail(email)
	if err != nil {
		return nil, err
	}

	var userID string
	err = q.Scan(&userID)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.ByID(userID)
}

func (s *ScyllaUsers) Update(u *models.User) error {
	now := time.Now()
	u.UpdatedAt = &now

	q, err := database.GetPreparedUpdateUser(u.Username, u.Address, u.Phone, now, u.ID)
	if err != nil {
		return err
	}
	return q.Exec()
}

// ---------- Products ----------

const productColumns = `product_id, name, description, length, width, height, weight, price, stock, category, image_urls, customizable, created_at`

func (s *ScyllaProducts) Create(p *models.Product) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	now := time.Now()
	p.CreatedAt = &now
	return session.Query(`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, p.Length, p.Width, p.Height, p.Weight,
		p.Price, p.Stock, p.Category, p.ImageURLs, p.Customizable, now).Exec()
}

func (s *ScyllaProducts) ByID(id gocql.UUID) (*models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var p models.Product
	var createdAt time.Time
	err = session.Query(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.Length, &p.Width, &p.Height, &p.Weight,
			&p.Price, &p.Stock, &p.Category, &p.ImageURLs, &p.Customizable, &createdAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.CreatedAt = &createdAt
	return &p, nil
}

func (s *ScyllaProducts) ByIDs(ids []gocql.UUID) (map[gocql.UUID]models.Product, error) {
	out := make(map[gocql.UUID]models.Product, len(ids))
	for _, id := range ids {
		p, err := s.ByID(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = *p
	}
	return out, nil
}

func (s *ScyllaProducts) Featured(limit int) ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}
	return collectProducts(session.Query(`SELECT `+productColumns+` FROM products LIMIT ?`, limit).Iter())
}

func (s *ScyllaProducts) Customizable(limit int) ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}
	return collectProducts(session.Query(`SELECT `+productColumns+` FROM products WHERE customizable = true LIMIT ? ALLOW FILTERING`, limit).Iter())
}

// Search scanne le catalogue et filtre côté application (pas de LIKE en
// CQL). La recherche plein texte passe par Elasticsearch quand il est là.
func (s *ScyllaProducts) Search(query, category string) ([]models.Product, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	all, err := collectProducts(session.Query(`SELECT ` + productColumns + ` FROM products`).Iter())
	if err != nil {
		return nil, err
	}
	return filterProducts(all, query, category), nil
}

func (s *ScyllaProducts) AddImageURL(id gocql.UUID, url string) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE products SET image_urls = image_urls + ? WHERE product_id = ?",
		[]string{url}, id).Exec()
}

func collectProducts(iter *gocql.Iter) ([]models.Product, error) {
	var out []models.Product
	var p models.Product
	var createdAt time.Time
	for iter.Scan(&p.ID, &p.Name, &p.Description, &p.Length, &p.Width, &p.Height, &p.Weight,
		&p.Price, &p.Stock, &p.Category, &p.ImageURLs, &p.Customizable, &createdAt) {
		ts := createdAt
		p.CreatedAt = &ts
		out = append(out, p)
		p = models.Product{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// filterProducts applique le filtre recherche/catégorie côté application.
func filterProducts(all []models.Product, query, category string) []models.Product {
	q := strings.ToLower(query)
	var out []models.Product
	for _, p := range all {
		if category != "" && p.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ---------- Categories ----------

func (s *ScyllaCategories) Create(c *models.Category) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	return session.Query("INSERT INTO categories (category_id, name, slug, description, image_url) VALUES (?, ?, ?, ?, ?)",
		c.ID, c.Name, c.Slug, c.Description, c.ImageURL).Exec()
}

func (s *ScyllaCategories) All() ([]models.Category, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query("SELECT category_id, name, slug, description, image_url FROM categories").Iter()
	var out []models.Category
	var c models.Category
	for iter.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.ImageURL) {
		out = append(out, c)
		c = models.Category{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------- Custom products ----------

func (s *ScyllaCustoms) Create(cp *models.CustomProduct) error {
	session, err := database.GetProductsSession()
	if err != nil {
		return err
	}

	if cp.ID == (gocql.UUID{}) {
		cp.ID = gocql.TimeUUID()
	}
	now := time.Now()
	cp.CreatedAt = &now
	return session.Query(`INSERT INTO custom_products (custom_product_id, base_product_id, user_id, customization_details, length, width, height, price, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cp.ID, cp.BaseProductID, cp.UserID, cp.CustomizationDetails,
		cp.Length, cp.Width, cp.Height, cp.Price, cp.ImageURL, now).Exec()
}

func (s *ScyllaCustoms) ByID(id gocql.UUID) (*models.CustomProduct, error) {
	session, err := database.GetProductsSession()
	if err != nil {
		return nil, err
	}

	var cp models.CustomProduct
	var createdAt time.Time
	err = session.Query(`SELECT custom_product_id, base_product_id, user_id, customization_details, length, width, height, price, image_url, created_at
		FROM custom_products WHERE custom_product_id = ?`, id).
		Scan(&cp.ID, &cp.BaseProductID, &cp.UserID, &cp.CustomizationDetails,
			&cp.Length, &cp.Width, &cp.Height, &cp.Price, &cp.ImageURL, &createdAt)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	cp.CreatedAt = &createdAt
	return &cp, nil
}

func (s *ScyllaCustoms) ByIDs(ids []gocql.UUID) (map[gocql.UUID]models.CustomProduct, error) {
	out := make(map[gocql.UUID]models.CustomProduct, len(ids))
	for _, id := range ids {
		cp, err := s.ByID(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out[id] = *cp
	}
	return out, nil
}

// ---------- Cart ----------

func (s *ScyllaCart) Lines(userID string) ([]models.CartLine, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	// line_id est un timeuuid : l'ordre de clustering est l'ordre d'ajout
	iter := session.Query(`SELECT line_id, item_kind, product_id, custom_product_id, quantity
		FROM cart_by_user WHERE user_id = ?`, userID).Iter()

	var out []models.CartLine
	var (
		lineID    gocql.UUID
		kind      string
		productID gocql.UUID
		customID  gocql.UUID
		quantity  int
	)
	for iter.Scan(&lineID, &kind, &productID, &customID, &quantity) {
		out = append(out, models.CartLine{
			ID:     lineID,
			UserID: userID,
			Ref: models.LineRef{
				Kind:            models.LineKind(kind),
				ProductID:       productID,
				CustomProductID: customID,
			},
			Quantity: quantity,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScyllaCart) AddLine(userID string, ref models.LineRef, quantity int) (models.CartLine, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return models.CartLine{}, err
	}

	// Un produit simple déjà présent voit sa quantité incrémentée ;
	// une personnalisation crée toujours une nouvelle ligne.
	if ref.Kind == models.LineProduct {
		lines, err := s.Lines(userID)
		if err != nil {
			return models.CartLine{}, err
		}
		for _, line := range lines {
			if line.Ref.Kind == models.LineProduct && line.Ref.ProductID == ref.ProductID {
				line.Quantity += quantity
				err := session.Query("UPDATE cart_by_user SET quantity = ? WHERE user_id = ? AND line_id = ?",
					line.Quantity, userID, line.ID).Exec()
				return line, err
			}
		}
	}

	line := models.CartLine{
		ID:       gocql.TimeUUID(),
		UserID:   userID,
		Ref:      ref,
		Quantity: quantity,
	}
	err = session.Query(`INSERT INTO cart_by_user (user_id, line_id, item_kind, product_id, custom_product_id, quantity)
		VALUES (?, ?, ?, ?, ?, ?)`,
		userID, line.ID, string(ref.Kind), ref.ProductID, ref.CustomProductID, quantity).Exec()
	return line, err
}

func (s *ScyllaCart) UpdateQuantity(userID string, lineID gocql.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveLine(userID, lineID)
	}

	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE cart_by_user SET quantity = ? WHERE user_id = ? AND line_id = ?",
		quantity, userID, lineID).Exec()
}

func (s *ScyllaCart) RemoveLine(userID string, lineID gocql.UUID) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	// DELETE est idempotent côté CQL
	return session.Query("DELETE FROM cart_by_user WHERE user_id = ? AND line_id = ?", userID, lineID).Exec()
}

func (s *ScyllaCart) Clear(userID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query("DELETE FROM cart_by_user WHERE user_id = ?", userID).Exec()
}

// ---------- Orders ----------

func (s *ScyllaOrders) Create(o *models.Order, items []models.OrderItem) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}

	if err := session.Query(`INSERT INTO orders (order_id, user_id, order_date, total_amount, payment_status, gateway_order_id, payment_id, shipment_id, shipping_address)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.UserID, o.OrderDate, o.TotalAmount, o.PaymentStatus,
		o.GatewayOrderID, o.PaymentID, o.ShipmentID, o.ShippingAddress).Exec(); err != nil {
		return fmt.Errorf("insertion commande: %w", err)
	}
	if err := session.Query("INSERT INTO orders_by_user (user_id, order_date, order_id) VALUES (?, ?, ?)",
		o.UserID, o.OrderDate, o.ID).Exec(); err != nil {
		return err
	}
	if err := session.Query("INSERT INTO orders_by_gateway (gateway_order_id, order_id) VALUES (?, ?)",
		o.GatewayOrderID, o.ID).Exec(); err != nil {
		return err
	}

	for _, item := range items {
		if err := session.Query(`INSERT INTO order_items (order_id, item_id, item_kind, product_id, custom_product_id, name, quantity, price)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.OrderID, item.ID, string(item.Ref.Kind), item.Ref.ProductID,
			item.Ref.CustomProductID, item.Name, item.Quantity, item.Price).Exec(); err != nil {
			return fmt.Errorf("insertion ligne de commande: %w", err)
		}
	}
	return nil
}

func (s *ScyllaOrders) ByID(id gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var o models.Order
	err = session.Query(`SELECT order_id, user_id, order_date, total_amount, payment_status, gateway_order_id, payment_id, shipment_id, shipping_address
		FROM orders WHERE order_id = ?`, id).
		Scan(&o.ID, &o.UserID, &o.OrderDate, &o.TotalAmount, &o.PaymentStatus,
			&o.GatewayOrderID, &o.PaymentID, &o.ShipmentID, &o.ShippingAddress)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var count int
	if err := session.Query("SELECT COUNT(*) FROM order_items WHERE order_id = ?", id).Scan(&count); err == nil {
		o.ItemCount = count
	}
	return &o, nil
}

func (s *ScyllaOrders) ByGatewayOrderID(gatewayOrderID string) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	var orderID gocql.UUID
	err = session.Query("SELECT order_id FROM orders_by_gateway WHERE gateway_order_id = ?", gatewayOrderID).Scan(&orderID)
	if err == gocql.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.ByID(orderID)
}

func (s *ScyllaOrders) ByUser(userID string) ([]models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	// orders_by_user est clusterisé par order_date DESC
	iter := session.Query("SELECT order_id FROM orders_by_user WHERE user_id = ?", userID).Iter()
	var ids []gocql.UUID
	var id gocql.UUID
	for iter.Scan(&id) {
		ids = append(ids, id)
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}

	out := make([]models.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.ByID(id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, nil
}

func (s *ScyllaOrders) Items(orderID gocql.UUID) ([]models.OrderItem, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}

	iter := session.Query(`SELECT item_id, item_kind, product_id, custom_product_id, name, quantity, price
		FROM order_items WHERE order_id = ?`, orderID).Iter()

	var out []models.OrderItem
	var (
		itemID    gocql.UUID
		kind      string
		productID gocql.UUID
		customID  gocql.UUID
		name      string
		quantity  int
		price     float64
	)
	for iter.Scan(&itemID, &kind, &productID, &customID, &name, &quantity, &price) {
		out = append(out, models.OrderItem{
			ID:      itemID,
			OrderID: orderID,
			Ref: models.LineRef{
				Kind:            models.LineKind(kind),
				ProductID:       productID,
				CustomProductID: customID,
			},
			Name:     name,
			Quantity: quantity,
			Price:    price,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *ScyllaOrders) MarkPaid(orderID gocql.UUID, paymentID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE orders SET payment_status = ?, payment_id = ? WHERE order_id = ?",
		models.PaymentStatusPaid, paymentID, orderID).Exec()
}

func (s *ScyllaOrders) SetShipmentID(orderID gocql.UUID, shipmentID string) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return err
	}
	return session.Query("UPDATE orders SET shipment_id = ? WHERE order_id = ?", shipmentID, orderID).Exec()
}
