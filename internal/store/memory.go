package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"giftbox_back_end/internal/models"

	"github.com/gocql/gocql"
)

// memoryDB est l'état partagé du backend en mémoire, utilisé par les
// tests et par le mode STORE_BACKEND=memory (développement sans ScyllaDB).
type memoryDB struct {
	mu           sync.Mutex
	users        map[string]*models.User
	usersByEmail map[string]string
	products     map[gocql.UUID]*models.Product
	productOrder []gocql.UUID
	categories   []models.Category
	customs      map[gocql.UUID]*models.CustomProduct
	cartLines    map[string][]models.CartLine // user_id → lignes, ordre d'insertion
	orders       map[gocql.UUID]*models.Order
	ordersByGw   map[string]gocql.UUID
	orderItems   map[gocql.UUID][]models.OrderItem
}

func newMemoryDB() *memoryDB {
	return &memoryDB{
		users:        make(map[string]*models.User),
		usersByEmail: make(map[string]string),
		products:     make(map[gocql.UUID]*models.Product),
		customs:      make(map[gocql.UUID]*models.CustomProduct),
		cartLines:    make(map[string][]models.CartLine),
		orders:       make(map[gocql.UUID]*models.Order),
		ordersByGw:   make(map[string]gocql.UUID),
		orderItems:   make(map[gocql.UUID][]models.OrderItem),
	}
}

type MemoryUsers struct{ db *memoryDB }
type MemoryProducts struct{ db *memoryDB }
type MemoryCategories struct{ db *memoryDB }
type MemoryCustoms struct{ db *memoryDB }
type MemoryCart struct{ db *memoryDB }
type MemoryOrders struct{ db *memoryDB }

// ---------- Users ----------

func (s *MemoryUsers) Create(u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.usersByEmail[u.Email]; exists {
		return ErrDuplicate
	}
	for _, existing := range s.db.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}

	now := time.Now()
	u.CreatedAt = &now
	cp := *u
	s.db.users[u.ID] = &cp
	s.db.usersByEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUsers) ByID(id string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	u, ok := s.db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryUsers) ByEmail(email string) (*models.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.usersByEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.db.users[id]
	return &cp, nil
}

func (s *MemoryUsers) Update(u *models.User) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, ok := s.db.users[u.ID]; !ok {
		return ErrNotFound
	}
	now := time.Now()
	u.UpdatedAt = &now
	cp := *u
	s.db.users[u.ID] = &cp
	return nil
}

// ---------- Products ----------

func (s *MemoryProducts) Create(p *models.Product) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if p.ID == (gocql.UUID{}) {
		p.ID = gocql.TimeUUID()
	}
	cp := *p
	s.db.products[p.ID] = &cp
	s.db.productOrder = append(s.db.productOrder, p.ID)
	return nil
}

func (s *MemoryProducts) ByID(id gocql.UUID) (*models.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryProducts) ByIDs(ids []gocql.UUID) (map[gocql.UUID]models.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make(map[gocql.UUID]models.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.db.products[id]; ok {
			out[id] = *p
		}
	}
	return out, nil
}

func (s *MemoryProducts) Featured(limit int) ([]models.Product, error) {
	return s.list(limit, func(models.Product) bool { return true })
}

func (s *MemoryProducts) Customizable(limit int) ([]models.Product, error) {
	return s.list(limit, func(p models.Product) bool { return p.Customizable })
}

func (s *MemoryProducts) list(limit int, keep func(models.Product) bool) ([]models.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.Product
	for _, id := range s.db.productOrder {
		p := *s.db.products[id]
		if !keep(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *MemoryProducts) Search(query, category string) ([]models.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	q := strings.ToLower(query)
	var out []models.Product
	for _, id := range s.db.productOrder {
		p := *s.db.products[id]
		if category != "" && p.Category != category {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *MemoryProducts) AddImageURL(id gocql.UUID, url string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	p, ok := s.db.products[id]
	if !ok {
		return ErrNotFound
	}
	p.ImageURLs = append(p.ImageURLs, url)
	return nil
}

// ---------- Categories ----------

func (s *MemoryCategories) Create(c *models.Category) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if c.ID == (gocql.UUID{}) {
		c.ID = gocql.TimeUUID()
	}
	s.db.categories = append(s.db.categories, *c)
	return nil
}

func (s *MemoryCategories) All() ([]models.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make([]models.Category, len(s.db.categories))
	copy(out, s.db.categories)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ---------- Custom products ----------

func (s *MemoryCustoms) Create(cp *models.CustomProduct) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if cp.ID == (gocql.UUID{}) {
		cp.ID = gocql.TimeUUID()
	}
	now := time.Now()
	cp.CreatedAt = &now
	c := *cp
	s.db.customs[cp.ID] = &c
	return nil
}

func (s *MemoryCustoms) ByID(id gocql.UUID) (*models.CustomProduct, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cp, ok := s.db.customs[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := *cp
	return &c, nil
}

func (s *MemoryCustoms) ByIDs(ids []gocql.UUID) (map[gocql.UUID]models.CustomProduct, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := make(map[gocql.UUID]models.CustomProduct, len(ids))
	for _, id := range ids {
		if cp, ok := s.db.customs[id]; ok {
			out[id] = *cp
		}
	}
	return out, nil
}

// ---------- Cart ----------

func (s *MemoryCart) Lines(userID string) ([]models.CartLine, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	lines := s.db.cartLines[userID]
	out := make([]models.CartLine, len(lines))
	copy(out, lines)
	return out, nil
}

func (s *MemoryCart) AddLine(userID string, ref models.LineRef, quantity int) (models.CartLine, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	lines := s.db.cartLines[userID]

	// Un produit simple déjà présent voit sa quantité incrémentée ;
	// une personnalisation crée toujours une nouvelle ligne.
	if ref.Kind == models.LineProduct {
		for i := range lines {
			if lines[i].Ref.Kind == models.LineProduct && lines[i].Ref.ProductID == ref.ProductID {
				lines[i].Quantity += quantity
				s.db.cartLines[userID] = lines
				return lines[i], nil
			}
		}
	}

	line := models.CartLine{
		ID:       gocql.TimeUUID(),
		UserID:   userID,
		Ref:      ref,
		Quantity: quantity,
	}
	s.db.cartLines[userID] = append(lines, line)
	return line, nil
}

func (s *MemoryCart) UpdateQuantity(userID string, lineID gocql.UUID, quantity int) error {
	if quantity <= 0 {
		return s.RemoveLine(userID, lineID)
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	lines := s.db.cartLines[userID]
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = quantity
			s.db.cartLines[userID] = lines
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryCart) RemoveLine(userID string, lineID gocql.UUID) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	lines := s.db.cartLines[userID]
	out := lines[:0]
	for _, line := range lines {
		if line.ID != lineID {
			out = append(out, line)
		}
	}
	s.db.cartLines[userID] = out
	return nil
}

func (s *MemoryCart) Clear(userID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	delete(s.db.cartLines, userID)
	return nil
}

// ---------- Orders ----------

func (s *MemoryOrders) Create(o *models.Order, items []models.OrderItem) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cp := *o
	s.db.orders[o.ID] = &cp
	s.db.ordersByGw[o.GatewayOrderID] = o.ID
	s.db.orderItems[o.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (s *MemoryOrders) ByID(id gocql.UUID) (*models.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.byIDLocked(id)
}

func (s *MemoryOrders) byIDLocked(id gocql.UUID) (*models.Order, error) {
	o, ok := s.db.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.ItemCount = len(s.db.orderItems[id])
	return &cp, nil
}

func (s *MemoryOrders) ByGatewayOrderID(gatewayOrderID string) (*models.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	id, ok := s.db.ordersByGw[gatewayOrderID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.byIDLocked(id)
}

func (s *MemoryOrders) ByUser(userID string) ([]models.Order, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	var out []models.Order
	for id, o := range s.db.orders {
		if o.UserID != userID {
			continue
		}
		cp := *o
		cp.ItemCount = len(s.db.orderItems[id])
		out = append(out, cp)
	}
	// Les plus récentes d'abord, comme la page compte.
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (s *MemoryOrders) Items(orderID gocql.UUID) ([]models.OrderItem, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	items := s.db.orderItems[orderID]
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *MemoryOrders) MarkPaid(orderID gocql.UUID, paymentID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	o, ok := s.db.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = models.PaymentStatusPaid
	o.PaymentID = paymentID
	return nil
}

func (s *MemoryOrders) SetShipmentID(orderID gocql.UUID, shipmentID string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	o, ok := s.db.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	o.ShipmentID = shipmentID
	return nil
}
