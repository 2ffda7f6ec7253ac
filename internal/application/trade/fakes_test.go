package trade

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

func (m *MockEventPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.events)
}

var errInjected = errors.New("injected failure")

// memoryStore is an in-memory database with all-or-nothing transactions.
// Execute serializes transactions and restores a snapshot when fn fails.
type memoryStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	products  map[uuid.UUID]inventory.Product
	movements []inventory.StockMovement
	alerts    map[uuid.UUID]inventory.LowStockAlert
	sales     map[uuid.UUID]trade.Sale

	// failAppendAt makes the n-th movement append fail (1-based); 0 disables
	failAppendAt  int
	appends       int
	saleCreateErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products: make(map[uuid.UUID]inventory.Product),
		alerts:   make(map[uuid.UUID]inventory.LowStockAlert),
		sales:    make(map[uuid.UUID]trade.Sale),
	}
}

type storeSnapshot struct {
	products  map[uuid.UUID]inventory.Product
	movements []inventory.StockMovement
	alerts    map[uuid.UUID]inventory.LowStockAlert
	sales     map[uuid.UUID]trade.Sale
}

func (s *memoryStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		products:  make(map[uuid.UUID]inventory.Product, len(s.products)),
		movements: append([]inventory.StockMovement(nil), s.movements...),
		alerts:    make(map[uuid.UUID]inventory.LowStockAlert, len(s.alerts)),
		sales:     make(map[uuid.UUID]trade.Sale, len(s.sales)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.alerts {
		snap.alerts[k] = v
	}
	for k, v := range s.sales {
		snap.sales[k] = v
	}
	return snap
}

func (s *memoryStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.movements = snap.movements
	s.alerts = snap.alerts
	s.sales = snap.sales
}

// Execute implements TransactionScope
func (s *memoryStore) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memoryStore) ProductRepo() inventory.ProductRepository {
	return &memoryProductRepository{store: s}
}

func (s *memoryStore) MovementRepo() inventory.StockMovementRepository {
	return &memoryMovementRepository{store: s}
}

func (s *memoryStore) AlertRepo() inventory.LowStockAlertRepository {
	return &memoryAlertRepository{store: s}
}

func (s *memoryStore) SaleRepo() trade.SaleRepository {
	return &memorySaleRepository{store: s}
}

func (s *memoryStore) seed(product *inventory.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[product.ID] = *product
}

func (s *memoryStore) quantity(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Quantity
}

func (s *memoryStore) movementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

func (s *memoryStore) saleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sales)
}

func (s *memoryStore) openAlertCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.alerts {
		if !a.Resolved {
			n++
		}
	}
	return n
}

var _ TransactionScope = (*memoryStore)(nil)
var _ TransactionalRepositories = (*memoryStore)(nil)

type memoryProductRepository struct {
	store *memoryStore
}

func (r *memoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memoryProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	result := make([]inventory.Product, 0, len(ids))
	for _, id := range ids {
		if p, err := r.FindByID(ctx, id); err == nil {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *memoryProductRepository) FindByCode(_ context.Context, code string) (*inventory.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, p := range r.store.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryProductRepository) FindAll(_ context.Context, _ shared.Filter) ([]inventory.Product, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]inventory.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *memoryProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	products, err := r.FindAll(ctx, filter)
	return int64(len(products)), err
}

func (r *memoryProductRepository) FindLowStock(ctx context.Context, filter shared.Filter) ([]inventory.Product, error) {
	all, _ := r.FindAll(ctx, filter)
	result := make([]inventory.Product, 0)
	for _, p := range all {
		if p.IsLowStock() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memoryProductRepository) CountLowStock(ctx context.Context) (int64, error) {
	products, err := r.FindLowStock(ctx, shared.Filter{})
	return int64(len(products)), err
}

func (r *memoryProductRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	return err == nil, nil
}

func (r *memoryProductRepository) Create(_ context.Context, product *inventory.Product) error {
	r.store.seed(product)
	return nil
}

func (r *memoryProductRepository) SaveWithLock(_ context.Context, product *inventory.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version {
		return shared.ErrConcurrencyConflict
	}
	product.IncrementVersion()
	r.store.products[product.ID] = *product
	return nil
}

type memoryMovementRepository struct {
	store *memoryStore
}

func (r *memoryMovementRepository) Append(_ context.Context, movement *inventory.StockMovement) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.appends++
	if r.store.failAppendAt > 0 && r.store.appends == r.store.failAppendAt {
		return errInjected
	}
	var seq int64
	for _, m := range r.store.movements {
		if m.ProductID() == movement.ProductID() && m.Sequence() > seq {
			seq = m.Sequence()
		}
	}
	movement.AssignSequence(seq + 1)
	r.store.movements = append(r.store.movements, *movement)
	return nil
}

func (r *memoryMovementRepository) matching(match func(m inventory.StockMovement) bool) []inventory.StockMovement {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]inventory.StockMovement, 0)
	for i := len(r.store.movements) - 1; i >= 0; i-- {
		if match(r.store.movements[i]) {
			result = append(result, r.store.movements[i])
		}
	}
	return result
}

func (r *memoryMovementRepository) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	return r.matching(func(m inventory.StockMovement) bool { return m.ProductID() == productID }), nil
}

func (r *memoryMovementRepository) FindByDateRange(_ context.Context, start, end time.Time, _ shared.Filter) ([]inventory.StockMovement, error) {
	return r.matching(func(m inventory.StockMovement) bool {
		return !m.CreatedAt().Before(start) && !m.CreatedAt().After(end)
	}), nil
}

func (r *memoryMovementRepository) FindByActor(_ context.Context, actorID uuid.UUID, _ shared.Filter) ([]inventory.StockMovement, error) {
	return r.matching(func(m inventory.StockMovement) bool { return m.ActorID() == actorID }), nil
}

func (r *memoryMovementRepository) FindByRelatedID(_ context.Context, relatedID uuid.UUID) ([]inventory.StockMovement, error) {
	return r.matching(func(m inventory.StockMovement) bool {
		return m.RelatedID() != nil && *m.RelatedID() == relatedID
	}), nil
}

func (r *memoryMovementRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	movements, _ := r.FindByProduct(ctx, productID, shared.Filter{})
	return int64(len(movements)), nil
}

type memoryAlertRepository struct {
	store *memoryStore
}

func (r *memoryAlertRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.LowStockAlert, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	a, ok := r.store.alerts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r *memoryAlertRepository) FindUnresolvedByProduct(_ context.Context, productID uuid.UUID) (*inventory.LowStockAlert, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.alerts {
		if a.ProductID == productID && !a.Resolved {
			return &a, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryAlertRepository) ExistsUnresolved(ctx context.Context, productID uuid.UUID) (bool, error) {
	_, err := r.FindUnresolvedByProduct(ctx, productID)
	return err == nil, nil
}

func (r *memoryAlertRepository) FindUnresolved(_ context.Context, _ shared.Filter) ([]inventory.LowStockAlert, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]inventory.LowStockAlert, 0)
	for _, a := range r.store.alerts {
		if !a.Resolved {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *memoryAlertRepository) CountUnresolved(ctx context.Context) (int64, error) {
	alerts, _ := r.FindUnresolved(ctx, shared.Filter{})
	return int64(len(alerts)), nil
}

func (r *memoryAlertRepository) Create(_ context.Context, alert *inventory.LowStockAlert) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.alerts {
		if a.ProductID == alert.ProductID && !a.Resolved {
			return shared.ErrAlreadyExists
		}
	}
	r.store.alerts[alert.ID] = *alert
	return nil
}

func (r *memoryAlertRepository) MarkResolved(_ context.Context, alert *inventory.LowStockAlert) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.alerts[alert.ID]
	if !ok || stored.Resolved {
		return shared.ErrAlertAlreadyResolved
	}
	r.store.alerts[alert.ID] = *alert
	return nil
}

func (r *memoryAlertRepository) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var deleted int64
	for id, a := range r.store.alerts {
		if a.Resolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			delete(r.store.alerts, id)
			deleted++
		}
	}
	return deleted, nil
}

type memorySaleRepository struct {
	store *memoryStore
}

func (r *memorySaleRepository) FindByID(_ context.Context, id uuid.UUID) (*trade.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sales[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return s.Clone(), nil
}

func (r *memorySaleRepository) FindByReceiptNumber(_ context.Context, receiptNumber string) (*trade.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sales {
		if s.ReceiptNumber == receiptNumber {
			return s.Clone(), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memorySaleRepository) FindByDateRange(_ context.Context, start, end time.Time, _ shared.Filter) ([]trade.Sale, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	result := make([]trade.Sale, 0)
	for _, s := range r.store.sales {
		if s.CompletedAt != nil && !s.CompletedAt.Before(start) && !s.CompletedAt.After(end) {
			result = append(result, *s.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CompletedAt.After(*result[j].CompletedAt) })
	return result, nil
}

func (r *memorySaleRepository) CountByDateRange(ctx context.Context, start, end time.Time) (int64, error) {
	sales, _ := r.FindByDateRange(ctx, start, end, shared.Filter{})
	return int64(len(sales)), nil
}

func (r *memorySaleRepository) Create(_ context.Context, sale *trade.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.saleCreateErr != nil {
		return r.store.saleCreateErr
	}
	if _, ok := r.store.sales[sale.ID]; ok {
		return shared.ErrAlreadyExists
	}
	r.store.sales[sale.ID] = *sale.Clone()
	return nil
}

func (r *memorySaleRepository) UpdateStatus(_ context.Context, sale *trade.Sale) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sales[sale.ID]; !ok {
		return shared.ErrNotFound
	}
	r.store.sales[sale.ID] = *sale.Clone()
	return nil
}

// memoryCartStore is a map-backed trade.CartStore
type memoryCartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*trade.Sale
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: make(map[uuid.UUID]*trade.Sale)}
}

func (s *memoryCartStore) Save(_ context.Context, cart *trade.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = cart.Clone()
	return nil
}

func (s *memoryCartStore) Get(_ context.Context, id uuid.UUID) (*trade.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return cart.Clone(), nil
}

func (s *memoryCartStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, id)
	return nil
}

var decimal10pct = decimal.RequireFromString("0.10")

func newTestProcessor(store *memoryStore, policy appinv.AlertPolicy) (*SaleProcessor, *MockEventPublisher) {
	processor := NewSaleProcessor(
		store.ProductRepo(),
		store,
		appinv.NewProductLocker(16),
		appinv.NewStockChanger(policy, nil),
		trade.NewRandomReceiptNumberGenerator("TEST"),
		SaleProcessorConfig{TaxRate: decimal10pct, CommitTimeout: time.Second},
		nil,
	)
	publisher := NewMockEventPublisher()
	processor.SetEventPublisher(publisher)
	return processor, publisher
}
