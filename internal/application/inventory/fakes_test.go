package inventory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{
		events: make([]shared.DomainEvent, 0),
	}
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

// memoryProductRepository stores copies so unsaved mutations stay invisible, like a database
type memoryProductRepository struct {
	mu       sync.Mutex
	products map[uuid.UUID]inventory.Product
	saveErr  error
}

func newMemoryProductRepository() *memoryProductRepository {
	return &memoryProductRepository{products: make(map[uuid.UUID]inventory.Product)}
}

func (r *memoryProductRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &p, nil
}

func (r *memoryProductRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Product, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryProductRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result = append(result, p)
		}
	}
	return result, nil
}

func (r *memoryProductRepository) FindByCode(_ context.Context, code string) (*inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryProductRepository) FindAll(_ context.Context, filter shared.Filter) ([]inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.Product, 0)
	for _, p := range r.products {
		if low, ok := filter.Filters["low_stock"].(bool); ok && low && !p.IsLowStock() {
			continue
		}
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (r *memoryProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	products, err := r.FindAll(ctx, filter)
	return int64(len(products)), err
}

func (r *memoryProductRepository) FindLowStock(ctx context.Context, _ shared.Filter) ([]inventory.Product, error) {
	return r.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{"low_stock": true}})
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
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) SaveWithLock(_ context.Context, product *inventory.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	stored, ok := r.products[product.ID]
	if !ok {
		return shared.ErrNotFound
	}
	if stored.Version != product.Version {
		return shared.ErrConcurrencyConflict
	}
	product.IncrementVersion()
	r.products[product.ID] = *product
	return nil
}

func (r *memoryProductRepository) seed(product *inventory.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
}

type memoryMovementRepository struct {
	mu        sync.Mutex
	movements []inventory.StockMovement
	appendErr error
}

func newMemoryMovementRepository() *memoryMovementRepository {
	return &memoryMovementRepository{}
}

func (r *memoryMovementRepository) Append(_ context.Context, movement *inventory.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	var seq int64
	for _, m := range r.movements {
		if m.ProductID() == movement.ProductID() && m.Sequence() > seq {
			seq = m.Sequence()
		}
	}
	movement.AssignSequence(seq + 1)
	r.movements = append(r.movements, *movement)
	return nil
}

func (r *memoryMovementRepository) matching(match func(m inventory.StockMovement) bool) []inventory.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.StockMovement, 0)
	for i := len(r.movements) - 1; i >= 0; i-- {
		if match(r.movements[i]) {
			result = append(result, r.movements[i])
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
	mu     sync.Mutex
	alerts map[uuid.UUID]inventory.LowStockAlert
}

func newMemoryAlertRepository() *memoryAlertRepository {
	return &memoryAlertRepository{alerts: make(map[uuid.UUID]inventory.LowStockAlert)}
}

func (r *memoryAlertRepository) FindByID(_ context.Context, id uuid.UUID) (*inventory.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

func (r *memoryAlertRepository) FindUnresolvedByProduct(_ context.Context, productID uuid.UUID) (*inventory.LowStockAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
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
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]inventory.LowStockAlert, 0)
	for _, a := range r.alerts {
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
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.alerts {
		if a.ProductID == alert.ProductID && !a.Resolved {
			return shared.ErrAlreadyExists
		}
	}
	r.alerts[alert.ID] = *alert
	return nil
}

func (r *memoryAlertRepository) MarkResolved(_ context.Context, alert *inventory.LowStockAlert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.alerts[alert.ID]
	if !ok || stored.Resolved {
		return shared.ErrAlertAlreadyResolved
	}
	r.alerts[alert.ID] = *alert
	return nil
}

func (r *memoryAlertRepository) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for id, a := range r.alerts {
		if a.Resolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			delete(r.alerts, id)
			deleted++
		}
	}
	return deleted, nil
}

type testRepos struct {
	products  *memoryProductRepository
	movements *memoryMovementRepository
	alerts    *memoryAlertRepository
	scope     *NoOpTransactionScope
}

func newTestRepos() *testRepos {
	r := &testRepos{
		products:  newMemoryProductRepository(),
		movements: newMemoryMovementRepository(),
		alerts:    newMemoryAlertRepository(),
	}
	r.scope = NewNoOpTransactionScope(r.products, r.movements, r.alerts)
	return r
}
