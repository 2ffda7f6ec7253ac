package inventory

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const (
	// DefaultCommitTimeout bounds one stock-changing transaction
	DefaultCommitTimeout = 10 * time.Second

	// ReasonInitialStock is recorded on the restock created with a new product
	ReasonInitialStock = "initial stock"
)

// StockServiceConfig holds the tunables of StockService
type StockServiceConfig struct {
	CommitTimeout time.Duration
	AlertPolicy   AlertPolicy
}

// StockService handles the product catalogue and every non-sale stock change.
// Restock, Adjust and Deactivate all run through the same StockChanger that
// sales use, so the ledger, audit log and alert register cannot drift apart.
type StockService struct {
	productRepo    inventory.ProductRepository
	movementRepo   inventory.StockMovementRepository
	alertRepo      inventory.LowStockAlertRepository
	txScope        TransactionScope
	locker         *ProductLocker
	changer        *StockChanger
	actors         shared.ActorProvider
	eventPublisher shared.EventPublisher
	commitTimeout  time.Duration
	logger         *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	productRepo inventory.ProductRepository,
	movementRepo inventory.StockMovementRepository,
	alertRepo inventory.LowStockAlertRepository,
	txScope TransactionScope,
	locker *ProductLocker,
	cfg StockServiceConfig,
	logger *zap.Logger,
) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = NewProductLocker(DefaultLockStripes)
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = DefaultCommitTimeout
	}
	return &StockService{
		productRepo:   productRepo,
		movementRepo:  movementRepo,
		alertRepo:     alertRepo,
		txScope:       txScope,
		locker:        locker,
		changer:       NewStockChanger(cfg.AlertPolicy, logger),
		actors:        shared.ContextActorProvider{},
		commitTimeout: cfg.CommitTimeout,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetActorProvider overrides how the acting user is resolved from the context
func (s *StockService) SetActorProvider(provider shared.ActorProvider) {
	s.actors = provider
}

// publishEvents publishes committed events; failures are logged, never propagated
func (s *StockService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish stock events", zap.Error(err))
	}
}

// CreateProduct registers a product. Initial stock is recorded as a RESTOCK movement.
func (s *StockService) CreateProduct(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.productRepo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Product code "+code+" already exists")
	}
	if req.InitialQuantity < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Initial quantity cannot be negative")
	}

	product, err := inventory.NewProduct(code, req.Name, req.Category, req.UnitPrice, req.MinStock)
	if err != nil {
		return nil, err
	}

	actor := shared.CurrentActor(ctx, s.actors)
	var events []shared.DomainEvent
	err = s.inTransaction(ctx, func(txCtx context.Context, repos TransactionalRepositories) error {
		if err := repos.ProductRepo().Create(txCtx, product); err != nil {
			return err
		}
		if req.InitialQuantity > 0 {
			result, err := s.changer.Apply(txCtx, repos, StockChange{
				ProductID: product.ID,
				Type:      inventory.MovementTypeRestock,
				Delta:     req.InitialQuantity,
				Reason:    ReasonInitialStock,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			product = result.Product
			events = result.Events()
			return nil
		}
		alert, err := NewAlertRegister(repos.AlertRepo(), s.logger).Evaluate(txCtx, product)
		if err != nil {
			return err
		}
		if alert != nil {
			events = append(events, inventory.NewLowStockAlertTriggeredEvent(alert, product))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, events)

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("code", product.Code),
		zap.Int("initial_quantity", product.Quantity),
	)
	response := ToProductResponse(product)
	return &response, nil
}

// GetProduct retrieves a product by ID
func (s *StockService) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetProductByCode retrieves a product by its code
func (s *StockService) GetProductByCode(ctx context.Context, code string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	response := ToProductResponse(product)
	return &response, nil
}

// GetQuantity returns the current on-hand quantity of a product
func (s *StockService) GetQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	return NewStockLedger(s.productRepo).GetQuantity(ctx, productID)
}

// ListProducts lists products with filtering and pagination
func (s *StockService) ListProducts(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "code"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}
	domainFilter := toDomainFilter(filter.Page, filter.PageSize)
	domainFilter.OrderBy = filter.OrderBy
	domainFilter.OrderDir = filter.OrderDir
	domainFilter.Search = filter.Search
	if filter.Category != "" {
		domainFilter.Filters["category"] = filter.Category
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// ListLowStock lists active products at or below their threshold, lowest quantity first
func (s *StockService) ListLowStock(ctx context.Context, filter PageFilter) ([]ProductResponse, int64, error) {
	domainFilter := toDomainFilter(filter.Page, filter.PageSize)
	domainFilter.OrderBy = "quantity"
	domainFilter.OrderDir = "asc"

	products, err := s.productRepo.FindLowStock(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.CountLowStock(ctx)
	if err != nil {
		return nil, 0, err
	}
	return ToProductResponses(products), total, nil
}

// UpdateProduct changes catalogue attributes and may reactivate a product.
// A threshold change is re-evaluated against the alert register.
func (s *StockService) UpdateProduct(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	if req.Active != nil && !*req.Active {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Use deactivate to take a product out of sale")
	}

	unlock := s.locker.Lock(productID)
	defer unlock()

	var (
		product *inventory.Product
		events  []shared.DomainEvent
	)
	err := s.inTransaction(ctx, func(txCtx context.Context, repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByIDForUpdate(txCtx, productID)
		if err != nil {
			return err
		}

		name, category, price, minStock := product.Name, product.Category, product.UnitPrice, product.MinStock
		if req.Name != nil {
			name = *req.Name
		}
		if req.Category != nil {
			category = *req.Category
		}
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		if req.MinStock != nil {
			minStock = *req.MinStock
		}
		if err := product.UpdateDetails(name, category, price, minStock); err != nil {
			return err
		}
		if req.Active != nil && *req.Active {
			product.Activate()
		}
		if err := NewStockLedger(repos.ProductRepo()).save(txCtx, product); err != nil {
			return err
		}

		alert, err := NewAlertRegister(repos.AlertRepo(), s.logger).Evaluate(txCtx, product)
		if err != nil {
			return err
		}
		if alert != nil {
			events = append(events, inventory.NewLowStockAlertTriggeredEvent(alert, product))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishEvents(ctx, events)

	response := ToProductResponse(product)
	return &response, nil
}

// Restock receives qty units of a product
func (s *StockService) Restock(ctx context.Context, productID uuid.UUID, req RestockRequest) (*StockChangeResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Restock quantity must be positive")
	}
	return s.applyChange(ctx, StockChange{
		ProductID: productID,
		Type:      inventory.MovementTypeRestock,
		Delta:     req.Quantity,
		Reason:    req.Reason,
	})
}

// Adjust applies a manual correction. Negative adjustments cannot take the
// quantity below zero.
func (s *StockService) Adjust(ctx context.Context, productID uuid.UUID, req AdjustStockRequest) (*StockChangeResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Adjustment cannot be zero")
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Adjustment reason is required")
	}
	return s.applyChange(ctx, StockChange{
		ProductID: productID,
		Type:      inventory.MovementTypeAdjustment,
		Delta:     req.Delta,
		Reason:    req.Reason,
	})
}

// Deactivate takes a product out of sale. History and quantity are kept unless
// a write-off is requested.
func (s *StockService) Deactivate(ctx context.Context, productID uuid.UUID, req DeactivateProductRequest) (*StockChangeResponse, error) {
	reason := req.Reason
	if reason == "" {
		reason = ResolutionNoteDeactivated
	}
	return s.applyChange(ctx, StockChange{
		ProductID: productID,
		Type:      inventory.MovementTypeDeactivation,
		WriteOff:  req.WriteOff,
		Reason:    reason,
	})
}

// ListMovementsByProduct returns the audit trail of one product, newest first
func (s *StockService) ListMovementsByProduct(ctx context.Context, productID uuid.UUID, filter PageFilter) ([]StockMovementResponse, int64, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, 0, err
	}
	movements, total, err := NewAuditLog(s.movementRepo).QueryByProduct(ctx, productID, toDomainFilter(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	return ToStockMovementResponses(movements), total, nil
}

// ListMovementsByDateRange returns movements recorded in a time window
func (s *StockService) ListMovementsByDateRange(ctx context.Context, filter MovementRangeFilter) ([]StockMovementResponse, error) {
	movements, err := NewAuditLog(s.movementRepo).QueryByDateRange(ctx, filter.From, filter.To, toDomainFilter(filter.Page, filter.PageSize))
	if err != nil {
		return nil, err
	}
	return ToStockMovementResponses(movements), nil
}

// ListMovementsByActor returns movements recorded by one user
func (s *StockService) ListMovementsByActor(ctx context.Context, actorID uuid.UUID, filter PageFilter) ([]StockMovementResponse, error) {
	movements, err := NewAuditLog(s.movementRepo).QueryByUser(ctx, actorID, toDomainFilter(filter.Page, filter.PageSize))
	if err != nil {
		return nil, err
	}
	return ToStockMovementResponses(movements), nil
}

// applyChange runs one change under the product lock and a bounded transaction,
// then publishes its events.
func (s *StockService) applyChange(ctx context.Context, change StockChange) (*StockChangeResponse, error) {
	change.Actor = shared.CurrentActor(ctx, s.actors)

	unlock := s.locker.Lock(change.ProductID)
	defer unlock()

	var result *StockChangeResult
	err := s.inTransaction(ctx, func(txCtx context.Context, repos TransactionalRepositories) error {
		var err error
		result, err = s.changer.Apply(txCtx, repos, change)
		return err
	})
	if err != nil {
		s.logger.Warn("stock change rejected",
			zap.String("product_id", change.ProductID.String()),
			zap.String("type", change.Type.String()),
			zap.Int("delta", change.Delta),
			zap.Error(err),
		)
		return nil, err
	}
	s.publishEvents(ctx, result.Events())

	response := ToStockChangeResponse(result)
	return &response, nil
}

// inTransaction executes fn in the transaction scope with the commit timeout applied
func (s *StockService) inTransaction(ctx context.Context, fn func(ctx context.Context, repos TransactionalRepositories) error) error {
	txCtx, cancel := context.WithTimeout(ctx, s.commitTimeout)
	defer cancel()

	err := s.txScope.Execute(txCtx, func(repos TransactionalRepositories) error {
		return fn(txCtx, repos)
	})
	if err != nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) && !shared.IsDomainError(err) {
		return shared.WrapDomainError(shared.CodePersistence, "Stock change timed out", err)
	}
	return err
}

// toDomainFilter builds a paginated filter with defaults applied
func toDomainFilter(page, pageSize int) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	return filter
}
