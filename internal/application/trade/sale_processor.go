package trade

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"github.com/retail/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProcessingState is the state of one checkout attempt
type ProcessingState string

const (
	StateBuilding   ProcessingState = "BUILDING"
	StateValidating ProcessingState = "VALIDATING"
	StateReserving  ProcessingState = "RESERVING"
	StateCommitting ProcessingState = "COMMITTING"
	StateCompleted  ProcessingState = "COMPLETED"
	StateFailed     ProcessingState = "FAILED"
)

// String returns the string representation of ProcessingState
func (s ProcessingState) String() string {
	return string(s)
}

// CanTransitionTo checks if the state can transition to the target state.
// Validation and stock failures return to BUILDING so the cart can be corrected;
// once COMMITTING has begun the only exits are COMPLETED and FAILED.
func (s ProcessingState) CanTransitionTo(target ProcessingState) bool {
	switch s {
	case StateBuilding:
		return target == StateValidating
	case StateValidating:
		return target == StateReserving || target == StateBuilding || target == StateFailed
	case StateReserving:
		return target == StateCommitting || target == StateBuilding || target == StateFailed
	case StateCommitting:
		return target == StateCompleted || target == StateFailed
	default:
		return false
	}
}

// IsTerminal returns true for COMPLETED and FAILED
func (s ProcessingState) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CheckoutError reports where a checkout stopped. Unwrap exposes the cause, so
// errors.As still finds *inventory.InsufficientStockError and domain errors.
type CheckoutError struct {
	SaleID uuid.UUID
	// Stage is the state the failure happened in
	Stage ProcessingState
	// State is where the checkout ended: BUILDING if the cart can be fixed and resubmitted, FAILED otherwise
	State ProcessingState
	Err   error
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("checkout of sale %s failed during %s: %v", e.SaleID, e.Stage, e.Err)
}

// Unwrap returns the triggering error
func (e *CheckoutError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether the cart is still usable
func (e *CheckoutError) Recoverable() bool {
	return e.State == StateBuilding
}

// CheckoutResult is returned for a committed sale
type CheckoutResult struct {
	Sale            *trade.Sale
	Movements       []*inventory.StockMovement
	TriggeredAlerts []*inventory.LowStockAlert
	Transitions     []ProcessingState
	Duration        time.Duration
}

// SaleProcessorConfig holds the tunables of SaleProcessor
type SaleProcessorConfig struct {
	TaxRate       decimal.Decimal
	CommitTimeout time.Duration
}

// SaleProcessor turns a PENDING sale into a COMPLETED one. Availability is checked
// and the commit performed inside one critical section per product: the in-process
// ProductLocker plus row locks in the transaction.
type SaleProcessor struct {
	productRepo    inventory.ProductRepository
	txScope        TransactionScope
	locker         *appinv.ProductLocker
	changer        *appinv.StockChanger
	receipts       trade.ReceiptNumberGenerator
	actors         shared.ActorProvider
	eventPublisher shared.EventPublisher
	metrics        *telemetry.BusinessMetrics
	taxRate        decimal.Decimal
	commitTimeout  time.Duration
	logger         *zap.Logger
}

// NewSaleProcessor creates a new SaleProcessor
func NewSaleProcessor(
	productRepo inventory.ProductRepository,
	txScope TransactionScope,
	locker *appinv.ProductLocker,
	changer *appinv.StockChanger,
	receipts trade.ReceiptNumberGenerator,
	cfg SaleProcessorConfig,
	logger *zap.Logger,
) *SaleProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CommitTimeout <= 0 {
		cfg.CommitTimeout = appinv.DefaultCommitTimeout
	}
	if receipts == nil {
		receipts = trade.NewRandomReceiptNumberGenerator("")
	}
	return &SaleProcessor{
		productRepo:   productRepo,
		txScope:       txScope,
		locker:        locker,
		changer:       changer,
		receipts:      receipts,
		actors:        shared.ContextActorProvider{},
		taxRate:       cfg.TaxRate,
		commitTimeout: cfg.CommitTimeout,
		logger:        logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (p *SaleProcessor) SetEventPublisher(publisher shared.EventPublisher) {
	p.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics recorder
func (p *SaleProcessor) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	p.metrics = bm
}

// SetActorProvider overrides how the acting user is resolved from the context
func (p *SaleProcessor) SetActorProvider(provider shared.ActorProvider) {
	p.actors = provider
}

// TaxRate returns the rate applied to new sales
func (p *SaleProcessor) TaxRate() decimal.Decimal {
	return p.taxRate
}

// NewSale starts an empty cart for the current actor
func (p *SaleProcessor) NewSale(ctx context.Context) (*trade.Sale, error) {
	return trade.NewSale(p.receipts.Next(time.Now()), p.taxRate, shared.CurrentActor(ctx, p.actors))
}

// checkout tracks the state machine of one Process call
type checkout struct {
	saleID      uuid.UUID
	state       ProcessingState
	transitions []ProcessingState
	logger      *zap.Logger
}

func newCheckout(saleID uuid.UUID, logger *zap.Logger) *checkout {
	return &checkout{
		saleID:      saleID,
		state:       StateBuilding,
		transitions: []ProcessingState{StateBuilding},
		logger:      logger,
	}
}

func (c *checkout) to(target ProcessingState) {
	if !c.state.CanTransitionTo(target) {
		// programming error in the processor, never user input
		panic(fmt.Sprintf("illegal checkout transition %s -> %s", c.state, target))
	}
	c.logger.Debug("checkout transition",
		zap.String("sale_id", c.saleID.String()),
		zap.String("from", c.state.String()),
		zap.String("to", target.String()),
	)
	c.state = target
	c.transitions = append(c.transitions, target)
}

// Process validates, reserves and commits the sale. On success the passed sale is
// updated to its COMPLETED form. On failure it is left untouched and PENDING, and the
// returned *CheckoutError tells whether the cart can be corrected and resubmitted.
func (p *SaleProcessor) Process(ctx context.Context, sale *trade.Sale) (*CheckoutResult, error) {
	if sale == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Sale is required")
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "SaleProcessor", "Process",
		telemetry.WithAttribute(telemetry.SpanAttrSaleID, sale.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrSaleLines, sale.ItemCount()),
	)
	defer span.End()

	start := time.Now()
	run := newCheckout(sale.ID, p.logger)
	working := sale.Clone()

	run.to(StateValidating)
	working.Recalculate()
	if err := working.Validate(); err != nil {
		run.to(StateBuilding)
		return nil, p.fail(ctx, run, StateValidating, err, start)
	}

	actor := shared.CurrentActor(ctx, p.actors)
	unlock := p.locker.Lock(working.ProductIDs()...)
	defer unlock()

	txCtx, cancel := context.WithTimeout(ctx, p.commitTimeout)
	defer cancel()

	var results []*appinv.StockChangeResult
	err := p.txScope.Execute(txCtx, func(repos TransactionalRepositories) error {
		run.to(StateReserving)
		if err := p.reserve(txCtx, repos, working); err != nil {
			return err
		}

		run.to(StateCommitting)
		if err := repos.SaleRepo().Create(txCtx, working); err != nil {
			return persistenceError(err, "Failed to record sale")
		}
		for _, item := range working.Items {
			saleID := working.ID
			result, err := p.changer.Apply(txCtx, repos, appinv.StockChange{
				ProductID: item.ProductID,
				Type:      inventory.MovementTypeSale,
				Delta:     -item.Quantity,
				Reason:    "sale " + working.ReceiptNumber,
				RelatedID: &saleID,
				Actor:     actor,
			})
			if err != nil {
				return err
			}
			results = append(results, result)
		}
		if err := working.Complete(); err != nil {
			return err
		}
		if err := repos.SaleRepo().UpdateStatus(txCtx, working); err != nil {
			return persistenceError(err, "Failed to complete sale")
		}
		return nil
	})
	if err != nil {
		stage := run.state
		if errors.Is(txCtx.Err(), context.DeadlineExceeded) && !shared.IsDomainError(err) {
			err = shared.WrapDomainError(shared.CodePersistence, "Sale commit timed out and was rolled back", err)
		}
		if stage == StateReserving && recoverable(err) {
			run.to(StateBuilding)
		} else {
			run.to(StateFailed)
		}
		telemetry.RecordError(span, err)
		return nil, p.fail(ctx, run, stage, err, start)
	}
	run.to(StateCompleted)

	events := working.GetDomainEvents()
	working.ClearDomainEvents()
	*sale = *working

	result := &CheckoutResult{
		Sale:        sale,
		Transitions: run.transitions,
		Duration:    time.Since(start),
	}
	for _, r := range results {
		result.Movements = append(result.Movements, r.Movement)
		if r.TriggeredAlert != nil {
			result.TriggeredAlerts = append(result.TriggeredAlerts, r.TriggeredAlert)
		}
		events = append(events, r.Events()...)
	}
	p.publishEvents(ctx, events)

	if p.metrics != nil {
		p.metrics.RecordCheckoutDuration(ctx, result.Duration, string(StateCompleted))
	}
	telemetry.SetOK(span)
	p.logger.Info("sale completed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.Int("lines", sale.ItemCount()),
		zap.Int("triggered_alerts", len(result.TriggeredAlerts)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// QuickSale builds a one-line sale and processes it immediately
func (p *SaleProcessor) QuickSale(ctx context.Context, req QuickSaleRequest) (*CheckoutResult, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeValidation, "Quantity must be positive")
	}
	product, err := p.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	sale, err := p.NewSale(ctx)
	if err != nil {
		return nil, err
	}
	if err := sale.AddItem(product.ID, product.Name, product.Category, req.Quantity, product.UnitPrice); err != nil {
		return nil, err
	}
	if req.PaymentMethod != "" {
		if err := sale.SetPaymentMethod(trade.PaymentMethod(req.PaymentMethod)); err != nil {
			return nil, err
		}
	}
	return p.Process(ctx, sale)
}

// reserve re-reads every line's product under lock and checks it can be sold.
// Products are visited in id order so concurrent checkouts lock rows consistently.
func (p *SaleProcessor) reserve(ctx context.Context, repos TransactionalRepositories, sale *trade.Sale) error {
	items := make([]trade.SaleItem, len(sale.Items))
	copy(items, sale.Items)
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].ProductID[:], items[j].ProductID[:]) < 0
	})

	for _, item := range items {
		product, err := repos.ProductRepo().FindByIDForUpdate(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError(shared.CodeNotFound,
					fmt.Sprintf("Product %s (%s) no longer exists", item.ProductName, item.ProductID))
			}
			return persistenceError(err, "Failed to read stock")
		}
		if err := product.EnsureSellable(item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (p *SaleProcessor) fail(ctx context.Context, run *checkout, stage ProcessingState, err error, start time.Time) error {
	if p.metrics != nil {
		p.metrics.RecordCheckoutFailed(ctx, string(stage), shared.ErrorCode(err))
		p.metrics.RecordCheckoutDuration(ctx, time.Since(start), string(run.state))
	}

	fields := []zap.Field{
		zap.String("sale_id", run.saleID.String()),
		zap.String("stage", stage.String()),
		zap.String("state", run.state.String()),
		zap.Error(err),
	}
	if run.state == StateFailed {
		p.logger.Error("sale commit failed and was rolled back", fields...)
	} else {
		p.logger.Info("sale rejected", fields...)
	}
	return &CheckoutError{SaleID: run.saleID, Stage: stage, State: run.state, Err: err}
}

func (p *SaleProcessor) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if p.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := p.eventPublisher.Publish(ctx, events...); err != nil {
		p.logger.Warn("failed to publish sale events", zap.Error(err))
	}
}

// recoverable reports whether a failure leaves the cart fixable by the cashier
func recoverable(err error) bool {
	switch shared.ErrorCode(err) {
	case shared.CodeValidation, shared.CodeInsufficientStock, shared.CodeNotFound:
		return true
	}
	return false
}

func persistenceError(err error, message string) error {
	if shared.IsDomainError(err) {
		return err
	}
	return shared.WrapDomainError(shared.CodePersistence, message, err)
}
