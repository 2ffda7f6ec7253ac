package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AlertService exposes the alert register to users: listing, manual resolution
// and purging of resolved history.
type AlertService struct {
	register       *AlertRegister
	actors         shared.ActorProvider
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(alertRepo inventory.LowStockAlertRepository, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		register: NewAlertRegister(alertRepo, logger),
		actors:   shared.ContextActorProvider{},
		logger:   logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *AlertService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetActorProvider overrides how the acting user is resolved from the context
func (s *AlertService) SetActorProvider(provider shared.ActorProvider) {
	s.actors = provider
}

// ListUnresolved returns open alerts, newest first
func (s *AlertService) ListUnresolved(ctx context.Context, filter PageFilter) ([]LowStockAlertResponse, int64, error) {
	alerts, total, err := s.register.ListUnresolved(ctx, toDomainFilter(filter.Page, filter.PageSize))
	if err != nil {
		return nil, 0, err
	}
	return ToLowStockAlertResponses(alerts), total, nil
}

// CountUnresolved returns the number of open alerts
func (s *AlertService) CountUnresolved(ctx context.Context) (int64, error) {
	return s.register.CountUnresolved(ctx)
}

// Resolve closes an alert on behalf of the current user
func (s *AlertService) Resolve(ctx context.Context, alertID uuid.UUID, req ResolveAlertRequest) (*LowStockAlertResponse, error) {
	actor := shared.CurrentActor(ctx, s.actors)
	alert, err := s.register.Resolve(ctx, alertID, actor, req.Note)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, inventory.NewLowStockAlertResolvedEvent(alert)); err != nil {
			s.logger.Warn("failed to publish alert resolution", zap.Error(err))
		}
	}
	response := ToLowStockAlertResponse(alert)
	return &response, nil
}

// PurgeResolved deletes resolved alerts older than the retention window
func (s *AlertService) PurgeResolved(ctx context.Context, olderThan time.Duration) (*PurgeAlertsResponse, error) {
	cutoff := time.Now().Add(-olderThan)
	deleted, err := s.register.PurgeResolved(ctx, olderThan)
	if err != nil {
		return nil, err
	}
	return &PurgeAlertsResponse{Deleted: deleted, Cutoff: cutoff}, nil
}
