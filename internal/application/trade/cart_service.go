package trade

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appinv "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/domain/inventory"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/retail/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// ReceiptArchiver renders a committed sale and stores the receipt document
type ReceiptArchiver interface {
	Archive(ctx context.Context, sale *trade.Sale) (string, error)
}

// CartService manages carts between requests and hands them to the SaleProcessor
// at checkout. Cart edits never touch the stock ledger.
type CartService struct {
	carts     trade.CartStore
	products  inventory.ProductRepository
	processor *SaleProcessor
	cartLocks *appinv.ProductLocker
	receipts  ReceiptArchiver
	logger    *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(carts trade.CartStore, products inventory.ProductRepository, processor *SaleProcessor, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		carts:     carts,
		products:  products,
		processor: processor,
		cartLocks: appinv.NewProductLocker(appinv.DefaultLockStripes),
		logger:    logger,
	}
}

// SetReceiptArchiver enables receipt rendering after checkout
func (s *CartService) SetReceiptArchiver(archiver ReceiptArchiver) {
	s.receipts = archiver
}

// CreateCart opens an empty cart for the current actor
func (s *CartService) CreateCart(ctx context.Context) (*SaleResponse, error) {
	sale, err := s.processor.NewSale(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, sale); err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetCart returns a cart by ID
func (s *CartService) GetCart(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.carts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// AddItem adds units of an active product, snapshotting its name, category and price.
// Stock is not checked here; availability is decided at checkout.
func (s *CartService) AddItem(ctx context.Context, cartID uuid.UUID, req AddCartItemRequest) (*SaleResponse, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Active {
		return nil, shared.NewDomainError(shared.CodeValidation, "Product "+product.Code+" is inactive and cannot be sold")
	}
	return s.mutate(ctx, cartID, func(sale *trade.Sale) error {
		return sale.AddItem(product.ID, product.Name, product.Category, req.Quantity, product.UnitPrice)
	})
}

// SetQuantity replaces the quantity of a line; zero removes it
func (s *CartService) SetQuantity(ctx context.Context, cartID, productID uuid.UUID, req SetCartItemQuantityRequest) (*SaleResponse, error) {
	return s.mutate(ctx, cartID, func(sale *trade.Sale) error {
		return sale.SetQuantity(productID, req.Quantity)
	})
}

// RemoveItem removes a line
func (s *CartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, cartID, func(sale *trade.Sale) error {
		return sale.RemoveItem(productID)
	})
}

// ApplyDiscount sets a percentage or fixed discount
func (s *CartService) ApplyDiscount(ctx context.Context, cartID uuid.UUID, req ApplyDiscountRequest) (*SaleResponse, error) {
	return s.mutate(ctx, cartID, func(sale *trade.Sale) error {
		switch trade.DiscountType(strings.ToUpper(req.Type)) {
		case trade.DiscountTypePercent:
			return sale.ApplyPercentDiscount(req.Value)
		case trade.DiscountTypeFixed:
			return sale.ApplyFixedDiscount(req.Value)
		default:
			return shared.NewDomainError(shared.CodeInvalidArgument, "Unknown discount type "+req.Type)
		}
	})
}

// ClearDiscount removes the cart discount
func (s *CartService) ClearDiscount(ctx context.Context, cartID uuid.UUID) (*SaleResponse, error) {
	return s.mutate(ctx, cartID, func(sale *trade.Sale) error {
		return sale.ClearDiscount()
	})
}

// SetPaymentMethod records the payment method
func (s *CartService) SetPaymentMethod(ctx context.Context, cartID uuid.UUID, req SetPaymentMethodRequest) (*SaleResponse, error) {
	return s.mutate(ctx, cartID, func(sale *trade.Sale) error {
		return sale.SetPaymentMethod(trade.PaymentMethod(strings.ToUpper(req.PaymentMethod)))
	})
}

// Abandon cancels the cart and discards it. Nothing is persisted for abandoned carts.
func (s *CartService) Abandon(ctx context.Context, cartID uuid.UUID, req AbandonCartRequest) (*SaleResponse, error) {
	unlock := s.cartLocks.Lock(cartID)
	defer unlock()

	sale, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := sale.Cancel(req.Reason); err != nil {
		return nil, err
	}
	if err := s.carts.Delete(ctx, cartID); err != nil {
		return nil, err
	}
	s.logger.Info("cart abandoned",
		zap.String("sale_id", cartID.String()),
		zap.Int("lines", sale.ItemCount()),
	)
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// Checkout commits the cart. A committed cart is removed from the store; a rejected
// one stays so it can be corrected and submitted again.
func (s *CartService) Checkout(ctx context.Context, cartID uuid.UUID) (*CheckoutResponse, error) {
	unlock := s.cartLocks.Lock(cartID)
	defer unlock()

	sale, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}

	result, err := s.processor.Process(ctx, sale)
	if err != nil {
		return nil, err
	}

	if err := s.carts.Delete(ctx, cartID); err != nil {
		// the sale is committed; a stale cart is rejected at its next checkout
		s.logger.Warn("failed to discard checked out cart",
			zap.String("sale_id", cartID.String()),
			zap.Error(err),
		)
	}

	resp := ToCheckoutResponse(result)
	if s.receipts != nil {
		url, err := s.receipts.Archive(ctx, result.Sale)
		if err != nil {
			s.logger.Warn("failed to archive receipt",
				zap.String("receipt_number", result.Sale.ReceiptNumber),
				zap.Error(err),
			)
		} else {
			resp.ReceiptURL = url
		}
	}
	return &resp, nil
}

// QuickSale sells a single product without a stored cart
func (s *CartService) QuickSale(ctx context.Context, req QuickSaleRequest) (*CheckoutResponse, error) {
	result, err := s.processor.QuickSale(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := ToCheckoutResponse(result)
	if s.receipts != nil {
		if url, err := s.receipts.Archive(ctx, result.Sale); err == nil {
			resp.ReceiptURL = url
		} else {
			s.logger.Warn("failed to archive receipt", zap.String("receipt_number", result.Sale.ReceiptNumber), zap.Error(err))
		}
	}
	return &resp, nil
}

// mutate loads the cart, applies fn and stores the result, serializing edits per cart
func (s *CartService) mutate(ctx context.Context, cartID uuid.UUID, fn func(*trade.Sale) error) (*SaleResponse, error) {
	unlock := s.cartLocks.Lock(cartID)
	defer unlock()

	sale, err := s.carts.Get(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if err := fn(sale); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, sale); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		return nil, shared.WrapDomainError(shared.CodePersistence, "Failed to save cart", err)
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}
