package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retail/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeSale is the aggregate type name used in events
const AggregateTypeSale = "Sale"

var hundred = decimal.NewFromInt(100)

// SaleStatus represents the status of a sale
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// IsValid checks if the status is a valid SaleStatus
func (s SaleStatus) IsValid() bool {
	switch s {
	case SaleStatusPending, SaleStatusCompleted, SaleStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of SaleStatus
func (s SaleStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s SaleStatus) CanTransitionTo(target SaleStatus) bool {
	switch s {
	case SaleStatusPending:
		return target == SaleStatusCompleted || target == SaleStatusCancelled
	case SaleStatusCompleted, SaleStatusCancelled:
		return false // Terminal states
	}
	return false
}

// PaymentMethod is how the customer paid
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "CASH"
	PaymentMethodCard    PaymentMethod = "CARD"
	PaymentMethodEWallet PaymentMethod = "E_WALLET"
	PaymentMethodOther   PaymentMethod = "OTHER"
)

// IsValid checks if the payment method is known
func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodEWallet, PaymentMethodOther:
		return true
	}
	return false
}

// DiscountType records how the discount was requested
type DiscountType string

const (
	DiscountTypeNone    DiscountType = "NONE"
	DiscountTypePercent DiscountType = "PERCENT"
	DiscountTypeFixed   DiscountType = "FIXED"
)

// Sale is the cart and, once committed, the sale record.
// Every mutator recomputes subtotal, tax, discount and total before returning,
// so the stored totals always match the items.
type Sale struct {
	shared.BaseAggregateRoot
	ReceiptNumber string
	ActorID       uuid.UUID
	ActorName     string
	Items         []SaleItem
	TaxRate       decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal // percentage for PERCENT, amount for FIXED
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Discount      decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod PaymentMethod
	Status        SaleStatus
	CompletedAt   *time.Time
	CancelledAt   *time.Time
	CancelReason  string
}

// NewSale creates an empty PENDING sale
func NewSale(receiptNumber string, taxRate decimal.Decimal, actor shared.Actor) (*Sale, error) {
	if receiptNumber == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Receipt number cannot be empty")
	}
	if len(receiptNumber) > 50 {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Receipt number cannot exceed 50 characters")
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError(shared.CodeInvalidArgument, "Tax rate must be in [0, 1)")
	}

	return &Sale{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		ActorID:           actor.ID,
		ActorName:         actor.Name,
		Items:             make([]SaleItem, 0),
		TaxRate:           taxRate,
		DiscountType:      DiscountTypeNone,
		DiscountValue:     decimal.Zero,
		Subtotal:          decimal.Zero,
		Tax:               decimal.Zero,
		Discount:          decimal.Zero,
		Total:             decimal.Zero,
		PaymentMethod:     PaymentMethodCash,
		Status:            SaleStatusPending,
	}, nil
}

// AddItem adds qty units of a product. If the product is already in the cart its
// line quantity is increased; the first snapshot of name, category and price is kept.
func (s *Sale) AddItem(productID uuid.UUID, name, category string, qty int, unitPrice decimal.Decimal) error {
	if err := s.ensurePending("add items to"); err != nil {
		return err
	}

	if idx := s.indexOf(productID); idx >= 0 {
		if qty <= 0 {
			return shared.NewDomainError(shared.CodeInvalidArgument, "Quantity must be positive")
		}
		if err := s.Items[idx].setQuantity(s.Items[idx].Quantity + qty); err != nil {
			return err
		}
		s.recalculateTotals()
		return nil
	}

	item, err := NewSaleItem(productID, name, category, qty, unitPrice)
	if err != nil {
		return err
	}
	s.Items = append(s.Items, *item)
	s.recalculateTotals()
	return nil
}

// RemoveItem removes the line for a product
func (s *Sale) RemoveItem(productID uuid.UUID) error {
	if err := s.ensurePending("remove items from"); err != nil {
		return err
	}

	idx := s.indexOf(productID)
	if idx < 0 {
		return shared.NewDomainError(shared.CodeNotFound, "Product "+productID.String()+" is not in the cart")
	}
	s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
	s.recalculateTotals()
	return nil
}

// SetQuantity replaces a line's quantity; zero or less removes the line
func (s *Sale) SetQuantity(productID uuid.UUID, qty int) error {
	if err := s.ensurePending("update items in"); err != nil {
		return err
	}

	idx := s.indexOf(productID)
	if idx < 0 {
		return shared.NewDomainError(shared.CodeNotFound, "Product "+productID.String()+" is not in the cart")
	}
	if qty <= 0 {
		s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
	} else if err := s.Items[idx].setQuantity(qty); err != nil {
		return err
	}
	s.recalculateTotals()
	return nil
}

// ApplyPercentDiscount sets a discount of pct percent of the subtotal
func (s *Sale) ApplyPercentDiscount(pct decimal.Decimal) error {
	if err := s.ensurePending("discount"); err != nil {
		return err
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return shared.NewDomainError(shared.CodeInvalidArgument, fmt.Sprintf("Discount percentage %s is outside [0, 100]", pct.String()))
	}

	s.DiscountType = DiscountTypePercent
	s.DiscountValue = pct
	s.recalculateTotals()
	return nil
}

// ApplyFixedDiscount sets a flat discount, which may not exceed the subtotal
func (s *Sale) ApplyFixedDiscount(amount decimal.Decimal) error {
	if err := s.ensurePending("discount"); err != nil {
		return err
	}
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidArgument, "Discount amount cannot be negative")
	}
	if amount.GreaterThan(s.Subtotal) {
		return shared.NewDomainError(shared.CodeInvalidArgument,
			fmt.Sprintf("Discount %s exceeds subtotal %s", amount.StringFixed(2), s.Subtotal.StringFixed(2)))
	}

	s.DiscountType = DiscountTypeFixed
	s.DiscountValue = amount
	s.recalculateTotals()
	return nil
}

// ClearDiscount removes any discount
func (s *Sale) ClearDiscount() error {
	if err := s.ensurePending("discount"); err != nil {
		return err
	}
	s.DiscountType = DiscountTypeNone
	s.DiscountValue = decimal.Zero
	s.recalculateTotals()
	return nil
}

// SetPaymentMethod records the payment method
func (s *Sale) SetPaymentMethod(method PaymentMethod) error {
	if err := s.ensurePending("change payment method of"); err != nil {
		return err
	}
	if !method.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidArgument, "Unknown payment method "+string(method))
	}
	s.PaymentMethod = method
	s.UpdatedAt = time.Now()
	return nil
}

// Validate checks the cart can be submitted for checkout.
// Product existence and stock are checked by the processor against the live ledger.
func (s *Sale) Validate() error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot check out a sale in %s status", s.Status))
	}
	if len(s.Items) == 0 {
		return shared.NewDomainError(shared.CodeValidation, "Cart is empty")
	}
	for _, item := range s.Items {
		if item.Quantity <= 0 {
			return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Quantity for %s must be positive", item.ProductName))
		}
		if item.UnitPrice.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError(shared.CodeValidation, fmt.Sprintf("Unit price for %s must be positive", item.ProductName))
		}
	}
	if s.Total.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError(shared.CodeValidation, "Sale total must be positive")
	}
	return nil
}

// Complete transitions PENDING to COMPLETED. Only the sale processor calls this,
// inside the commit transaction.
func (s *Sale) Complete() error {
	if !s.Status.CanTransitionTo(SaleStatusCompleted) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot complete sale in %s status", s.Status))
	}

	now := time.Now()
	s.Status = SaleStatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleCompletedEvent(s))
	return nil
}

// Cancel abandons a PENDING sale
func (s *Sale) Cancel(reason string) error {
	if !s.Status.CanTransitionTo(SaleStatusCancelled) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot cancel sale in %s status", s.Status))
	}

	now := time.Now()
	s.Status = SaleStatusCancelled
	s.CancelledAt = &now
	s.CancelReason = reason
	s.UpdatedAt = now
	return nil
}

// recalculateTotals derives every money field from the items and discount settings
func (s *Sale) recalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range s.Items {
		subtotal = subtotal.Add(item.LineTotal)
	}
	s.Subtotal = subtotal
	s.Tax = subtotal.Mul(s.TaxRate).Round(2)

	switch s.DiscountType {
	case DiscountTypePercent:
		s.Discount = subtotal.Mul(s.DiscountValue).Div(hundred).Round(2)
	case DiscountTypeFixed:
		// a fixed discount never exceeds the current subtotal
		s.Discount = decimal.Min(s.DiscountValue, subtotal)
	default:
		s.Discount = decimal.Zero
	}

	total := subtotal.Add(s.Tax).Sub(s.Discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	s.Total = total
	s.UpdatedAt = time.Now()
}

// Recalculate re-derives totals, used after rebuilding a sale from storage
func (s *Sale) Recalculate() {
	s.recalculateTotals()
}

func (s *Sale) ensurePending(action string) error {
	if s.Status != SaleStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot %s a sale in %s status", action, s.Status))
	}
	return nil
}

func (s *Sale) indexOf(productID uuid.UUID) int {
	for idx := range s.Items {
		if s.Items[idx].ProductID == productID {
			return idx
		}
	}
	return -1
}

// GetItemByProduct returns the line for a product, or nil
func (s *Sale) GetItemByProduct(productID uuid.UUID) *SaleItem {
	if idx := s.indexOf(productID); idx >= 0 {
		return &s.Items[idx]
	}
	return nil
}

// ProductIDs returns the distinct product ids in line order
func (s *Sale) ProductIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ItemCount returns the number of lines
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// TotalQuantity returns the number of units across all lines
func (s *Sale) TotalQuantity() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// IsPending returns true if the sale is still a cart
func (s *Sale) IsPending() bool {
	return s.Status == SaleStatusPending
}

// IsCompleted returns true if the sale has been committed
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// Clone returns a copy that shares no item storage or pending events with s
func (s *Sale) Clone() *Sale {
	clone := *s
	clone.Items = make([]SaleItem, len(s.Items))
	copy(clone.Items, s.Items)
	clone.ClearDomainEvents()
	for _, event := range s.GetDomainEvents() {
		clone.AddDomainEvent(event)
	}
	return &clone
}
