package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultReceiptPrefix is used when no prefix is configured
const DefaultReceiptPrefix = "RCPT"

// ReceiptNumberGenerator produces receipt numbers for new carts
type ReceiptNumberGenerator interface {
	Next(now time.Time) string
}

// RandomReceiptNumberGenerator generates PREFIX-YYYYMMDD-XXXXXXXX numbers where the
// suffix comes from a random UUID. Numbers are issued when a cart is opened, before
// anything is persisted, so they cannot come from a database sequence. The sales
// table carries a unique index as the backstop.
type RandomReceiptNumberGenerator struct {
	prefix string
}

// NewRandomReceiptNumberGenerator creates a generator with the given prefix
func NewRandomReceiptNumberGenerator(prefix string) *RandomReceiptNumberGenerator {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = DefaultReceiptPrefix
	}
	return &RandomReceiptNumberGenerator{prefix: prefix}
}

// Next returns a new receipt number
func (g *RandomReceiptNumberGenerator) Next(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("%s-%s-%s", g.prefix, now.Format("20060102"), suffix)
}
