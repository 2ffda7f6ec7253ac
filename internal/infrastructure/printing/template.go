package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/retail/backend/internal/domain/trade"
)

const receiptTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="UTF-8">
<title>{{.ReceiptNumber}}</title>
<style>
body { font-family: monospace; font-size: 12px; width: 72mm; margin: 0 auto; }
h1 { font-size: 14px; text-align: center; margin: 0 0 4px; }
table { width: 100%; border-collapse: collapse; }
td.num { text-align: right; white-space: nowrap; }
.meta, .footer { text-align: center; }
.total td { font-weight: bold; border-top: 1px dashed #000; }
</style>
</head>
<body>
<h1>{{.StoreName}}</h1>
<div class="meta">
<div>{{.ReceiptNumber}}</div>
<div>{{.Date}}</div>
<div>Cashier: {{.Cashier}}</div>
</div>
<table class="items">
{{- range .Lines}}
<tr><td colspan="2">{{.Name}}</td></tr>
<tr><td>{{.Quantity}} x {{.UnitPrice}}</td><td class="num">{{.Total}}</td></tr>
{{- end}}
</table>
<table class="totals">
<tr><td>Subtotal</td><td class="num">{{.Subtotal}}</td></tr>
{{- if .Discount}}
<tr><td>Discount</td><td class="num">-{{.Discount}}</td></tr>
{{- end}}
<tr><td>Tax ({{.TaxRate}})</td><td class="num">{{.Tax}}</td></tr>
<tr class="total"><td>Total {{.Currency}}</td><td class="num">{{.Total}}</td></tr>
<tr><td>Paid by</td><td class="num">{{.PaymentMethod}}</td></tr>
</table>
<div class="footer">{{.ItemCount}} item(s)</div>
</body>
</html>
`

var receiptTmpl = template.Must(template.New("receipt").Parse(receiptTemplate))

// receiptView is the formatted, template-ready form of a sale
type receiptView struct {
	Lang          string
	StoreName     string
	ReceiptNumber string
	Date          string
	Cashier       string
	Lines         []receiptLine
	Subtotal      string
	Discount      string // empty when no discount was given
	TaxRate       string
	Tax           string
	Total         string
	Currency      string
	PaymentMethod string
	ItemCount     string
}

type receiptLine struct {
	Name      string
	Quantity  string
	UnitPrice string
	Total     string
}

func newReceiptView(sale *trade.Sale, storeName string, f *Formatter) receiptView {
	v := receiptView{
		Lang:          f.Language().String(),
		StoreName:     storeName,
		ReceiptNumber: sale.ReceiptNumber,
		Date:          f.DateTime(receiptTime(sale)),
		Cashier:       sale.ActorName,
		Lines:         make([]receiptLine, len(sale.Items)),
		Subtotal:      f.Money(sale.Subtotal),
		TaxRate:       f.Percent(sale.TaxRate),
		Tax:           f.Money(sale.Tax),
		Total:         f.Money(sale.Total),
		Currency:      f.Currency(),
		PaymentMethod: f.Label(string(sale.PaymentMethod)),
		ItemCount:     f.Int(sale.TotalQuantity()),
	}
	if sale.Discount.IsPositive() {
		v.Discount = f.Money(sale.Discount)
	}
	for i, item := range sale.Items {
		v.Lines[i] = receiptLine{
			Name:      item.ProductName,
			Quantity:  f.Int(item.Quantity),
			UnitPrice: f.Money(item.UnitPrice),
			Total:     f.Money(item.LineTotal),
		}
	}
	return v
}

// renderReceiptHTML executes the receipt template for sale
func renderReceiptHTML(sale *trade.Sale, storeName string, f *Formatter) ([]byte, error) {
	var buf bytes.Buffer
	if err := receiptTmpl.Execute(&buf, newReceiptView(sale, storeName, f)); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", sale.ReceiptNumber, err)
	}
	return buf.Bytes(), nil
}

// receiptTime is when the sale completed, or when it was opened for sales
// that never recorded a completion time
func receiptTime(sale *trade.Sale) time.Time {
	if sale.CompletedAt != nil {
		return *sale.CompletedAt
	}
	return sale.CreatedAt
}
