package printing

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/retail/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// ArchiverConfig wires an Archiver
type ArchiverConfig struct {
	StoreName string
	Language  string
	Store     Store
	// Renderer prints a PDF; nil stores the HTML receipt
	Renderer PDFRenderer
	Logger   *zap.Logger
}

// Archiver renders and stores the receipt of a committed sale
type Archiver struct {
	storeName string
	formatter *Formatter
	store     Store
	renderer  PDFRenderer
	logger    *zap.Logger
}

// NewArchiver creates an Archiver
func NewArchiver(cfg ArchiverConfig) (*Archiver, error) {
	if cfg.Store == nil {
		return nil, errors.New("receipt store is required")
	}
	f, err := NewFormatter(cfg.Language)
	if err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Archiver{
		storeName: cfg.StoreName,
		formatter: f,
		store:     cfg.Store,
		renderer:  cfg.Renderer,
		logger:    cfg.Logger,
	}, nil
}

// Archive renders sale and returns the URL of the stored receipt
func (a *Archiver) Archive(ctx context.Context, sale *trade.Sale) (string, error) {
	if sale == nil || sale.Status != trade.SaleStatusCompleted {
		return "", fmt.Errorf("only completed sales have receipts")
	}

	html, err := a.RenderHTML(sale)
	if err != nil {
		return "", err
	}
	data, ext, contentType := html, "html", "text/html; charset=utf-8"
	if a.renderer != nil {
		pdf, err := a.renderer.Render(ctx, html)
		if err != nil {
			return "", err
		}
		data, ext, contentType = pdf, "pdf", "application/pdf"
	}

	url, err := a.store.Put(ctx, ReceiptKey(sale, ext), data, contentType)
	if err != nil {
		return "", err
	}
	a.logger.Info("Receipt archived",
		zap.String("receipt_number", sale.ReceiptNumber),
		zap.String("format", ext),
		zap.String("url", url))
	return url, nil
}

// RenderHTML renders the receipt without storing it
func (a *Archiver) RenderHTML(sale *trade.Sale) ([]byte, error) {
	return renderReceiptHTML(sale, a.storeName, a.formatter)
}

// ReceiptKey files receipts by completion day: 2026/01/05/RCPT-20260105-AB12CD34.pdf
func ReceiptKey(sale *trade.Sale, ext string) string {
	day := receiptTime(sale).UTC().Format(time.DateOnly)
	return path.Join(day[:4], day[5:7], day[8:], sale.ReceiptNumber+"."+ext)
}
