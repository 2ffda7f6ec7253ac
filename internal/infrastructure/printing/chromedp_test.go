package printing

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestReceiptPrintParams(t *testing.T) {
	params := receiptPrintParams()
	assert.InDelta(t, 3.15, params.PaperWidth, 0.01, "80mm roll")
	assert.Greater(t, params.PaperHeight, params.PaperWidth)
	assert.InDelta(t, mmToInches(receiptMarginMM), params.MarginLeft, 0.0001)
	assert.True(t, params.PrintBackground)
}

func TestAllocatorOptions(t *testing.T) {
	base := allocatorOptions(ChromedpConfig{})
	withExtras := allocatorOptions(ChromedpConfig{ExecPath: "/usr/bin/chromium", NoSandbox: true})
	assert.Len(t, withExtras, len(base)+2)
}

func TestChromedpRenderer_EmptyHTML(t *testing.T) {
	r := NewChromedpRenderer(ChromedpConfig{Logger: zaptest.NewLogger(t)})
	defer r.Close()

	_, err := r.Render(context.Background(), nil)
	assert.Equal(t, ErrCodeInvalidHTML, ErrorCode(err))
}

// TestChromedpRenderer_Render needs a Chrome binary; set CHROME_PATH to run it
func TestChromedpRenderer_Render(t *testing.T) {
	chrome := os.Getenv("CHROME_PATH")
	if chrome == "" {
		t.Skip("CHROME_PATH not set")
	}
	r := NewChromedpRenderer(ChromedpConfig{ExecPath: chrome, NoSandbox: true, Timeout: time.Minute})
	defer r.Close()

	a, _ := newTestArchiver(t, nil)
	html, err := a.RenderHTML(completedSale(t))
	require.NoError(t, err)

	pdf, err := r.Render(context.Background(), html)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}
