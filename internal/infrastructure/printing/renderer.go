package printing

import (
	"context"
	"errors"
)

// PDFRenderer prints an HTML document to PDF
type PDFRenderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
	Close() error
}

// Error codes carried by RenderError
const (
	ErrCodeRenderTimeout = "RENDER_TIMEOUT"
	ErrCodeRenderFailed  = "RENDER_FAILED"
	ErrCodeInvalidHTML   = "INVALID_HTML"
	ErrCodeStorageFailed = "STORAGE_FAILED"
)

// RenderError reports a failed render or store with a machine-readable code
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

// NewRenderError creates a RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// ErrorCode returns the RenderError code in err's chain, or "" if there is none
func ErrorCode(err error) string {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
