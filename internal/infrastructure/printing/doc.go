// Package printing turns committed sales into receipt documents.
//
// A receipt is rendered to HTML from an embedded html/template, optionally
// printed to PDF by headless Chrome through chromedp, and written to a Store:
// a local directory served by the HTTP server, or S3-compatible object storage.
// Amounts are formatted for the configured locale with golang.org/x/text.
package printing
