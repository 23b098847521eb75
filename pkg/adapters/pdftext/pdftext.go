// Package pdftext pulls plain text out of PDF attachments so it can be kept
// alongside the asset for search.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"

	"github.com/aretw0/harp/pkg/core"
)

const pdfMime = "application/pdf"

// ErrNotPDF is returned for data that does not look like a PDF.
var ErrNotPDF = errors.New("not a pdf")

// IsPDF sniffs data for the PDF signature.
func IsPDF(data []byte) bool {
	return mimetype.Detect(data).Is(pdfMime)
}

// Extract returns the plain text of a PDF document, trimmed.
func Extract(data []byte) (text string, err error) {
	if !IsPDF(data) {
		return "", ErrNotPDF
	}

	// The pdf reader panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(b.String()), nil
}

// Enrich fills asset.Text from data when the asset is a readable PDF. Other
// assets, and PDFs that fail to extract, come back unchanged.
func Enrich(asset core.Asset, data []byte) core.Asset {
	if asset.MimeType != "" && asset.MimeType != pdfMime {
		return asset
	}
	text, err := Extract(data)
	if err != nil || text == "" {
		return asset
	}
	asset.Text = text
	if asset.MimeType == "" {
		asset.MimeType = pdfMime
	}
	return asset
}
