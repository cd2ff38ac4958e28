package extract

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
)

// PDFOpener parses PDF bytes. Native text comes from the PDF text
// layer; page rendering for the recognition fallback goes through
// MuPDF, which rasterizes at arbitrary DPI.
type PDFOpener struct{}

// NewPDFOpener returns the standard PDF opener.
func NewPDFOpener() *PDFOpener { return &PDFOpener{} }

func (o *PDFOpener) Open(data []byte) (Document, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}

	fz, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf for rendering: %w", err)
	}

	return &pdfDocument{reader: pdfReader, fz: fz}, nil
}

type pdfDocument struct {
	reader *pdf.Reader
	fz     *fitz.Document
}

func (d *pdfDocument) PageCount() int { return d.reader.NumPage() }

func (d *pdfDocument) PageText(page int) (string, error) {
	p := d.reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to get text from page %d: %w", page, err)
	}
	return text, nil
}

func (d *pdfDocument) PageImage(page int, dpi int) (image.Image, error) {
	// go-fitz pages are 0-based.
	img, err := d.fz.ImageDPI(page-1, float64(dpi))
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	return img, nil
}

func (d *pdfDocument) Close() error { return d.fz.Close() }
