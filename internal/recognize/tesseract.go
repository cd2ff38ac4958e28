package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/docsage/docsage/pkg/logger"
)

// TesseractRecognizer runs local Tesseract OCR on rendered page images.
// A fresh gosseract client is created per call because the client is
// not safe for concurrent use.
type TesseractRecognizer struct {
	log      logger.Logger
	contrast float64
}

func NewTesseractRecognizer(log logger.Logger) *TesseractRecognizer {
	return &TesseractRecognizer{log: log, contrast: 10}
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, img image.Image, languages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if len(languages) > 0 {
		if err := client.SetLanguage(strings.Join(languages, "+")); err != nil {
			return "", fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	processed := r.preprocess(img)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, processed, &jpeg.Options{Quality: 100}); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to get text: %w", err)
	}
	return text, nil
}

// preprocess converts the page to grayscale and boosts contrast, which
// improves recognition on scanned documents.
func (r *TesseractRecognizer) preprocess(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	return imaging.AdjustContrast(gray, r.contrast)
}
