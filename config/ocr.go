package config

import (
	"strings"
	"sync"
)

var (
	ocrOnce   sync.Once
	ocrConfig *OCRConfig
)

type OCRConfig struct {
	// Backend is "tesseract" or "textract".
	Backend   string
	Languages []string
	RenderDPI int
}

func GetOCRConfig() *OCRConfig {
	ocrOnce.Do(func() {
		loadEnv()
		ocrConfig = &OCRConfig{
			Backend:   getEnv("OCR_BACKEND", "tesseract"),
			Languages: strings.Split(getEnv("OCR_LANGUAGES", "spa,eng"), ","),
			RenderDPI: getEnvInt("OCR_RENDER_DPI", 200),
		}
	})
	return ocrConfig
}
