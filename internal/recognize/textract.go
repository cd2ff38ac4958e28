package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/docsage/docsage/pkg/logger"
)

// TextractConfig holds AWS credentials for the hosted OCR backend.
type TextractConfig struct {
	Region        string
	AccessKey     string
	SecretKey     string
	MinConfidence float32
}

// TextractRecognizer sends page images to AWS Textract. It is an
// alternative to local Tesseract for deployments without the
// tesseract runtime installed.
type TextractRecognizer struct {
	client *textract.Client
	cfg    TextractConfig
	log    logger.Logger
}

func NewTextractRecognizer(ctx context.Context, cfg TextractConfig, log logger.Logger) (*TextractRecognizer, error) {
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(creds),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	if cfg.MinConfidence == 0 {
		cfg.MinConfidence = 60
	}

	return &TextractRecognizer{
		client: textract.NewFromConfig(awsCfg),
		cfg:    cfg,
		log:    log,
	}, nil
}

// Recognize ignores the language hints; Textract detects languages on
// its own.
func (r *TextractRecognizer) Recognize(ctx context.Context, img image.Image, _ []string) (string, error) {
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	result, err := r.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: buf.Bytes()},
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect document text: %w", err)
	}

	var lines []string
	for _, block := range result.Blocks {
		if block.BlockType != types.BlockTypeLine || block.Text == nil {
			continue
		}
		if block.Confidence != nil && *block.Confidence < r.cfg.MinConfidence {
			continue
		}
		lines = append(lines, *block.Text)
	}
	return strings.Join(lines, "\n"), nil
}
