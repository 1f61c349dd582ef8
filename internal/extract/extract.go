// Package extract turns uploaded course materials into text through the
// LLM provider's vision mode.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/itsjustRohitch/ResourceScout/internal/telemetry"
	"github.com/itsjustRohitch/ResourceScout/models"
	"github.com/itsjustRohitch/ResourceScout/provider"
)

type Extractor struct {
	llm     provider.Provider
	maxSize int64
	metrics *telemetry.Metrics
	logger  *log.Logger
}

func New(llm provider.Provider, maxSize int64, metrics *telemetry.Metrics, logger *log.Logger) *Extractor {
	if logger == nil {
		logger = log.New(log.Writer(), "[EXTRACT] ", log.LstdFlags)
	}
	return &Extractor{llm: llm, maxSize: maxSize, metrics: metrics, logger: logger}
}

// Extract validates the document and transcribes it. Unsupported or
// oversized uploads fail immediately; the document bytes are not retained.
func (e *Extractor) Extract(ctx context.Context, doc models.Document) (models.ExtractedContent, error) {
	if e.maxSize > 0 && int64(len(doc.Data)) > e.maxSize {
		return models.ExtractedContent{}, fmt.Errorf("file %s exceeds the %d byte upload limit", doc.Name, e.maxSize)
	}
	mime, err := SniffMIME(doc)
	if err != nil {
		return models.ExtractedContent{}, err
	}

	text, err := e.llm.Transcribe(ctx, mime, doc.Data)
	if e.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		e.metrics.LLMCalls.WithLabelValues("vision", outcome).Inc()
	}
	if err != nil {
		return models.ExtractedContent{}, fmt.Errorf("extracting %s: %w", doc.Name, err)
	}

	e.logger.Printf("extracted %d chars from %s", len(text), doc.Name)
	return models.ExtractedContent{
		Name:        doc.Name,
		Text:        strings.TrimSpace(text),
		ExtractedAt: time.Now(),
	}, nil
}

var (
	pdfMagic  = []byte("%PDF")
	pngMagic  = []byte{0x89, 'P', 'N', 'G'}
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
)

// SniffMIME determines the document type from magic bytes, falling back to
// the file extension. Anything else is rejected up front.
func SniffMIME(doc models.Document) (string, error) {
	switch {
	case bytes.HasPrefix(doc.Data, pdfMagic):
		return "application/pdf", nil
	case bytes.HasPrefix(doc.Data, pngMagic):
		return "image/png", nil
	case bytes.HasPrefix(doc.Data, jpegMagic):
		return "image/jpeg", nil
	}

	switch strings.ToLower(filepath.Ext(doc.Name)) {
	case ".pdf":
		return "application/pdf", nil
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	}
	return "", fmt.Errorf("%w: %s", models.ErrUnsupportedType, doc.Name)
}
