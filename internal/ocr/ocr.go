// Package ocr is the boundary to the external OCR engine. The core only
// calls it when a PDF yields no embedded text and treats the result as an
// opaque string or error.
package ocr

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/auditops/popaudit/internal/config"
	"github.com/auditops/popaudit/internal/resilience"
)

// Extractor extracts text content from PDF files.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// NewExtractor creates an Extractor based on config. The extractor is
// wrapped with a rate limiter so a burst of scanned files cannot saturate
// the engine, and with a retry layer that reruns the engine on transient
// subprocess failures. Retried attempts pass through the limiter again.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	var inner Extractor
	switch cfg.Provider {
	case "local", "":
		inner = NewPdfToText(cfg.PdfToTextPath)
	case "none":
		inner = unavailable{}
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
	if cfg.RatePerSec > 0 {
		inner = &limited{inner: inner, limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), 1)}
	}
	if cfg.MaxAttempts > 1 {
		retryCfg := resilience.DefaultRetryConfig()
		retryCfg.MaxAttempts = cfg.MaxAttempts
		retryCfg.OnRetry = resilience.RetryLogger("ocr", "extract_text")
		inner = &retried{inner: inner, cfg: retryCfg}
	}
	return inner, nil
}

type retried struct {
	inner Extractor
	cfg   resilience.RetryConfig
}

func (r *retried) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	return resilience.Do(ctx, r.cfg, func(ctx context.Context) (string, error) {
		return r.inner.ExtractText(ctx, pdfPath)
	})
}

type limited struct {
	inner   Extractor
	limiter *rate.Limiter
}

func (l *limited) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "ocr: rate limit wait")
	}
	return l.inner.ExtractText(ctx, pdfPath)
}

type unavailable struct{}

func (unavailable) ExtractText(context.Context, string) (string, error) {
	return "", eris.New("ocr: no provider configured")
}
