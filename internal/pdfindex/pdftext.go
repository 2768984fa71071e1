package pdfindex

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/textnorm"
)

const textCacheTTL = 30 * 24 * time.Hour

// extractText returns the text of a PDF: cache hit first, then embedded
// text, then the OCR boundary when the file carries none (scanned
// documents). Cache writes are best effort.
func (ix *Indexer) extractText(ctx context.Context, path string) (string, error) {
	fp := fingerprint(path)
	if ix.cache != nil && fp != "" {
		if text, ok, err := ix.cache.GetPDFText(ctx, fp); err == nil && ok {
			return text, nil
		}
	}

	text, err := ix.extractTextUncached(ctx, path)
	if err != nil {
		return "", err
	}
	if ix.cache != nil && fp != "" {
		if cerr := ix.cache.SetPDFText(ctx, fp, text, textCacheTTL); cerr != nil {
			zap.L().Debug("pdf text cache write failed", zap.String("path", path), zap.Error(cerr))
		}
	}
	return text, nil
}

// fingerprint identifies a file by path, size and mtime; any edit or move
// invalidates the cached text.
func fingerprint(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

func (ix *Indexer) extractTextUncached(ctx context.Context, path string) (string, error) {
	text, err := embeddedText(path)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	if ix.ocr == nil {
		if err != nil {
			return "", err
		}
		return "", eris.Errorf("pdfindex: no embedded text in %s and no OCR configured", path)
	}

	ocrText, ocrErr := ix.ocr.ExtractText(ctx, path)
	if ocrErr != nil {
		if err != nil {
			return "", eris.Wrapf(ocrErr, "pdfindex: embedded extraction failed (%v), OCR fallback failed too", err)
		}
		return "", ocrErr
	}
	return ocrText, nil
}

// embeddedText reads per-page text via ledongthuc/pdf. The library panics on
// some malformed files, so the whole read runs behind a recover boundary and
// surfaces as a regular extraction error.
func embeddedText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("pdfindex: reader panic on %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", eris.Wrapf(err, "pdfindex: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", eris.Wrapf(err, "pdfindex: page %d of %s", pageNum, path)
		}
		sb.WriteString(textnorm.Collapse(content))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
