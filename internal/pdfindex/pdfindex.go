// Package pdfindex walks a directory (or unpacked ZIP) of invoice PDFs and
// produces one InvoiceRecord per file. Files are processed by a bounded
// worker pool; a single malformed file is recorded as an extraction error
// and never aborts the run.
package pdfindex

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/auditops/popaudit/internal/config"
	"github.com/auditops/popaudit/internal/fetcher"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/ocr"
)

// TextCache stores extracted PDF text keyed by a content fingerprint.
// Optional; the sqlite store provides the production implementation.
type TextCache interface {
	GetPDFText(ctx context.Context, fingerprint string) (string, bool, error)
	SetPDFText(ctx context.Context, fingerprint, text string, ttl time.Duration) error
}

// Indexer extracts canonical invoice fields from PDF files.
type Indexer struct {
	cfg   config.IndexConfig
	ocr   ocr.Extractor
	cache TextCache
}

// New creates an Indexer. The OCR extractor may be nil; scanned PDFs then
// surface as extraction errors instead of falling back.
func New(cfg config.IndexConfig, ocrExtractor ocr.Extractor) *Indexer {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.FileTimeoutSec <= 0 {
		cfg.FileTimeoutSec = 30
	}
	return &Indexer{cfg: cfg, ocr: ocrExtractor}
}

// WithCache attaches a text cache. Unchanged files on a re-run then skip
// extraction and OCR entirely.
func (ix *Indexer) WithCache(c TextCache) *Indexer {
	ix.cache = c
	return ix
}

// Index scans pdfRoot (a directory or a .zip archive) and returns one record
// per PDF, ordered by source path. The order is independent of filesystem
// enumeration: paths are collected first and sorted before any work starts.
func (ix *Indexer) Index(ctx context.Context, pdfRoot string) ([]model.InvoiceRecord, error) {
	root, err := ix.resolveRoot(pdfRoot)
	if err != nil {
		return nil, err
	}

	paths, err := collectPDFs(root)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, eris.Errorf("pdfindex: no PDF files under %s", pdfRoot)
	}

	log := zap.L().With(zap.String("component", "pdfindex"))
	log.Info("indexing PDFs", zap.Int("files", len(paths)), zap.Int("workers", ix.cfg.Workers))

	records := make([]model.InvoiceRecord, len(paths))
	timeout := time.Duration(ix.cfg.FileTimeoutSec) * time.Second

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			fileCtx, cancel := context.WithTimeout(gctx, timeout)
			records[i] = ix.indexOne(fileCtx, path)
			cancel()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pdfindex: cancelled")
	}

	failed := 0
	for _, r := range records {
		if r.Failed() {
			failed++
		}
	}
	log.Info("indexing complete", zap.Int("records", len(records)), zap.Int("failed", failed))

	return records, nil
}

// indexOne never returns an error: extraction failures are recorded on the
// record itself so downstream output always carries one row per input file.
func (ix *Indexer) indexOne(ctx context.Context, path string) model.InvoiceRecord {
	start := time.Now()
	rec := model.InvoiceRecord{
		SourcePath:     path,
		SourceFilename: filepath.Base(path),
	}

	text, err := ix.extractText(ctx, path)
	if err != nil {
		rec.Error = err.Error()
		rec.ProcessingSecs = time.Since(start).Seconds()
		return rec
	}

	fields := extractFields(text)
	rec.InvoiceID = fields.Number
	rec.IssueDate = fields.Date
	rec.TotalNet = fields.Net
	rec.Currency = fields.Currency
	rec.SellerGuess = fields.Seller
	rec.AmountSource = fields.NetSource
	if fields.Number != "" && fields.Date != "" && fields.Net != nil && fields.NetSource == model.AmountSourceAnchor {
		rec.Confidence = 1
	}
	rec.ProcessingSecs = time.Since(start).Seconds()
	return rec
}

// resolveRoot accepts either a directory or a ZIP archive. Archives are
// unpacked into the configured temp dir before scanning.
func (ix *Indexer) resolveRoot(pdfRoot string) (string, error) {
	info, err := os.Stat(pdfRoot)
	if err != nil {
		return "", eris.Wrapf(err, "pdfindex: stat %s", pdfRoot)
	}
	if info.IsDir() {
		return pdfRoot, nil
	}
	if !strings.EqualFold(filepath.Ext(pdfRoot), ".zip") {
		return "", eris.Errorf("pdfindex: %s is neither a directory nor a ZIP archive", pdfRoot)
	}

	dest := ix.cfg.TempDir
	if dest == "" {
		dest, err = os.MkdirTemp("", "popaudit-pdfs-*")
		if err != nil {
			return "", eris.Wrap(err, "pdfindex: temp dir")
		}
	}
	if _, err := fetcher.ExtractZIP(pdfRoot, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func collectPDFs(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, eris.Wrapf(err, "pdfindex: walk %s", root)
	}
	sort.Strings(paths)
	return paths, nil
}
