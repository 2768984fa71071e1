// Package store is the local run registry and extraction cache, backed by
// SQLite. Every pipeline execution is registered here so `popaudit runs`
// can list history without touching the run directories.
package store

import (
	"context"
	"time"

	"github.com/auditops/popaudit/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the audit pipeline.
type Store interface {
	// Runs
	CreateRun(ctx context.Context, outDir string, params model.RunParams) (*model.AuditRun, error)
	CompleteRun(ctx context.Context, runID string, kpi model.KPI) error
	FailRun(ctx context.Context, runID string, cause error) error
	GetRun(ctx context.Context, runID string) (*model.AuditRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.AuditRun, error)

	// PDF text cache, keyed by content fingerprint. Re-indexing an unchanged
	// batch skips extraction entirely.
	GetPDFText(ctx context.Context, fingerprint string) (string, bool, error)
	SetPDFText(ctx context.Context, fingerprint, text string, ttl time.Duration) error
	DeleteExpiredPDFText(ctx context.Context) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
