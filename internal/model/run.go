package model

import "time"

// RunStatus is the lifecycle state of a registered audit run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// AuditRun is one registered execution of the pipeline. KPI is nil until the
// run completes; Error is set only for failed runs.
type AuditRun struct {
	ID        string    `json:"id"`
	OutDir    string    `json:"out_dir"`
	Status    RunStatus `json:"status"`
	Params    RunParams `json:"params"`
	KPI       *KPI      `json:"kpi,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
