package report

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/model"
)

// CaptureGit asks the local git binary for the current branch and commit.
// Runs outside a checkout, or without git installed, just leave the fields
// empty; provenance is best effort.
func CaptureGit(ctx context.Context) model.GitInfo {
	return model.GitInfo{
		Branch: gitOutput(ctx, "rev-parse", "--abbrev-ref", "HEAD"),
		Commit: gitOutput(ctx, "rev-parse", "HEAD"),
	}
}

func gitOutput(ctx context.Context, args ...string) string {
	out, err := exec.CommandContext(ctx, "git", args...).Output()
	if err != nil {
		zap.L().Debug("git identity unavailable", zap.Strings("args", args), zap.Error(err))
		return ""
	}
	return strings.TrimSpace(string(out))
}

// BuildMetadata assembles the run_metadata.json payload.
func BuildMetadata(ctx context.Context, runDir string, params model.RunParams, kpi model.KPI) model.RunMetadata {
	return model.RunMetadata{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		RunDir:      runDir,
		Git:         CaptureGit(ctx),
		Params:      params,
		KPI:         kpi,
	}
}
