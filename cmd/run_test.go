package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditops/popaudit/internal/config"
	"github.com/auditops/popaudit/internal/model"
)

func TestExecutePipeline_CorruptPOPLeavesNoArtifacts(t *testing.T) {
	var err error
	cfg, err = config.Load()
	require.NoError(t, err)

	dir := t.TempDir()
	pdfRoot := filepath.Join(dir, "pdfs")
	require.NoError(t, os.Mkdir(pdfRoot, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pdfRoot, "fv.pdf"), []byte("garbage"), 0o644))

	popFile := filepath.Join(dir, "pop.xlsx")
	require.NoError(t, os.WriteFile(popFile, []byte("not a workbook"), 0o644))

	outDir := filepath.Join(dir, "run")
	params := model.RunParams{
		PDFRoot:             pdfRoot,
		POPFile:             popFile,
		OutDir:              outDir,
		AmountTol:           cfg.Match.AmountTol,
		TieBreakWeightFname: cfg.Match.TieBreakWeightFname,
		TieBreakMinSeller:   cfg.Match.TieBreakMinSeller,
	}

	// the store is only consulted once indexing starts, which a workbook
	// parse failure must never reach
	_, err = executePipeline(context.Background(), nil, params)
	require.Error(t, err)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "run directory created despite unusable workbook")
}
