package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is a stand-in for testing.T.Chdir, which requires go >= 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml in sight

	cfg, err := Load()
	require.NoError(t, err)

	assert.Positive(t, cfg.Index.Workers)
	assert.Equal(t, 30, cfg.Index.FileTimeoutSec)
	assert.Equal(t, "0.01", cfg.Match.AmountTol)
	assert.Equal(t, 0.3, cfg.Match.TieBreakWeightFname)
	assert.Equal(t, 0.0, cfg.Match.TieBreakMinSeller)
	assert.Equal(t, 50, cfg.Report.TopMismatches)
	assert.Equal(t, "local", cfg.OCR.Provider)
	assert.Equal(t, "pdftotext", cfg.OCR.PdfToTextPath)
	assert.Equal(t, "popaudit.db", cfg.Store.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("POPAUDIT_MATCH_AMOUNT_TOL", "0.05")
	t.Setenv("POPAUDIT_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "0.05", cfg.Match.AmountTol)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestMatchConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     MatchConfig
		wantErr bool
	}{
		{"defaults ok", MatchConfig{AmountTol: "0.01", TieBreakWeightFname: 0.3}, false},
		{"weight at bounds", MatchConfig{TieBreakWeightFname: 1, TieBreakMinSeller: 100}, false},
		{"weight too high", MatchConfig{TieBreakWeightFname: 1.1}, true},
		{"weight negative", MatchConfig{TieBreakWeightFname: -0.1}, true},
		{"min seller too high", MatchConfig{TieBreakMinSeller: 101}, true},
		{"min seller negative", MatchConfig{TieBreakMinSeller: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
