package renamer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditops/popaudit/internal/matcher"
	"github.com/auditops/popaudit/internal/model"
)

type fakeFS struct {
	dirs   []string
	copies map[string]string // dst -> src
}

func newFakeFS() *fakeFS {
	return &fakeFS{copies: map[string]string{}}
}

func (f *fakeFS) MkdirAll(path string) error {
	f.dirs = append(f.dirs, path)
	return nil
}

func (f *fakeFS) CopyFile(src, dst string) error {
	f.copies[dst] = src
	return nil
}

func strp(s string) *string { return &s }

func found(id, number, path string) model.MatchVerdict {
	return model.MatchVerdict{
		Section:    model.SectionCosts,
		PositionID: id,
		NumberPOP:  number,
		Match:      model.MatchInfo{Status: model.StatusFound, Criterion: model.CriterionNumber, Confidence: 1},
		PDF:        model.PDFRef{OriginalName: strp(filepath.Base(path)), Path: strp(path)},
	}
}

func missing(id, number string) model.MatchVerdict {
	return model.MatchVerdict{
		Section:    model.SectionCosts,
		PositionID: id,
		NumberPOP:  number,
		Match:      model.MatchInfo{Status: model.StatusNotFound, Criterion: model.CriterionNumber},
	}
}

func TestStandardName(t *testing.T) {
	v := found("K1", "FV/007/2024", "/batch/x.pdf")
	assert.Equal(t, "koszty_k1_fv-7-2024.pdf", StandardName(v))

	v = found("K2", "", "/batch/y.pdf")
	assert.Equal(t, "koszty_k2_bez-numeru.pdf", StandardName(v))
}

func TestAttach(t *testing.T) {
	fs := newFakeFS()
	verdicts := []model.MatchVerdict{
		found("K1", "FV/1/2024", "/batch/a.pdf"),
		missing("K2", "FV/2/2024"),
	}

	out, err := Attach(fs, "run", verdicts)
	require.NoError(t, err)
	require.Len(t, out, 2)

	require.NotNil(t, out[0].PDF.RenamedTo)
	assert.Equal(t, "koszty_k1_fv-1-2024.pdf", *out[0].PDF.RenamedTo)
	assert.Equal(t, "/batch/a.pdf", fs.copies[filepath.Join("run", AttachDir, "koszty_k1_fv-1-2024.pdf")])

	assert.Nil(t, out[1].PDF.RenamedTo)
	assert.Nil(t, verdicts[0].PDF.RenamedTo, "input verdicts untouched")
}

func TestAttach_DuplicateTargetsSuffixed(t *testing.T) {
	fs := newFakeFS()
	verdicts := []model.MatchVerdict{
		found("K1", "FV/1/2024", "/batch/a.pdf"),
		found("K1", "FV/1/2024", "/batch/b.pdf"),
	}

	out, err := Attach(fs, "run", verdicts)
	require.NoError(t, err)
	assert.Equal(t, "koszty_k1_fv-1-2024.pdf", *out[0].PDF.RenamedTo)
	assert.Equal(t, "koszty_k1_fv-1-2024_2.pdf", *out[1].PDF.RenamedTo)
	assert.Len(t, fs.copies, 2)
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.csv")
	require.NoError(t, os.WriteFile(path, []byte("pozycja_id,sciezka_pdf\nK1,/batch/a.pdf\nK2,/batch/b.pdf\n"), 0o644))

	got, err := LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"K1": "/batch/a.pdf", "K2": "/batch/b.pdf"}, got)
}

func TestLoadOverrides_DuplicateRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overrides.csv")
	require.NoError(t, os.WriteFile(path, []byte("pozycja_id,sciezka_pdf\nK1,/a.pdf\nK1,/b.pdf\n"), 0o644))

	_, err := LoadOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate override")
}

func TestApplyOverrides(t *testing.T) {
	net := decimal.RequireFromString("100.00")
	cfg := matcher.Config{AmountTol: decimal.RequireFromString("0.01")}

	pops := []model.PopulationRecord{{
		Section:    model.SectionCosts,
		PositionID: "K1",
		Number:     "FV/1/2024",
		Date:       "2024-01-10",
		NetAmount:  net,
	}}
	invoices := []model.InvoiceRecord{{
		SourcePath:     "/batch/a.pdf",
		SourceFilename: "a.pdf",
		InvoiceID:      "FV/1/2024",
		IssueDate:      "2024-01-10",
		TotalNet:       &net,
		AmountSource:   model.AmountSourceAnchor,
	}}
	verdicts := []model.MatchVerdict{missing("K1", "FV/1/2024")}

	out, err := ApplyOverrides(cfg, verdicts, pops, invoices, map[string]string{"K1": "/batch/a.pdf"})
	require.NoError(t, err)
	require.Len(t, out, 1)

	v := out[0]
	assert.Equal(t, model.StatusFound, v.Match.Status)
	assert.Equal(t, "a.pdf", *v.PDF.OriginalName)
	assert.True(t, v.Consistent)
	require.NotNil(t, v.Notes)
	assert.Contains(t, *v.Notes, "ręczne przypisanie")

	assert.Equal(t, model.StatusNotFound, verdicts[0].Match.Status, "input untouched")
}

func TestApplyOverrides_FileOutsideIndex(t *testing.T) {
	cfg := matcher.Config{AmountTol: decimal.RequireFromString("0.01")}
	pops := []model.PopulationRecord{{Section: model.SectionCosts, PositionID: "K1", Number: "FV/1/2024"}}
	verdicts := []model.MatchVerdict{missing("K1", "FV/1/2024")}

	out, err := ApplyOverrides(cfg, verdicts, pops, nil, map[string]string{"K1": "/elsewhere/extra.pdf"})
	require.NoError(t, err)

	v := out[0]
	assert.Equal(t, model.StatusFound, v.Match.Status)
	assert.Equal(t, "extra.pdf", *v.PDF.OriginalName)
	assert.False(t, v.Consistent)
	assert.Contains(t, *v.Notes, "spoza indeksu")
}

func TestApplyOverrides_UnknownPositionRejected(t *testing.T) {
	cfg := matcher.Config{AmountTol: decimal.RequireFromString("0.01")}
	verdicts := []model.MatchVerdict{missing("K1", "FV/1/2024")}

	_, err := ApplyOverrides(cfg, verdicts, nil, nil, map[string]string{"K1": "/a.pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown position")
}

func TestWriteEnriched(t *testing.T) {
	net := decimal.RequireFromString("100.00")
	pops := []model.PopulationRecord{
		{Section: model.SectionCosts, PositionID: "K1", Number: "FV/1/2024", Date: "2024-01-10", NetAmount: net, Counterparty: "ACME"},
		{Section: model.SectionRevenue, PositionID: "P1", Number: "S/1/2024", Date: "2024-02-01", NetAmount: net},
	}
	v := found("K1", "FV/1/2024", "/batch/a.pdf")
	v.PDF.RenamedTo = strp("koszty_k1_fv-1-2024.pdf")

	path := filepath.Join(t.TempDir(), "populacja_enriched.xlsx")
	require.NoError(t, WriteEnriched(path, pops, []model.MatchVerdict{v}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
