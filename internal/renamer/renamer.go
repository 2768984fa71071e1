package renamer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/matcher"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/textnorm"
)

// AttachDir is the subdirectory of the run directory that receives the
// renamed PDF copies.
const AttachDir = "zalaczniki"

// FS is the slice of filesystem behaviour the renamer needs. Tests swap in
// a recording fake; production uses OSFS.
type FS interface {
	MkdirAll(path string) error
	CopyFile(src, dst string) error
}

// OSFS is the real-disk FS.
type OSFS struct{}

func (OSFS) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSFS) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrapf(err, "renamer: open %s", src)
	}
	defer in.Close() //nolint:errcheck

	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "renamer: create %s", dst)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close() //nolint:errcheck
		return eris.Wrapf(err, "renamer: copy %s", dst)
	}
	return eris.Wrapf(out.Close(), "renamer: close %s", dst)
}

// ApplyOverrides re-resolves the overridden positions and returns a new
// verdict slice; the input is left untouched. An override wins over whatever
// the automatic match decided, including brak.
func ApplyOverrides(cfg matcher.Config, verdicts []model.MatchVerdict, pops []model.PopulationRecord, invoices []model.InvoiceRecord, overrides map[string]string) ([]model.MatchVerdict, error) {
	out := make([]model.MatchVerdict, len(verdicts))
	copy(out, verdicts)
	if len(overrides) == 0 {
		return out, nil
	}

	byPath := make(map[string]*model.InvoiceRecord, len(invoices))
	byName := make(map[string]*model.InvoiceRecord, len(invoices))
	for i := range invoices {
		byPath[invoices[i].SourcePath] = &invoices[i]
		byName[invoices[i].SourceFilename] = &invoices[i]
	}
	popByID := make(map[string]model.PopulationRecord, len(pops))
	for _, p := range pops {
		if _, ok := popByID[p.PositionID]; !ok {
			popByID[p.PositionID] = p
		}
	}

	log := zap.L().With(zap.String("component", "renamer"))
	for i := range out {
		path, ok := overrides[out[i].PositionID]
		if !ok {
			continue
		}
		pop, ok := popByID[out[i].PositionID]
		if !ok {
			return nil, eris.Errorf("renamer: override for unknown position %s", out[i].PositionID)
		}
		inv := byPath[path]
		if inv == nil {
			inv = byName[filepath.Base(path)]
		}
		if inv != nil {
			v := matcher.Verdict(cfg, pop, inv, model.CriterionNumber)
			v.Notes = note(v.Notes, "ręczne przypisanie")
			out[i] = v
			continue
		}
		// File never went through the indexer. Attach it as-is; the
		// reviewer vouched for it, the engine has nothing to compare.
		out[i] = attachOnlyVerdict(pop, path)
		log.Warn("override file not in index",
			zap.String("position", pop.PositionID),
			zap.String("path", path),
		)
	}
	return out, nil
}

func attachOnlyVerdict(pop model.PopulationRecord, path string) model.MatchVerdict {
	name := filepath.Base(path)
	notes := "ręczne przypisanie, plik spoza indeksu"
	return model.MatchVerdict{
		Section:    pop.Section,
		PositionID: pop.PositionID,
		NumberPOP:  pop.Number,
		DatePOP:    pop.Date,
		NetPOP:     pop.NetAmount.InexactFloat64(),
		Match: model.MatchInfo{
			Status:     model.StatusFound,
			Criterion:  model.CriterionNumber,
			Confidence: 1,
		},
		PDF: model.PDFRef{
			OriginalName: &name,
			Path:         &path,
		},
		Notes: &notes,
	}
}

// Attach copies every matched PDF into outDir/zalaczniki under its
// standardized name and records the new name on a verdict copy.
func Attach(fs FS, outDir string, verdicts []model.MatchVerdict) ([]model.MatchVerdict, error) {
	out := make([]model.MatchVerdict, len(verdicts))
	copy(out, verdicts)

	dir := filepath.Join(outDir, AttachDir)
	if err := fs.MkdirAll(dir); err != nil {
		return nil, eris.Wrapf(err, "renamer: mkdir %s", dir)
	}

	seen := map[string]int{}
	for i := range out {
		v := &out[i]
		if !v.Found() || v.PDF.Path == nil {
			continue
		}
		name := StandardName(*v)
		// Two positions may legitimately point at the same PDF; suffix the
		// later copies instead of overwriting.
		if n := seen[name]; n > 0 {
			ext := filepath.Ext(name)
			name = fmt.Sprintf("%s_%d%s", strings.TrimSuffix(name, ext), n+1, ext)
		}
		seen[StandardName(*v)]++

		if err := fs.CopyFile(*v.PDF.Path, filepath.Join(dir, name)); err != nil {
			return nil, err
		}
		v.PDF.RenamedTo = &name
	}
	return out, nil
}

// StandardName builds the attachment filename for a matched verdict:
// section, position id and the normalized invoice number, joined with
// underscores and safe for any filesystem.
func StandardName(v model.MatchVerdict) string {
	num := textnorm.NormalizeNumber(v.NumberPOP)
	if num == "" {
		num = "bez-numeru"
	}
	return fmt.Sprintf("%s_%s_%s.pdf",
		sanitize(v.Section), sanitize(v.PositionID), sanitize(num))
}

func sanitize(s string) string {
	s = textnorm.Fold(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}

func note(existing *string, extra string) *string {
	if existing == nil {
		return &extra
	}
	joined := *existing + "; " + extra
	return &joined
}
