package renamer

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/auditops/popaudit/internal/model"
)

// WriteEnriched writes the population workbook back out with an attachment
// column, one sheet per section in first-seen order. The source workbook is
// never touched.
func WriteEnriched(path string, pops []model.PopulationRecord, verdicts []model.MatchVerdict) error {
	type key struct{ section, position string }
	attached := make(map[key]string, len(verdicts))
	for _, v := range verdicts {
		if !v.Found() {
			continue
		}
		k := key{v.Section, v.PositionID}
		switch {
		case v.PDF.RenamedTo != nil:
			attached[k] = *v.PDF.RenamedTo
		case v.PDF.OriginalName != nil:
			attached[k] = *v.PDF.OriginalName
		}
	}

	f := xlsx.NewFile()
	sheets := map[string]*xlsx.Sheet{}
	for _, p := range pops {
		sheet, ok := sheets[p.Section]
		if !ok {
			var err error
			sheet, err = f.AddSheet(p.Section)
			if err != nil {
				return eris.Wrapf(err, "renamer: add sheet %s", p.Section)
			}
			header := sheet.AddRow()
			for _, h := range []string{"pozycja_id", "numer", "data", "netto", "kontrahent", "zalacznik"} {
				header.AddCell().SetString(h)
			}
			sheets[p.Section] = sheet
		}
		row := sheet.AddRow()
		row.AddCell().SetString(p.PositionID)
		row.AddCell().SetString(p.Number)
		row.AddCell().SetString(p.Date)
		row.AddCell().SetFloat(p.NetAmount.InexactFloat64())
		row.AddCell().SetString(p.Counterparty)
		row.AddCell().SetString(attached[key{p.Section, p.PositionID}])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "renamer: mkdir for %s", path)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "renamer: save %s", path)
	}
	return nil
}
