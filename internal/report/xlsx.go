package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/auditops/popaudit/internal/model"
)

// Sheet names of the final audit workbook.
const (
	SheetVerdicts   = "Werdykty"
	SheetMismatches = "Niezgodnosci"
	SheetMissing    = "Braki"
	SheetMetrics    = "Metryki"
)

var verdictHeader = []string{
	"sekcja", "pozycja_id", "numer_pop", "data_pop", "netto_pop",
	"status", "kryterium", "confidence", "plik_pdf", "numer_pdf",
	"data_pdf", "netto_pdf", "zgodnosc", "klasa_netto", "uwagi",
}

// WriteWorkbook writes the final multi-sheet audit report. The metrics sheet
// carries live formulas over the verdict sheet, so reviewers who hand-edit
// rows see the counters move.
func WriteWorkbook(path string, verdicts []model.MatchVerdict, kpi model.KPI) error {
	f := xlsx.NewFile()

	vs, err := f.AddSheet(SheetVerdicts)
	if err != nil {
		return eris.Wrap(err, "report: add verdict sheet")
	}
	addStringRow(vs, verdictHeader...)
	for _, v := range verdicts {
		writeVerdictRow(vs.AddRow(), v)
	}

	ms, err := f.AddSheet(SheetMismatches)
	if err != nil {
		return eris.Wrap(err, "report: add mismatch sheet")
	}
	addStringRow(ms, verdictHeader...)
	for _, v := range verdicts {
		if v.Found() && !v.Consistent {
			writeVerdictRow(ms.AddRow(), v)
		}
	}

	bs, err := f.AddSheet(SheetMissing)
	if err != nil {
		return eris.Wrap(err, "report: add missing sheet")
	}
	addStringRow(bs, "sekcja", "pozycja_id", "numer_pop", "data_pop", "netto_pop")
	for _, v := range verdicts {
		if v.Found() {
			continue
		}
		row := bs.AddRow()
		row.AddCell().SetString(v.Section)
		row.AddCell().SetString(v.PositionID)
		row.AddCell().SetString(v.NumberPOP)
		row.AddCell().SetString(v.DatePOP)
		row.AddCell().SetFloat(v.NetPOP)
	}

	if err := writeMetricsSheet(f, len(verdicts), kpi); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "report: mkdir for %s", path)
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func writeVerdictRow(row *xlsx.Row, v model.MatchVerdict) {
	row.AddCell().SetString(v.Section)
	row.AddCell().SetString(v.PositionID)
	row.AddCell().SetString(v.NumberPOP)
	row.AddCell().SetString(v.DatePOP)
	row.AddCell().SetFloat(v.NetPOP)
	row.AddCell().SetString(string(v.Match.Status))
	row.AddCell().SetString(string(v.Match.Criterion))
	row.AddCell().SetFloat(v.Match.Confidence)
	row.AddCell().SetString(deref(v.PDF.OriginalName))
	row.AddCell().SetString(deref(v.Extracted.Number))
	row.AddCell().SetString(deref(v.Extracted.Date))
	if v.Extracted.Net != nil {
		row.AddCell().SetFloat(*v.Extracted.Net)
	} else {
		row.AddCell().SetString("")
	}
	row.AddCell().SetBool(v.Consistent)
	row.AddCell().SetString(string(v.Compare.NetClass))
	row.AddCell().SetString(deref(v.Notes))
}

// writeMetricsSheet lays out label/value pairs. Counters over verdicts are
// formulas, headline KPI values are baked in.
func writeMetricsSheet(f *xlsx.File, nVerdicts int, kpi model.KPI) error {
	sheet, err := f.AddSheet(SheetMetrics)
	if err != nil {
		return eris.Wrap(err, "report: add metrics sheet")
	}
	last := nVerdicts + 1 // data starts at row 2

	addFormulaRow(sheet, "Liczba pozycji", fmt.Sprintf("COUNTA(%s!B2:B%d)", SheetVerdicts, last))
	addFormulaRow(sheet, "Znalezione", fmt.Sprintf(`COUNTIF(%s!F2:F%d,"%s")`, SheetVerdicts, last, model.StatusFound))
	addFormulaRow(sheet, "Braki PDF", fmt.Sprintf(`COUNTIF(%s!F2:F%d,"%s")`, SheetVerdicts, last, model.StatusNotFound))
	addFormulaRow(sheet, "Zgodne", fmt.Sprintf("COUNTIF(%s!M2:M%d,TRUE)", SheetVerdicts, last))
	addFormulaRow(sheet, "Needs review", fmt.Sprintf(`COUNTIF(%s!N2:N%d,"%s")`, SheetVerdicts, last, model.AmountNeedsReview))
	addFormulaRow(sheet, "Suma netto POP", fmt.Sprintf("SUM(%s!E2:E%d)", SheetVerdicts, last))
	addFormulaRow(sheet, "Srednia confidence", fmt.Sprintf("AVERAGE(%s!H2:H%d)", SheetVerdicts, last))

	addKPIRow(sheet, "Pozycje Koszty", kpi.PositionsCosts)
	addKPIRow(sheet, "Pozycje Przychody", kpi.PositionsRevenue)
	addKPIRow(sheet, "PDF Koszty", kpi.PDFsCosts)
	addKPIRow(sheet, "PDF Przychody", kpi.PDFsRevenue)
	addKPIRow(sheet, "Niezgodnosci numer", kpi.Mismatches.Number)
	addKPIRow(sheet, "Niezgodnosci data", kpi.Mismatches.Date)
	addKPIRow(sheet, "Niezgodnosci netto", kpi.Mismatches.Net)
	return nil
}

func addStringRow(sheet *xlsx.Sheet, cells ...string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func addFormulaRow(sheet *xlsx.Sheet, label, formula string) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetFormula(formula)
}

func addKPIRow(sheet *xlsx.Sheet, label string, value int) {
	row := sheet.AddRow()
	row.AddCell().SetString(label)
	row.AddCell().SetInt(value)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
