package report

import (
	"math"
	"sort"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/auditops/popaudit/internal/model"
)

// MismatchRow is one line of the top-mismatch CSV.
type MismatchRow struct {
	Section    string  `csv:"sekcja"`
	PositionID string  `csv:"pozycja_id"`
	NumberPOP  string  `csv:"numer_pop"`
	NetPOP     float64 `csv:"netto_pop"`
	NetPDF     float64 `csv:"netto_pdf"`
	Deviation  float64 `csv:"odchylenie"`
	Criterion  string  `csv:"kryterium"`
	NumberOK   bool    `csv:"numer_ok"`
	DateOK     bool    `csv:"data_ok"`
	NetOK      bool    `csv:"netto_ok"`
}

// TopMismatches picks the found-but-inconsistent verdicts and orders them by
// absolute net deviation, largest first. Ties fall back to section then
// position id so the cut at n is stable.
func TopMismatches(verdicts []model.MatchVerdict, n int) []MismatchRow {
	var rows []MismatchRow
	for _, v := range verdicts {
		if !v.Found() || v.Consistent {
			continue
		}
		row := MismatchRow{
			Section:    v.Section,
			PositionID: v.PositionID,
			NumberPOP:  v.NumberPOP,
			NetPOP:     v.NetPOP,
			Criterion:  string(v.Match.Criterion),
			NumberOK:   v.Compare.Number,
			DateOK:     v.Compare.Date,
			NetOK:      v.Compare.Net,
		}
		if v.Extracted.Net != nil {
			row.NetPDF = *v.Extracted.Net
			row.Deviation = round2(*v.Extracted.Net - v.NetPOP)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := math.Abs(rows[i].Deviation), math.Abs(rows[j].Deviation)
		if di != dj {
			return di > dj
		}
		if rows[i].Section != rows[j].Section {
			return rows[i].Section < rows[j].Section
		}
		return rows[i].PositionID < rows[j].PositionID
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// WriteMismatchCSV writes the top-mismatch table, atomically.
func WriteMismatchCSV(path string, rows []MismatchRow) error {
	if rows == nil {
		rows = []MismatchRow{}
	}
	data, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "report: marshal mismatch rows")
	}
	return writeAtomic(path, data)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
