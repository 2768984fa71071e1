// Package renamer is the post-processing step after matching: it applies
// manual override assignments, copies matched PDFs under standardized
// attachment names and writes the enriched population workbook. It never
// mutates verdicts or invoice records in place; every output is a copy.
package renamer

import (
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// Override is one row of the manual assignment table.
type Override struct {
	PositionID string `csv:"pozycja_id"`
	PDFPath    string `csv:"sciezka_pdf"`
}

// LoadOverrides reads the override CSV into a position id keyed map.
// Duplicate position ids are a hard error; a silent last-wins here would
// hide a broken hand-edited table.
func LoadOverrides(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "renamer: read overrides %s", path)
	}
	var rows []Override
	if err := csvutil.Unmarshal(data, &rows); err != nil {
		return nil, eris.Wrapf(err, "renamer: parse overrides %s", path)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if r.PositionID == "" || r.PDFPath == "" {
			continue
		}
		if _, dup := out[r.PositionID]; dup {
			return nil, eris.Errorf("renamer: duplicate override for position %s", r.PositionID)
		}
		out[r.PositionID] = r.PDFPath
	}
	return out, nil
}
