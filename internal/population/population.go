// Package population loads and normalizes the POP ledger: the ground-truth
// table of expected transactions a PDF batch is reconciled against.
package population

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/fetcher"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/parse"
	"github.com/auditops/popaudit/internal/textnorm"
)

// Ledger is the normalized population: clean records ready for matching
// plus every row that failed validation. Bad rows are excluded from
// matching but never dropped silently.
type Ledger struct {
	Records []model.PopulationRecord
	Issues  []model.ValidationIssue
}

// Load reads a POP workbook. Sheets named Koszty and Przychody are read as
// their sections; a workbook with neither is treated as a single Koszty
// sheet (the first one). A workbook whose header yields none of the
// required columns is a fatal error.
func Load(path string, aliases AliasTable) (*Ledger, error) {
	wb, err := fetcher.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}

	sheets := sectionSheets(wb.SheetNames())
	if len(sheets) == 0 {
		return nil, eris.Errorf("population: workbook %s has no sheets", path)
	}

	ledger := &Ledger{}
	for _, sec := range sheets {
		rows, err := wb.Rows(sec.sheet)
		if err != nil {
			return nil, err
		}
		if err := loadSection(ledger, sec.section, rows, aliases); err != nil {
			return nil, eris.Wrapf(err, "population: sheet %q", sec.sheet)
		}
	}

	zap.L().Info("population loaded",
		zap.String("file", path),
		zap.Int("records", len(ledger.Records)),
		zap.Int("validation_issues", len(ledger.Issues)),
	)
	return ledger, nil
}

type sectionSheet struct {
	section string
	sheet   string
}

func sectionSheets(names []string) []sectionSheet {
	var out []sectionSheet
	for _, n := range names {
		switch textnorm.Fold(n) {
		case "koszty":
			out = append(out, sectionSheet{model.SectionCosts, n})
		case "przychody":
			out = append(out, sectionSheet{model.SectionRevenue, n})
		}
	}
	if len(out) == 0 && len(names) > 0 {
		out = append(out, sectionSheet{model.SectionCosts, names[0]})
	}
	return out
}

func loadSection(ledger *Ledger, section string, rows [][]string, aliases AliasTable) error {
	if len(rows) == 0 {
		return eris.New("empty sheet")
	}

	cols := aliases.resolve(rows[0])
	for _, required := range []string{FieldNumber, FieldDate, FieldNet} {
		if _, ok := cols[required]; !ok {
			return eris.Errorf("required column %q not found (accepted headers: %s)",
				required, strings.Join(aliases[required], ", "))
		}
	}

	for i, row := range rows[1:] {
		rowNum := i + 2 // 1-based, after header
		if blankRow(row) {
			continue
		}

		rec := model.PopulationRecord{
			Section:      section,
			Number:       textnorm.Collapse(cell(row, cols[FieldNumber])),
			Counterparty: textnorm.Collapse(optCell(row, cols, FieldCounterparty)),
		}

		if idx, ok := cols[FieldPositionID]; ok && textnorm.Collapse(cell(row, idx)) != "" {
			rec.PositionID = textnorm.Collapse(cell(row, idx))
		} else {
			rec.PositionID = fmt.Sprintf("%d", i+1)
		}

		ok := true
		if raw := cell(row, cols[FieldDate]); raw != "" {
			d, err := parse.Date(raw)
			if err != nil {
				ledger.Issues = append(ledger.Issues, issue(section, rowNum, FieldDate, raw, err))
				ok = false
			} else {
				rec.Date = d
			}
		}

		raw := cell(row, cols[FieldNet])
		if strings.TrimSpace(raw) == "" {
			ledger.Issues = append(ledger.Issues, issue(section, rowNum, FieldNet, raw, eris.New("empty amount")))
			ok = false
		} else if net, err := parse.Amount(raw); err != nil {
			ledger.Issues = append(ledger.Issues, issue(section, rowNum, FieldNet, raw, err))
			ok = false
		} else {
			rec.NetAmount = net
		}

		if rec.Number == "" && rec.Date == "" {
			ledger.Issues = append(ledger.Issues, issue(section, rowNum, FieldNumber, "", eris.New("row has neither number nor date")))
			ok = false
		}

		if ok {
			ledger.Records = append(ledger.Records, rec)
		}
	}
	return nil
}

func issue(section string, row int, field, value string, err error) model.ValidationIssue {
	return model.ValidationIssue{
		Section: section,
		Row:     row,
		Field:   field,
		Value:   value,
		Reason:  err.Error(),
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func optCell(row []string, cols map[string]int, field string) string {
	idx, ok := cols[field]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
