package report

import (
	"fmt"
	"math"

	"github.com/auditops/popaudit/internal/anchor"
	"github.com/auditops/popaudit/internal/model"
)

// BuildSummary aggregates verdicts, invoice records and population validation
// issues into the verdicts_summary.json payload.
func BuildSummary(verdicts []model.MatchVerdict, invoices []model.InvoiceRecord, issues []model.ValidationIssue) model.RunSummary {
	sections := map[string]model.SectionSummary{}
	tieBy := map[string]int{}
	var breakdown model.MismatchBreakdown
	var confAll, confFound float64
	found := 0

	for _, v := range verdicts {
		sec := sections[v.Section]
		sec.Positions++
		confAll += v.Match.Confidence

		if v.Found() {
			found++
			confFound += v.Match.Confidence
			sec.Found++
			if v.Compare.NetClass == model.AmountNeedsReview {
				sec.NeedsReview++
			}
			if v.Consistent && anchor.CountsAsOK(v.Compare.NetClass) {
				sec.OKConservative++
			} else if !v.Consistent {
				sec.Mismatched++
			}
			if !v.Compare.Number {
				breakdown.Number++
			}
			if !v.Compare.Date {
				breakdown.Date++
			}
			if !v.Compare.Net {
				breakdown.Net++
			}
		} else {
			sec.Missing++
		}
		if v.TieBreak != nil {
			tieBy[string(v.TieBreak.By)]++
		}
		sections[v.Section] = sec
	}

	// PDFs are indexed as one undivided batch. The whole batch is reported
	// under Koszty, matching the ledger convention of cost-side evidence.
	if sec, ok := sections[model.SectionCosts]; ok {
		sec.PDFs = len(invoices)
		sections[model.SectionCosts] = sec
	}

	summary := model.RunSummary{
		Sections:           sections,
		TieBreakBy:         tieBy,
		ConfidenceAvgAll:   avg(confAll, len(verdicts)),
		ConfidenceAvgFound: avg(confFound, found),
		Mismatches:         breakdown,
		ValidationIssues:   len(issues),
	}

	failed := 0
	for _, inv := range invoices {
		if inv.Failed() {
			failed++
		}
	}
	if failed > 0 {
		summary.GlobalNotes = append(summary.GlobalNotes,
			fmt.Sprintf("%d PDF(ów) nie dało się zindeksować", failed))
	}
	if len(issues) > 0 {
		summary.GlobalNotes = append(summary.GlobalNotes,
			fmt.Sprintf("%d wierszy populacji pominięto z powodu błędów walidacji", len(issues)))
	}
	return summary
}

// BuildKPI derives the headline metric block from a finished summary.
func BuildKPI(summary model.RunSummary) model.KPI {
	kpi := model.KPI{
		TieBreakByCounts:   summary.TieBreakBy,
		ConfidenceAvgAll:   summary.ConfidenceAvgAll,
		ConfidenceAvgFound: summary.ConfidenceAvgFound,
		Mismatches:         summary.Mismatches,
		MissingPDF:         map[string]int{},
	}
	for name, sec := range summary.Sections {
		kpi.MissingPDF[name] = sec.Missing
		switch name {
		case model.SectionCosts:
			kpi.PDFsCosts = sec.PDFs
			kpi.PositionsCosts = sec.Positions
		case model.SectionRevenue:
			kpi.PDFsRevenue = sec.PDFs
			kpi.PositionsRevenue = sec.Positions
		}
	}
	return kpi
}

func avg(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(sum/float64(n)*1000) / 1000
}
