// Package matcher pairs population positions with indexed PDFs. It runs as
// a single deterministic pass: identical inputs always yield an identical
// verdict stream, independent of filesystem or map iteration order.
package matcher

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/anchor"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/textnorm"
)

// Config carries the run-level matching parameters, passed explicitly by
// the caller. There is no package-level tuning state.
type Config struct {
	AmountTol   decimal.Decimal // inclusive: a difference equal to AmountTol matches
	WeightFname float64         // [0,1] weight of the filename term in tie-breaks
	MinSeller   float64         // [0,100] minimum seller similarity to count its term
}

// Match produces exactly one verdict per population record, in input order.
// Positions without any surviving candidate get a brak verdict; that is a
// normal terminal state, not an error.
func Match(cfg Config, pops []model.PopulationRecord, invoices []model.InvoiceRecord) []model.MatchVerdict {
	idx := buildIndex(invoices)
	log := zap.L().With(zap.String("component", "matcher"))

	verdicts := make([]model.MatchVerdict, 0, len(pops))
	found := 0
	for _, pop := range pops {
		v := matchOne(cfg, pop, idx)
		if v.Found() {
			found++
		}
		verdicts = append(verdicts, v)
	}

	log.Info("matching complete",
		zap.Int("positions", len(pops)),
		zap.Int("found", found),
		zap.Int("missing", len(pops)-found),
	)
	return verdicts
}

func matchOne(cfg Config, pop model.PopulationRecord, idx *invoiceIndex) model.MatchVerdict {
	// 1. primary: normalized invoice number
	if cands := idx.byNumber(pop.Number); len(cands) > 0 {
		if len(cands) == 1 {
			if amountsAgreeForNumberMatch(cfg, pop, cands[0]) {
				return buildVerdict(cfg, pop, cands[0], model.CriterionNumber, nil)
			}
			// sole number candidate rejected on amount; fall through to date+net
		} else {
			winner, meta, criterion := breakTie(cfg, pop, cands, true)
			return buildVerdict(cfg, pop, winner, criterion, meta)
		}
	}

	// 2. fallback: issue date + net amount
	if cands := idx.byDateNet(pop.Date, pop.NetAmount, cfg.AmountTol); len(cands) > 0 {
		if len(cands) == 1 {
			return buildVerdict(cfg, pop, cands[0], model.CriterionDateNet, nil)
		}
		winner, meta, _ := breakTie(cfg, pop, cands, false)
		return buildVerdict(cfg, pop, winner, model.CriterionDateNet, meta)
	}

	// 3. no candidate anywhere
	return notFoundVerdict(pop)
}

// amountsAgreeForNumberMatch gates the single-candidate number match: when
// both sides carry an amount they must agree within tolerance, otherwise
// the candidate does not win on number alone.
func amountsAgreeForNumberMatch(cfg Config, pop model.PopulationRecord, c *model.InvoiceRecord) bool {
	if c.TotalNet == nil {
		return true
	}
	return c.TotalNet.Sub(pop.NetAmount).Abs().Cmp(cfg.AmountTol) <= 0
}

func buildVerdict(cfg Config, pop model.PopulationRecord, c *model.InvoiceRecord, criterion model.MatchCriterion, meta *model.TieBreakMeta) model.MatchVerdict {
	numOK := pop.Number != "" && c.InvoiceID != "" &&
		textnorm.NormalizeNumber(pop.Number) == textnorm.NormalizeNumber(c.InvoiceID)
	dateOK := pop.Date != "" && pop.Date == c.IssueDate

	var (
		netOK    bool
		netClass model.AmountClass
	)
	if c.TotalNet != nil {
		netOK, netClass = anchor.Classify(*c.TotalNet, c.AmountSource, pop.NetAmount, cfg.AmountTol)
	}

	v := model.MatchVerdict{
		Section:    pop.Section,
		PositionID: pop.PositionID,
		NumberPOP:  pop.Number,
		DatePOP:    pop.Date,
		NetPOP:     pop.NetAmount.InexactFloat64(),
		Match: model.MatchInfo{
			Status:     model.StatusFound,
			Criterion:  criterion,
			Confidence: 1,
		},
		PDF: model.PDFRef{
			OriginalName: ptr(c.SourceFilename),
			Path:         ptr(c.SourcePath),
		},
		Extracted: model.Extracted{
			Number: nonEmpty(c.InvoiceID),
			Date:   nonEmpty(c.IssueDate),
		},
		Compare: model.Comparison{
			Number:   numOK,
			Date:     dateOK,
			Net:      netOK,
			NetClass: netClass,
		},
		TieBreak:   meta,
		Consistent: numOK && dateOK && netOK,
	}
	if c.TotalNet != nil {
		v.Extracted.Net = ptr(c.TotalNet.InexactFloat64())
	}
	if netClass == model.AmountNeedsReview {
		v.Notes = ptr("netto znalezione poza kotwicą - wymaga przeglądu")
	}
	return v
}

// Verdict builds the full verdict for an explicitly chosen candidate. The
// override path uses it to bypass candidate selection while keeping the
// same field comparisons.
func Verdict(cfg Config, pop model.PopulationRecord, c *model.InvoiceRecord, criterion model.MatchCriterion) model.MatchVerdict {
	return buildVerdict(cfg, pop, c, criterion, nil)
}

func notFoundVerdict(pop model.PopulationRecord) model.MatchVerdict {
	return model.MatchVerdict{
		Section:    pop.Section,
		PositionID: pop.PositionID,
		NumberPOP:  pop.Number,
		DatePOP:    pop.Date,
		NetPOP:     pop.NetAmount.InexactFloat64(),
		Match: model.MatchInfo{
			Status:     model.StatusNotFound,
			Criterion:  model.CriterionNumber,
			Confidence: 0,
		},
	}
}

func ptr[T any](v T) *T { return &v }

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
