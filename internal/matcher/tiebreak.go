package matcher

import (
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/textnorm"
)

// breakTie resolves multiple candidates deterministically. Candidates must
// already be in stable (filename, path) order; scoring then never depends
// on enumeration order, and equal scores fall back to that same order.
//
// Each candidate is scored with
//
//	combined = w*filenameScore + (1-w)*sellerScore
//
// where both scores live in [0,100] and the seller term is zeroed below the
// MinSeller threshold, so a weak seller signal can never decide a tie.
func breakTie(cfg Config, pop model.PopulationRecord, cands []*model.InvoiceRecord, numberTie bool) (*model.InvoiceRecord, *model.TieBreakMeta, model.MatchCriterion) {
	w := cfg.WeightFname

	var (
		best       *model.InvoiceRecord
		bestScore  = -1.0
		bestFname  float64
		bestSeller float64
	)
	for _, c := range cands {
		fnameTerm := w * textnorm.FilenameScore(pop.Number, c.SourceFilename)

		sellerScore := textnorm.SellerScore(pop.Counterparty, c.SellerGuess)
		if sellerScore < cfg.MinSeller {
			sellerScore = 0
		}
		sellerTerm := (1 - w) * sellerScore

		if score := fnameTerm + sellerTerm; score > bestScore {
			best, bestScore = c, score
			bestFname, bestSeller = fnameTerm, sellerTerm
		}
	}

	meta := &model.TieBreakMeta{
		NumberNormEqual: numberTie && pop.Number != "" &&
			textnorm.NormalizeNumber(pop.Number) == textnorm.NormalizeNumber(best.InvoiceID),
	}

	criterion := model.CriterionDateNet
	switch {
	case bestFname == 0 && bestSeller == 0:
		meta.By = model.TieBreakByOther
		if numberTie {
			criterion = model.CriterionNumberFilename
		}
	case bestFname >= bestSeller:
		meta.By = model.TieBreakByFilename
		if numberTie {
			criterion = model.CriterionNumberFilename
		}
	default:
		meta.By = model.TieBreakBySeller
		if numberTie {
			criterion = model.CriterionNumberSeller
		}
	}

	return best, meta, criterion
}
