package matcher

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/textnorm"
)

// invoiceIndex provides O(1) average candidate lookup by normalized number
// and by (date, amount bucket). Records that failed extraction carry no
// usable keys and are indexed nowhere.
type invoiceIndex struct {
	number  map[string][]*model.InvoiceRecord
	dateNet map[dateNetKey][]*model.InvoiceRecord
}

// dateNetKey buckets amounts by whole cents so tolerance lookups only scan
// a handful of neighboring buckets.
type dateNetKey struct {
	date  string
	cents int64
}

func buildIndex(invoices []model.InvoiceRecord) *invoiceIndex {
	idx := &invoiceIndex{
		number:  make(map[string][]*model.InvoiceRecord),
		dateNet: make(map[dateNetKey][]*model.InvoiceRecord),
	}
	for i := range invoices {
		rec := &invoices[i]
		if rec.Failed() {
			continue
		}
		if n := textnorm.NormalizeNumber(rec.InvoiceID); n != "" {
			idx.number[n] = append(idx.number[n], rec)
		}
		if rec.IssueDate != "" && rec.TotalNet != nil {
			key := dateNetKey{date: rec.IssueDate, cents: cents(*rec.TotalNet)}
			idx.dateNet[key] = append(idx.dateNet[key], rec)
		}
	}
	return idx
}

// byNumber returns all candidates sharing the normalized invoice number,
// sorted by filename so downstream scoring is order-independent.
func (idx *invoiceIndex) byNumber(number string) []*model.InvoiceRecord {
	n := textnorm.NormalizeNumber(number)
	if n == "" {
		return nil
	}
	return sortCandidates(idx.number[n])
}

// byDateNet returns candidates whose issue date equals date and whose net
// total is within tol of net (inclusive boundary).
func (idx *invoiceIndex) byDateNet(date string, net, tol decimal.Decimal) []*model.InvoiceRecord {
	if date == "" {
		return nil
	}
	lo, hi := cents(net.Sub(tol)), cents(net.Add(tol))
	var out []*model.InvoiceRecord
	for c := lo; c <= hi; c++ {
		for _, rec := range idx.dateNet[dateNetKey{date: date, cents: c}] {
			if rec.TotalNet.Sub(net).Abs().Cmp(tol) <= 0 {
				out = append(out, rec)
			}
		}
	}
	return sortCandidates(out)
}

// sortCandidates imposes the stable (filename, path) order required before
// any tie-break scoring.
func sortCandidates(cands []*model.InvoiceRecord) []*model.InvoiceRecord {
	if len(cands) < 2 {
		return cands
	}
	out := make([]*model.InvoiceRecord, len(cands))
	copy(out, cands)
	sort.Slice(out, func(i, j int) bool {
		if out[i].SourceFilename != out[j].SourceFilename {
			return out[i].SourceFilename < out[j].SourceFilename
		}
		return out[i].SourcePath < out[j].SourcePath
	})
	return out
}

func cents(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
