// Package anchor classifies amount evidence found in PDF text by its
// proximity to anchor keywords. An amount printed next to NETTO/RAZEM/TOTAL
// is trusted; the same digits floating elsewhere in the document are not.
package anchor

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/parse"
)

// anchorWithin1p is the relative tolerance for the ok_anchor1p class.
var anchorWithin1p = decimal.NewFromFloat(0.01)

var (
	amountRe = regexp.MustCompile(`-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?`)

	// a genuine two-digit decimal tail; "1,234" alone is a thousands group
	decimalTailRe = regexp.MustCompile(`[.,]\d{2}$`)

	// labeled net totals, highest priority first
	netLabelRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:RAZEM|SUMA|TOTAL)[^\n]{0,40}?NETTO\D{0,20}(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`),
		regexp.MustCompile(`(?i)(?:NETTO\s*RAZEM|RAZEM\s*NETTO)\D{0,20}(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`),
		regexp.MustCompile(`(?i)(?:WARTOŚĆ|WARTOSC)[^\n]{0,40}?NETTO\D{0,20}(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`),
		regexp.MustCompile(`(?i)(?:SUMA|KWOTA)\s*NETTO\s*[:\-]?\s*(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`),
		regexp.MustCompile(`(?i)NET(?:\s*AMOUNT)?\s*[:\-]?\s*(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`),
		regexp.MustCompile(`(?i)NETTO\s*[:\-]?\s*(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`),
	}

	// broader anchor set used when deciding whether any amount has anchor
	// context at all (NET/TOTAL/VAT/GROSS/AMOUNT DUE and Polish spellings)
	anchorNearRe = regexp.MustCompile(`(?i)(NETTO|BRUTTO|RAZEM|SUMA|TOTAL|NET|GROSS|VAT|DO\s*ZAP\x{0141}ATY|DO\s*ZAPLATY|AMOUNT\s*DUE)\D{0,20}(-?(?:\d{1,3}(?:[ .,\x{00A0}]\d{3})+|\d+)(?:[.,]\d{2})?)`)
)

// ExtractNet pulls the most trustworthy net total out of PDF text. It tries
// labeled net lines first, then a document whose anchor keywords all point
// at one single amount, and only then falls back to the first amount with
// decimal places anywhere in the document (anywhere source).
func ExtractNet(text string) (decimal.Decimal, model.AmountSource, bool) {
	for _, re := range netLabelRes {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, err := parse.Amount(m[len(m)-1]); err == nil {
				return d, model.AmountSourceAnchor, true
			}
		}
	}
	if d, ok := soleAnchoredAmount(text); ok {
		return d, model.AmountSourceAnchor, true
	}
	for _, raw := range amountsIn(text) {
		if !decimalTailRe.MatchString(raw) {
			continue // bare integers are more often quantities than totals
		}
		if d, err := parse.Amount(raw); err == nil {
			return d, model.AmountSourceAnywhere, true
		}
	}
	return decimal.Decimal{}, "", false
}

// AnchoredAmounts returns every amount that appears next to an anchor
// keyword in the text.
func AnchoredAmounts(text string) []decimal.Decimal {
	var out []decimal.Decimal
	for _, m := range anchorNearRe.FindAllStringSubmatch(text, -1) {
		if d, err := parse.Amount(m[2]); err == nil {
			out = append(out, d)
		}
	}
	return out
}

// soleAnchoredAmount returns the anchored amount when every anchor keyword
// in the document points at the same figure. Distinct anchored figures mean
// an unlabeled netto/brutto/VAT breakdown, which the anywhere scan handles.
func soleAnchoredAmount(text string) (decimal.Decimal, bool) {
	var sole decimal.Decimal
	found := false
	for _, m := range anchorNearRe.FindAllStringSubmatch(text, -1) {
		if !decimalTailRe.MatchString(m[2]) {
			continue // percentages and counts, not money
		}
		d, err := parse.Amount(m[2])
		if err != nil {
			continue
		}
		if found && !d.Equal(sole) {
			return decimal.Decimal{}, false
		}
		sole, found = d, true
	}
	return sole, found
}

// Classify decides whether a PDF net total agrees with the expected POP
// value and how much that agreement can be trusted.
//
//   - strict: within tol and the amount came from an anchor context
//   - ok_anchor1p: anchored and within 1% of the expected value
//   - needs_review: within tol but the amount had no anchor context; the
//     raw numbers agree, yet the conservative policy never counts it as OK
func Classify(pdfNet decimal.Decimal, src model.AmountSource, expected, tol decimal.Decimal) (bool, model.AmountClass) {
	diff := pdfNet.Sub(expected).Abs()
	withinTol := diff.Cmp(tol) <= 0

	if src == model.AmountSourceAnchor {
		if withinTol {
			return true, model.AmountStrict
		}
		if !expected.IsZero() && diff.Div(expected.Abs()).Cmp(anchorWithin1p) <= 0 {
			return true, model.AmountOKAnchor1p
		}
		return false, ""
	}

	if withinTol {
		return true, model.AmountNeedsReview
	}
	return false, ""
}

// CountsAsOK applies the effective_conservative reporting policy: only
// strict and ok_anchor1p agreements count toward OK KPIs.
func CountsAsOK(class model.AmountClass) bool {
	return class == model.AmountStrict || class == model.AmountOKAnchor1p
}

func amountsIn(text string) []string {
	idxs := amountRe.FindAllStringIndex(text, -1)
	out := make([]string, 0, len(idxs))
	for _, span := range idxs {
		// reject matches glued to surrounding digits
		if span[0] > 0 && isDigit(text[span[0]-1]) {
			continue
		}
		if span[1] < len(text) && isDigit(text[span[1]]) {
			continue
		}
		out = append(out, text[span[0]:span[1]])
	}
	return out
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
