package pdfindex

import (
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/auditops/popaudit/internal/anchor"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/parse"
	"github.com/auditops/popaudit/internal/textnorm"
)

// fields is the raw yield of the heuristics over one document's text.
type fields struct {
	Number    string
	Date      string
	Net       *decimal.Decimal
	NetSource model.AmountSource
	Currency  string
	Seller    string
}

var (
	// number next to an invoice label wins over any free-floating candidate
	labeledNumberRe = regexp.MustCompile(`(?i)(?:FAKTURA(?:\s+VAT)?|INVOICE|RACHUNEK)\s*(?:NR|NO\.?|NUMER|#)?\s*[:\-]?\s*([A-Za-z0-9][A-Za-z0-9_/\-]{2,})`)
	segmentedIDRe   = regexp.MustCompile(`\b[A-Za-z]{0,5}\s?\d{1,4}(?:[/_\-]\d{1,4}){1,4}\b`)

	sellerLabelRe = regexp.MustCompile(`(?i)(?:SPRZEDAWCA|SELLER|SUPPLIER|WYSTAWCA)\s*[:\-]\s*([^\n]+)`)

	plnRe = regexp.MustCompile(`(?i)\bPLN\b|zł`)
	eurRe = regexp.MustCompile(`(?i)\bEUR\b|€`)
	usdRe = regexp.MustCompile(`(?i)\bUSD\b|\$`)
)

// extractFields applies the invoice heuristics to collapsed PDF text.
func extractFields(text string) fields {
	var f fields

	if m := labeledNumberRe.FindStringSubmatch(text); m != nil {
		f.Number = textnorm.Collapse(m[1])
	} else if m := segmentedIDRe.FindString(text); m != "" {
		f.Number = textnorm.Collapse(m)
	}

	if d, ok := parse.DateIn(text); ok {
		f.Date = d
	}

	if net, src, ok := anchor.ExtractNet(text); ok {
		f.Net = &net
		f.NetSource = src
	}

	switch {
	case plnRe.MatchString(text):
		f.Currency = "PLN"
	case eurRe.MatchString(text):
		f.Currency = "EUR"
	case usdRe.MatchString(text):
		f.Currency = "USD"
	}

	if m := sellerLabelRe.FindStringSubmatch(text); m != nil {
		f.Seller = textnorm.Collapse(m[1])
	}

	return f
}
