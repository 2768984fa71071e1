// Package model defines the core records exchanged between the indexer,
// normalizer, matcher and report builder.
package model

import (
	"github.com/shopspring/decimal"
)

// POP section names as they appear in the ledger workbook.
const (
	SectionCosts   = "Koszty"
	SectionRevenue = "Przychody"
)

// AmountSource describes where in the PDF text the net total was found.
type AmountSource string

const (
	// AmountSourceAnchor means the amount sat next to an anchor keyword
	// (NETTO/RAZEM/TOTAL/...), the baseline level of trust.
	AmountSourceAnchor AmountSource = "anchor"

	// AmountSourceAnywhere means the amount was picked up without anchor
	// context and any agreement based on it needs manual review.
	AmountSourceAnywhere AmountSource = "anywhere"
)

// InvoiceRecord is the indexed view of a single PDF. It is created once by
// the indexer, keyed by SourcePath, and never mutated afterwards.
type InvoiceRecord struct {
	SourcePath     string           `csv:"source_path" json:"source_path"`
	SourceFilename string           `csv:"source_filename" json:"source_filename"`
	InvoiceID      string           `csv:"invoice_id" json:"invoice_id"`
	IssueDate      string           `csv:"issue_date" json:"issue_date"` // ISO yyyy-mm-dd, empty when unknown
	TotalNet       *decimal.Decimal `csv:"total_net" json:"total_net"`
	Currency       string           `csv:"currency" json:"currency"`
	SellerGuess    string           `csv:"seller_guess" json:"seller_guess"`
	Error          string           `csv:"error" json:"error"`
	Confidence     int              `csv:"confidence" json:"confidence"` // 0 or 1
	ProcessingSecs float64          `csv:"processing_time" json:"processing_time"`
	AmountSource   AmountSource     `csv:"amount_source" json:"amount_source"`
}

// Failed reports whether text or field extraction failed for this file.
func (r InvoiceRecord) Failed() bool { return r.Error != "" }

// PopulationRecord is one normalized row of the POP ledger.
type PopulationRecord struct {
	Section      string          `json:"sekcja"`
	PositionID   string          `json:"pozycja_id"`
	Number       string          `json:"numer"`
	Date         string          `json:"data"` // ISO yyyy-mm-dd, empty when unknown
	NetAmount    decimal.Decimal `json:"netto"`
	Counterparty string          `json:"kontrahent"`
}

// ValidationIssue records a POP row that could not be normalized. Such rows
// are excluded from matching but always counted in the run summary.
type ValidationIssue struct {
	Section string `json:"sekcja"`
	Row     int    `json:"wiersz"` // 1-based spreadsheet row
	Field   string `json:"pole"`
	Value   string `json:"wartosc"`
	Reason  string `json:"powod"`
}
