package model

// MatchStatus is the terminal state of one population position.
type MatchStatus string

const (
	StatusFound    MatchStatus = "znaleziono"
	StatusNotFound MatchStatus = "brak"
)

// MatchCriterion names the rule that produced a match.
type MatchCriterion string

const (
	CriterionNumber         MatchCriterion = "number"
	CriterionDateNet        MatchCriterion = "date+net"
	CriterionNumberFilename MatchCriterion = "number+filename"
	CriterionNumberSeller   MatchCriterion = "number+seller"
)

// TieBreakBy names the signal that decided a tie.
type TieBreakBy string

const (
	TieBreakByFilename TieBreakBy = "filename"
	TieBreakBySeller   TieBreakBy = "seller"
	TieBreakByNumber   TieBreakBy = "number"
	TieBreakByOther    TieBreakBy = "other"
)

// AmountClass classifies how an amount agreement was established.
type AmountClass string

const (
	// AmountStrict: amount found adjacent to an anchor keyword and equal
	// within tolerance.
	AmountStrict AmountClass = "strict"

	// AmountOKAnchor1p: amount found near an anchor keyword within 1% of the
	// expected value. Still counted as OK.
	AmountOKAnchor1p AmountClass = "ok_anchor1p"

	// AmountNeedsReview: amount found without anchor context. Never counted
	// as OK by the conservative reporting policy, regardless of the numbers.
	AmountNeedsReview AmountClass = "needs_review"
)

// MatchInfo is the nested dopasowanie.* block of a verdict.
type MatchInfo struct {
	Status     MatchStatus    `json:"status"`
	Criterion  MatchCriterion `json:"kryterium"`
	Confidence float64        `json:"confidence"` // 0 or 1 in the current mode
}

// PDFRef is the nested pdf.* block of a verdict.
type PDFRef struct {
	OriginalName *string `json:"plik_oryg"`
	RenamedTo    *string `json:"plik_po_zmianie"`
	Path         *string `json:"sciezka"`
}

// Extracted is the nested wyciagniete.* block: what the indexer pulled out of
// the matched PDF.
type Extracted struct {
	Number *string  `json:"numer_pdf"`
	Date   *string  `json:"data_pdf"`
	Net    *float64 `json:"netto_pdf"`
}

// Comparison is the nested porownanie.* block of field-level agreements.
type Comparison struct {
	Number bool `json:"numer"`
	Date   bool `json:"data"`
	Net    bool `json:"netto"`
	// NetClass is present when a PDF was matched; it carries the anchor
	// classification backing the Net flag.
	NetClass AmountClass `json:"klasa_netto,omitempty"`
}

// TieBreakMeta records the full reasoning of a tie-break decision. It is nil
// when no tie occurred.
type TieBreakMeta struct {
	By              TieBreakBy `json:"by"`
	NumberNormEqual bool       `json:"numer_norm_equal"`
}

// MatchVerdict is the final, immutable outcome for one PopulationRecord.
// Exactly one verdict is emitted per position, found or not. The struct is
// also the wire format of verdicts.jsonl; field order is fixed by the struct
// so repeated runs produce byte-identical output.
type MatchVerdict struct {
	Section    string        `json:"sekcja"`
	PositionID string        `json:"pozycja_id"`
	NumberPOP  string        `json:"numer_pop"`
	DatePOP    string        `json:"data_pop"`
	NetPOP     float64       `json:"netto_pop"`
	Match      MatchInfo     `json:"dopasowanie"`
	PDF        PDFRef        `json:"pdf"`
	Extracted  Extracted     `json:"wyciagniete"`
	Compare    Comparison    `json:"porownanie"`
	TieBreak   *TieBreakMeta `json:"tiebreak_meta,omitempty"`
	Consistent bool          `json:"zgodnosc"`
	Notes      *string       `json:"uwagi"`
}

// Found reports whether the position was matched to a PDF.
func (v MatchVerdict) Found() bool { return v.Match.Status == StatusFound }
