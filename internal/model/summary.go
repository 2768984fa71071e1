package model

// SectionSummary aggregates verdicts for one POP section.
type SectionSummary struct {
	Positions  int `json:"liczba_pozycji"`
	PDFs       int `json:"liczba_pdf"`
	Found      int `json:"znalezione"`
	Missing    int `json:"braki_pdf"`
	Mismatched int `json:"niezgodne"`
	// OKConservative counts fully consistent verdicts under the
	// effective_conservative policy: needs_review amount agreements are
	// excluded no matter how close the numbers are.
	OKConservative int `json:"ok_konserwatywnie"`
	NeedsReview    int `json:"needs_review"`
}

// MismatchBreakdown counts field-level disagreements across found verdicts.
type MismatchBreakdown struct {
	Number int `json:"numer"`
	Date   int `json:"data"`
	Net    int `json:"netto"`
}

// RunSummary is the verdicts_summary.json payload.
type RunSummary struct {
	Sections           map[string]SectionSummary `json:"sekcje"`
	TieBreakBy         map[string]int            `json:"tiebreak_by"`
	ConfidenceAvgAll   float64                   `json:"confidence_avg_all"`
	ConfidenceAvgFound float64                   `json:"confidence_avg_found"`
	Mismatches         MismatchBreakdown         `json:"niezgodnosci"`
	ValidationIssues   int                       `json:"bledy_populacji"`
	GlobalNotes        []string                  `json:"uwagi_globalne"`
}

// GitInfo identifies the source revision a run was produced from.
type GitInfo struct {
	Branch string `json:"branch"`
	Commit string `json:"commit"`
}

// KPI is the headline metric block shared by run_metadata.json and the
// spreadsheet report.
type KPI struct {
	TieBreakByCounts   map[string]int    `json:"tiebreak_by_counts"`
	ConfidenceAvgAll   float64           `json:"confidence_avg_all"`
	ConfidenceAvgFound float64           `json:"confidence_avg_found"`
	PDFsCosts          int               `json:"liczba_pdf_koszty"`
	PDFsRevenue        int               `json:"liczba_pdf_przychody"`
	PositionsCosts     int               `json:"liczba_pozycji_koszty"`
	PositionsRevenue   int               `json:"liczba_pozycji_przychody"`
	Mismatches         MismatchBreakdown `json:"niezgodnosci"`
	MissingPDF         map[string]int    `json:"braki_pdf"`
}

// RunParams echoes the effective run configuration for provenance.
type RunParams struct {
	PDFRoot             string  `json:"pdf_root"`
	POPFile             string  `json:"pop_file"`
	OutDir              string  `json:"out_dir"`
	AmountTol           string  `json:"amount_tol"`
	TieBreakWeightFname float64 `json:"tiebreak_weight_fname"`
	TieBreakMinSeller   float64 `json:"tiebreak_min_seller"`
	Overrides           string  `json:"overrides,omitempty"`
}

// RunMetadata is the run_metadata.json payload.
type RunMetadata struct {
	GeneratedAt string    `json:"generated_at"`
	RunDir      string    `json:"run_dir"`
	Git         GitInfo   `json:"git"`
	Params      RunParams `json:"params"`
	KPI         KPI       `json:"kpi"`
}
