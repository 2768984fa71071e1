package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/matcher"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/pdfindex"
	"github.com/auditops/popaudit/internal/population"
	"github.com/auditops/popaudit/internal/report"
)

var (
	matchIndexCSV string
	matchPOPFile  string
	matchOutDir   string
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Match POP positions against an existing invoice index",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Match.Validate(); err != nil {
			return err
		}
		mcfg, err := matcherConfig(model.RunParams{
			AmountTol:           cfg.Match.AmountTol,
			TieBreakWeightFname: cfg.Match.TieBreakWeightFname,
			TieBreakMinSeller:   cfg.Match.TieBreakMinSeller,
		})
		if err != nil {
			return err
		}

		invoices, err := pdfindex.ReadIndexCSV(matchIndexCSV)
		if err != nil {
			return err
		}
		aliases, err := loadAliases()
		if err != nil {
			return err
		}
		ledger, err := population.Load(matchPOPFile, aliases)
		if err != nil {
			return err
		}

		verdicts := matcher.Match(mcfg, ledger.Records, invoices)

		if err := report.WriteVerdictsJSONL(filepath.Join(matchOutDir, artifactVerdicts), verdicts); err != nil {
			return err
		}
		summary := report.BuildSummary(verdicts, invoices, ledger.Issues)
		if err := report.WriteJSON(filepath.Join(matchOutDir, artifactSummary), summary); err != nil {
			return err
		}
		rows := report.TopMismatches(verdicts, cfg.Report.TopMismatches)
		if err := report.WriteMismatchCSV(filepath.Join(matchOutDir, artifactMismatches), rows); err != nil {
			return err
		}

		zap.L().Info("matching artifacts written",
			zap.String("out_dir", matchOutDir),
			zap.Int("positions", len(verdicts)),
		)
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVar(&matchIndexCSV, "index", artifactIndexCSV, "invoice index CSV")
	matchCmd.Flags().StringVar(&matchPOPFile, "pop", "", "POP population workbook (required)")
	matchCmd.Flags().StringVar(&matchOutDir, "out", ".", "output directory")
	matchCmd.Flags().StringVar(&runAliases, "aliases", "", "YAML file overriding the POP header alias table")
	_ = matchCmd.MarkFlagRequired("pop")
	rootCmd.AddCommand(matchCmd)
}
