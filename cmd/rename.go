package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/pdfindex"
	"github.com/auditops/popaudit/internal/population"
	"github.com/auditops/popaudit/internal/renamer"
	"github.com/auditops/popaudit/internal/report"
)

var (
	renameVerdicts  string
	renameIndexCSV  string
	renamePOPFile   string
	renameOverrides string
	renameOutDir    string
)

var renameCmd = &cobra.Command{
	Use:   "rename",
	Short: "Apply manual overrides and write standardized attachments",
	Long:  "Re-resolves overridden positions, copies matched PDFs under standardized names and writes the updated verdicts plus the enriched population workbook.",
	RunE: func(cmd *cobra.Command, args []string) error {
		mcfg, err := matcherConfig(model.RunParams{
			AmountTol:           cfg.Match.AmountTol,
			TieBreakWeightFname: cfg.Match.TieBreakWeightFname,
			TieBreakMinSeller:   cfg.Match.TieBreakMinSeller,
		})
		if err != nil {
			return err
		}

		verdicts, err := report.ReadVerdictsJSONL(renameVerdicts)
		if err != nil {
			return err
		}
		invoices, err := pdfindex.ReadIndexCSV(renameIndexCSV)
		if err != nil {
			return err
		}
		aliases, err := loadAliases()
		if err != nil {
			return err
		}
		ledger, err := population.Load(renamePOPFile, aliases)
		if err != nil {
			return err
		}

		if renameOverrides != "" {
			overrides, err := renamer.LoadOverrides(renameOverrides)
			if err != nil {
				return err
			}
			verdicts, err = renamer.ApplyOverrides(mcfg, verdicts, ledger.Records, invoices, overrides)
			if err != nil {
				return err
			}
		}
		verdicts, err = renamer.Attach(renamer.OSFS{}, renameOutDir, verdicts)
		if err != nil {
			return err
		}

		if err := report.WriteVerdictsJSONL(filepath.Join(renameOutDir, artifactVerdicts), verdicts); err != nil {
			return err
		}
		if err := renamer.WriteEnriched(filepath.Join(renameOutDir, artifactEnrichedPOP), ledger.Records, verdicts); err != nil {
			return err
		}

		zap.L().Info("attachments written", zap.String("out_dir", renameOutDir))
		return nil
	},
}

func init() {
	renameCmd.Flags().StringVar(&renameVerdicts, "verdicts", artifactVerdicts, "verdicts JSONL file")
	renameCmd.Flags().StringVar(&renameIndexCSV, "index", artifactIndexCSV, "invoice index CSV")
	renameCmd.Flags().StringVar(&renamePOPFile, "pop", "", "POP population workbook (required)")
	renameCmd.Flags().StringVar(&renameOverrides, "overrides", "", "CSV with manual assignments (pozycja_id,sciezka_pdf)")
	renameCmd.Flags().StringVar(&renameOutDir, "out", ".", "output directory")
	renameCmd.Flags().StringVar(&runAliases, "aliases", "", "YAML file overriding the POP header alias table")
	_ = renameCmd.MarkFlagRequired("pop")
	rootCmd.AddCommand(renameCmd)
}
