package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/pdfindex"
	"github.com/auditops/popaudit/internal/report"
)

var (
	reportVerdicts string
	reportIndexCSV string
	reportOutDir   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Rebuild the spreadsheet report from an existing verdict file",
	RunE: func(cmd *cobra.Command, args []string) error {
		verdicts, err := report.ReadVerdictsJSONL(reportVerdicts)
		if err != nil {
			return err
		}

		var invoices []model.InvoiceRecord
		if reportIndexCSV != "" {
			invoices, err = pdfindex.ReadIndexCSV(reportIndexCSV)
			if err != nil {
				return err
			}
		}

		summary := report.BuildSummary(verdicts, invoices, nil)
		if err := report.WriteJSON(filepath.Join(reportOutDir, artifactSummary), summary); err != nil {
			return err
		}
		rows := report.TopMismatches(verdicts, cfg.Report.TopMismatches)
		if err := report.WriteMismatchCSV(filepath.Join(reportOutDir, artifactMismatches), rows); err != nil {
			return err
		}
		kpi := report.BuildKPI(summary)
		if err := report.WriteWorkbook(filepath.Join(reportOutDir, artifactWorkbook), verdicts, kpi); err != nil {
			return err
		}

		zap.L().Info("report rebuilt", zap.String("out_dir", reportOutDir))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportVerdicts, "verdicts", artifactVerdicts, "verdicts JSONL file")
	reportCmd.Flags().StringVar(&reportIndexCSV, "index", "", "invoice index CSV for PDF counts")
	reportCmd.Flags().StringVar(&reportOutDir, "out", ".", "output directory")
	rootCmd.AddCommand(reportCmd)
}
