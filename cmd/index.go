package main

import (
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/ocr"
	"github.com/auditops/popaudit/internal/pdfindex"
)

var (
	indexPDFRoot string
	indexOutDir  string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a PDF batch into All_invoices.csv",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		extractor, err := ocr.NewExtractor(cfg.OCR)
		if err != nil {
			return err
		}
		ix := pdfindex.New(cfg.Index, extractor).WithCache(st)
		records, err := ix.Index(ctx, indexPDFRoot)
		if err != nil {
			return err
		}

		out := filepath.Join(indexOutDir, artifactIndexCSV)
		if err := pdfindex.WriteIndexCSV(out, records); err != nil {
			return err
		}
		zap.L().Info("index written", zap.String("path", out), zap.Int("records", len(records)))
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexPDFRoot, "pdf-root", "", "directory or ZIP archive of invoice PDFs (required)")
	indexCmd.Flags().StringVar(&indexOutDir, "out", ".", "output directory")
	_ = indexCmd.MarkFlagRequired("pdf-root")
	rootCmd.AddCommand(indexCmd)
}
