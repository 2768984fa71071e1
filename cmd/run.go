package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/matcher"
	"github.com/auditops/popaudit/internal/model"
	"github.com/auditops/popaudit/internal/ocr"
	"github.com/auditops/popaudit/internal/pdfindex"
	"github.com/auditops/popaudit/internal/population"
	"github.com/auditops/popaudit/internal/renamer"
	"github.com/auditops/popaudit/internal/report"
	"github.com/auditops/popaudit/internal/store"
)

// Fixed artifact names inside a run directory.
const (
	artifactIndexCSV    = "All_invoices.csv"
	artifactVerdicts    = "verdicts.jsonl"
	artifactSummary     = "verdicts_summary.json"
	artifactMismatches  = "verdicts_top50_mismatches.csv"
	artifactWorkbook    = "Audyt_koncowy.xlsx"
	artifactEnrichedPOP = "populacja_enriched.xlsx"
	artifactMetadata    = "run_metadata.json"
)

var (
	runPDFRoot   string
	runPOPFile   string
	runOutDir    string
	runOverrides string
	runAliases   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full audit pipeline",
	Long:  "Indexes the PDF batch, loads and validates the POP workbook, matches positions to PDFs and writes every report artifact into the run directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		outDir := runOutDir
		if outDir == "" {
			outDir = filepath.Join("runs", time.Now().Format("20060102_1504"))
		}
		params := model.RunParams{
			PDFRoot:             runPDFRoot,
			POPFile:             runPOPFile,
			OutDir:              outDir,
			AmountTol:           cfg.Match.AmountTol,
			TieBreakWeightFname: cfg.Match.TieBreakWeightFname,
			TieBreakMinSeller:   cfg.Match.TieBreakMinSeller,
			Overrides:           runOverrides,
		}

		run, err := st.CreateRun(ctx, outDir, params)
		if err != nil {
			return eris.Wrap(err, "register run")
		}

		kpi, err := executePipeline(ctx, st, params)
		if err != nil {
			if ferr := st.FailRun(ctx, run.ID, err); ferr != nil {
				zap.L().Warn("could not mark run failed", zap.Error(ferr))
			}
			return err
		}
		if err := st.CompleteRun(ctx, run.ID, kpi); err != nil {
			return eris.Wrap(err, "complete run")
		}

		zap.L().Info("audit run complete",
			zap.String("run_id", run.ID),
			zap.String("out_dir", outDir),
		)
		return nil
	},
}

// executePipeline runs index, match and report into params.OutDir and
// returns the headline KPI block. Matching parameters are validated before
// any artifact is written.
func executePipeline(ctx context.Context, st store.Store, params model.RunParams) (model.KPI, error) {
	var kpi model.KPI
	if err := cfg.Match.Validate(); err != nil {
		return kpi, err
	}
	mcfg, err := matcherConfig(params)
	if err != nil {
		return kpi, err
	}
	// Fail on missing inputs before the first artifact exists, so a broken
	// invocation cannot leave a partial run directory behind.
	if _, err := os.Stat(params.PDFRoot); err != nil {
		return kpi, eris.Wrapf(err, "pdf root %s", params.PDFRoot)
	}

	// population first: a workbook that does not parse must abort the run
	// while the run directory is still empty
	aliases, err := loadAliases()
	if err != nil {
		return kpi, err
	}
	ledger, err := population.Load(params.POPFile, aliases)
	if err != nil {
		return kpi, err
	}

	// index
	extractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return kpi, err
	}
	ix := pdfindex.New(cfg.Index, extractor).WithCache(st)
	invoices, err := ix.Index(ctx, params.PDFRoot)
	if err != nil {
		return kpi, err
	}
	if err := pdfindex.WriteIndexCSV(filepath.Join(params.OutDir, artifactIndexCSV), invoices); err != nil {
		return kpi, err
	}

	// match
	verdicts := matcher.Match(mcfg, ledger.Records, invoices)

	// overrides + attachments
	if params.Overrides != "" {
		overrides, err := renamer.LoadOverrides(params.Overrides)
		if err != nil {
			return kpi, err
		}
		verdicts, err = renamer.ApplyOverrides(mcfg, verdicts, ledger.Records, invoices, overrides)
		if err != nil {
			return kpi, err
		}
		verdicts, err = renamer.Attach(renamer.OSFS{}, params.OutDir, verdicts)
		if err != nil {
			return kpi, err
		}
	}

	// report artifacts
	if err := report.WriteVerdictsJSONL(filepath.Join(params.OutDir, artifactVerdicts), verdicts); err != nil {
		return kpi, err
	}
	summary := report.BuildSummary(verdicts, invoices, ledger.Issues)
	if err := report.WriteJSON(filepath.Join(params.OutDir, artifactSummary), summary); err != nil {
		return kpi, err
	}
	rows := report.TopMismatches(verdicts, cfg.Report.TopMismatches)
	if err := report.WriteMismatchCSV(filepath.Join(params.OutDir, artifactMismatches), rows); err != nil {
		return kpi, err
	}
	kpi = report.BuildKPI(summary)
	if err := report.WriteWorkbook(filepath.Join(params.OutDir, artifactWorkbook), verdicts, kpi); err != nil {
		return kpi, err
	}
	if err := renamer.WriteEnriched(filepath.Join(params.OutDir, artifactEnrichedPOP), ledger.Records, verdicts); err != nil {
		return kpi, err
	}
	md := report.BuildMetadata(ctx, params.OutDir, params, kpi)
	return kpi, report.WriteJSON(filepath.Join(params.OutDir, artifactMetadata), md)
}

func matcherConfig(params model.RunParams) (matcher.Config, error) {
	tol, err := decimal.NewFromString(params.AmountTol)
	if err != nil {
		return matcher.Config{}, eris.Wrapf(err, "parse amount_tol %q", params.AmountTol)
	}
	return matcher.Config{
		AmountTol:   tol,
		WeightFname: params.TieBreakWeightFname,
		MinSeller:   params.TieBreakMinSeller,
	}, nil
}

func loadAliases() (population.AliasTable, error) {
	if runAliases == "" {
		return population.DefaultAliases(), nil
	}
	return population.LoadAliases(runAliases)
}

func init() {
	runCmd.Flags().StringVar(&runPDFRoot, "pdf-root", "", "directory or ZIP archive of invoice PDFs (required)")
	runCmd.Flags().StringVar(&runPOPFile, "pop", "", "POP population workbook (required)")
	runCmd.Flags().StringVar(&runOutDir, "out", "", "output directory (default runs/YYYYMMDD_HHMM)")
	runCmd.Flags().StringVar(&runOverrides, "overrides", "", "CSV with manual assignments (pozycja_id,sciezka_pdf)")
	runCmd.Flags().StringVar(&runAliases, "aliases", "", "YAML file overriding the POP header alias table")
	_ = runCmd.MarkFlagRequired("pdf-root")
	_ = runCmd.MarkFlagRequired("pop")
	rootCmd.AddCommand(runCmd)
}
