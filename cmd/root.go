package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/auditops/popaudit/internal/config"
	"github.com/auditops/popaudit/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "popaudit",
	Short: "Invoice-to-ledger reconciliation for audit sign-off",
	Long:  "Indexes invoice PDFs, reconciles them against the POP ledger workbook and produces the verdict and report artifacts reviewers sign off on.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	if n, err := st.DeleteExpiredPDFText(ctx); err != nil {
		zap.L().Debug("text cache purge failed", zap.Error(err))
	} else if n > 0 {
		zap.L().Debug("purged expired text cache rows", zap.Int("rows", n))
	}
	return st, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
