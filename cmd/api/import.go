package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"agendaapi/internal/importer"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "imports legacy agenda rows from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()

		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open rows: %w", err)
		}
		defer f.Close()

		b, err := openBackends(ctx, globalCfg, logger)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, b.Close()) }()

		res, err := importer.New(b.agenda, logger).Run(ctx, f)
		logger.Info("import_finished",
			zap.String("file", importFile),
			zap.Int("imported", res.Imported),
			zap.Int("failed", res.Failed),
		)
		return err
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to a JSON array of legacy rows")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
