// Command seed imports a YAML dataset of employees, projects, tasks and
// ratings into the configured store.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/dataset"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/adapters/repository"
	"github.com/vishalyl/GlassBoxAI-sub000/internal/config"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type seedOptions struct {
	datasetPath string
	driver      string
	dsn         string
	sqlLogging  bool
}

func newRootCommand() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a dataset into the GlassBox store",
		Long: `Import employees, projects, tasks, manager and peer ratings and KPI
records from a YAML dataset.

Input tables are replaced as a whole; audit records are left untouched.
Driver and DSN default to the service configuration (GLASSBOX_CONFIG file and
GLASSBOX_ environment variables).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to the YAML dataset (required)")
	cmd.Flags().StringVar(&opts.driver, "driver", "", "Database driver: sqlite or postgres (overrides config)")
	cmd.Flags().StringVar(&opts.dsn, "dsn", "", "Database DSN (overrides config)")
	cmd.Flags().BoolVar(&opts.sqlLogging, "sql-log", false, "Log SQL statements")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *seedOptions) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if opts.driver != "" {
		cfg.DatabaseDriver = opts.driver
	}
	if opts.dsn != "" {
		cfg.DatabaseDSN = opts.dsn
	}
	if cfg.DatabaseDriver == config.DriverMemory {
		return fmt.Errorf("%w: the memory driver cannot be seeded; set dataset_path on the service instead", repository.ErrUnsupportedDriver)
	}

	ds, err := dataset.LoadFile(opts.datasetPath)
	if err != nil {
		return err
	}

	store, err := repository.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN,
		repository.WithLogger(logger.Nop()),
		repository.WithSQLLogging(opts.sqlLogging),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Import(ctx, ds); err != nil {
		return fmt.Errorf("import dataset: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(),
		"Imported %d employees, %d projects, %d tasks, %d manager ratings, %d peer ratings, %d KPI records into %s\n",
		len(ds.Employees), len(ds.Projects), len(ds.Tasks),
		len(ds.ManagerRatings), len(ds.PeerRatings), len(ds.KPIs), cfg.DatabaseDriver,
	)
	return nil
}
