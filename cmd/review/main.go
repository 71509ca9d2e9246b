// Command review flags audit entries on a running GlassBox server. It keeps a
// local view of the audit record and reconciles it with the server when a
// flag is rejected.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vishalyl/GlassBoxAI-sub000/internal/review"
	"github.com/vishalyl/GlassBoxAI-sub000/pkg/logger"
)

func main() {
	log := logger.Nop()
	if err := logger.Init(); err == nil {
		log = logger.Get().Named("review")
		defer func() { _ = logger.Sync() }()
	}
	if err := newRootCommand(log).ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

type reviewOptions struct {
	baseURL  string
	recordID string
	timeout  time.Duration
}

func newRootCommand(log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "review",
		Short:        "Review GlassBox audit records",
		SilenceUsage: true,
	}
	cmd.AddCommand(newFlagCommand(log))
	return cmd
}

func newFlagCommand(log logger.Logger) *cobra.Command {
	opts := &reviewOptions{}
	cmd := &cobra.Command{
		Use:   "flag ENTRY_ID...",
		Short: "Flag audit entries for review",
		Long: `Flag one or more entries of an audit record.

Flags are one-way: a flagged entry stays flagged. When the server rejects a
flag the record is fetched again, so the summary printed at the end always
matches the server.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlag(cmd, log, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.baseURL, "url", "http://localhost:9080", "Base URL of the GlassBox API")
	cmd.Flags().StringVar(&opts.recordID, "record", "", "Audit record id (required)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Overall timeout")
	_ = cmd.MarkFlagRequired("record")

	return cmd
}

func runFlag(cmd *cobra.Command, log logger.Logger, opts *reviewOptions, entryIDs []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	client, err := review.NewClient(opts.baseURL)
	if err != nil {
		return err
	}
	session, err := review.Open(ctx, client, opts.recordID, review.WithLogger(log))
	if err != nil {
		return fmt.Errorf("open record %s: %w", opts.recordID, err)
	}

	out := cmd.OutOrStdout()
	var errs []error
	for _, id := range entryIDs {
		entry, err := session.Flag(ctx, id)
		if err != nil {
			errs = append(errs, fmt.Errorf("flag %s: %w", id, err))
			_, _ = fmt.Fprintf(out, "%s\tFAILED\t%v\n", id, err)
			continue
		}
		_, _ = fmt.Fprintf(out, "%s\tflagged\t%s\n", entry.ID, entry.EmployeeName)
	}

	rec := session.Record()
	_, _ = fmt.Fprintf(out, "%s: %d of %d entries flagged\n", rec.Name, rec.FlaggedCount(), len(rec.Entries))
	return errors.Join(errs...)
}
