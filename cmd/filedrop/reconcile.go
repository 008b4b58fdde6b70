package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/skovric/filedrop/config"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Compare the object store against the metadata records",
	Long: `Compare the managed object store namespace against the metadata
records and report the differences.

Orphan objects are stored objects with no record, typically abandoned
uploads. Dangling records point at objects that no longer exist, for
example after a crash between object and metadata deletion. With
--prune, orphan objects are deleted; dangling records are only
reported.`,
	RunE: runReconcile,
}

var prune bool

func init() {
	reconcileCmd.Flags().BoolVar(&prune, "prune", false, "delete orphan objects")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	service, cleanup, err := buildService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := service.Reconcile(ctx, prune)
	if err != nil {
		return err
	}

	for _, key := range report.OrphanObjects {
		slog.Warn("orphan object", "key", key)
	}
	for _, key := range report.DanglingRecords {
		slog.Warn("dangling record", "key", key)
	}

	slog.Info("reconcile complete",
		"orphan_objects", len(report.OrphanObjects),
		"dangling_records", len(report.DanglingRecords),
		"pruned", report.Pruned,
	)

	return nil
}
