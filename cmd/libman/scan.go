package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/catalog"
	"github.com/chaiji/libman/internal/extract"
	"github.com/chaiji/libman/internal/mirror"
	"github.com/chaiji/libman/internal/report"
	"github.com/chaiji/libman/internal/tokens"
	"github.com/chaiji/libman/internal/util"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the library root and reconcile the catalog",
	Long: `Scan walks the library root and reconciles what it finds against the
catalog: new files are hashed and added, files whose modification time or
size changed are re-hashed, unchanged files are left alone, and files that
disappeared are flagged as missing.

An interrupted scan is safe to re-run; everything committed before the
interruption is preserved and the next run picks up the rest.`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().Bool("rebuild", false, "discard the catalog and rebuild from scratch")
	scanCmd.Flags().Bool("convert", false, "derive text artifacts for sources that lack a fresh one")
	scanCmd.Flags().Bool("tokenize", false, "count tokens for entries with a fresh text artifact")
	scanCmd.Flags().Bool("mirror", false, "export the flat CSV mirror after the run")
}

func runScan(cmd *cobra.Command, args []string) error {
	rebuild, _ := cmd.Flags().GetBool("rebuild")
	convert, _ := cmd.Flags().GetBool("convert")
	tokenize, _ := cmd.Flags().GetBool("tokenize")
	exportMirror, _ := cmd.Flags().GetBool("mirror")

	p, err := loadProfile()
	if err != nil {
		return err
	}

	// One logical run at a time per catalog
	lock, err := catalog.AcquireRunLock(p.CatalogDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	logger := openEventLogger(p)
	defer logger.Close()

	db, err := openStoreWithFallback(p, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := &catalog.Config{
		Store:     db,
		Profile:   p,
		Logger:    logger,
		Extractor: extract.New(),
	}
	if tokenize {
		cfg.Tokens = tokens.NewCounter()
	}

	// Interrupt cancels between files; committed batches stay committed
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	util.InfoLog("Profile: %s", p.Name)
	util.InfoLog("Root: %s", p.Root)
	util.InfoLog("Catalog: %s", p.StorePath())

	started := time.Now()
	rep, runErr := catalog.New(cfg).Run(ctx, catalog.Options{
		Rebuild:  rebuild,
		Convert:  convert,
		Tokenize: tokenize,
	})

	printRunReport(rep)

	if runErr != nil {
		return fmt.Errorf("scan %s: %w", rep.Outcome, runErr)
	}

	if exportMirror {
		rows, err := mirror.Export(db, p.MirrorPath())
		if err != nil {
			return fmt.Errorf("mirror export failed: %w", err)
		}
		util.SuccessLog("Mirror exported: %s (%d rows)", p.MirrorPath(), rows)
	}

	util.InfoLog("Total time: %v", time.Since(started).Round(time.Millisecond))
	return nil
}

func printRunReport(rep *report.RunReport) {
	util.InfoLog("")
	util.InfoLog("=== Run Summary (%s) ===", rep.Mode)
	util.InfoLog("  Outcome: %s", rep.Outcome)
	util.InfoLog("  Created: %d", rep.Created)
	util.InfoLog("  Updated: %d", rep.Updated)
	util.InfoLog("  Unchanged: %d", rep.Unchanged)
	util.InfoLog("  Hashed: %d", rep.Hashed)
	if rep.Tokenized > 0 {
		util.InfoLog("  Tokenized: %d", rep.Tokenized)
	}
	if rep.Missing > 0 {
		util.WarnLog("  Missing: %d", rep.Missing)
	}
	if rep.Warnings > 0 {
		util.WarnLog("  Warnings: %d", rep.Warnings)
	}
	if rep.Errors > 0 {
		util.WarnLog("  Errors: %d", rep.Errors)
	}
}
