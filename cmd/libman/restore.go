package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/catalog"
	"github.com/chaiji/libman/internal/mirror"
	"github.com/chaiji/libman/internal/util"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Rehydrate the catalog from the CSV mirror",
	Long: `Restore rebuilds catalog entries from a CSV mirror export. The mirror
carries less than the catalog does (no schema version, no transcript ledger),
so restoring from it is a recovery path, not a substitute for backups.

Hashes in the mirror are trusted as-is; run 'libman scan' afterwards to
reconcile the restored entries against the filesystem.`,
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)

	restoreCmd.Flags().String("from", "", "mirror CSV to restore from (default: <catalog_dir>/latest-catalog.csv)")
}

func runRestore(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	from, _ := cmd.Flags().GetString("from")
	if from == "" {
		from = p.MirrorPath()
	}

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

	rows, err := mirror.Rehydrate(db, from)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	util.SuccessLog("Restored %d entries from %s", rows, from)
	util.InfoLog("Run 'libman scan' to reconcile the restored catalog against the filesystem")
	return nil
}
