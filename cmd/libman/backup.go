package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/backup"
	"github.com/chaiji/libman/internal/catalog"
	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the catalog database",
	Long: `Backup copies the catalog database to a timestamped sibling file.
The copy is written to a temporary file first and renamed into place, so a
crash mid-backup never leaves a half-written snapshot behind.`,
	RunE: runBackup,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List existing catalog snapshots",
	RunE:  runBackupList,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupListCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	lock, err := catalog.AcquireRunLock(p.CatalogDir)
	if err != nil {
		return err
	}
	defer lock.Unlock()

	events := openEventLogger(p)
	defer events.Close()

	// Checkpoint so the snapshot contains everything in the WAL.
	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	if _, err := db.DB().Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		util.WarnLog("WAL checkpoint failed: %v", err)
	}
	db.Close()

	dest, err := backup.Snapshot(p.StorePath())
	events.LogBackup(dest, err)
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	util.SuccessLog("Backup written to %s", dest)
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	snapshots, err := backup.List(p.CatalogDir, store.DefaultFilename)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(snapshots) == 0 {
		util.InfoLog("No backups found in %s", p.CatalogDir)
		return nil
	}
	for _, s := range snapshots {
		fmt.Println(s)
	}
	return nil
}
