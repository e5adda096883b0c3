package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/mirror"
	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the flat CSV mirror of the catalog",
	Long: `Export writes the catalog as an ordered CSV snapshot. The mirror is a
read-only projection: regenerating it never changes the catalog, and rows
come out in primary-key order so identical catalogs produce identical files.`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("out", "", "output path (default: <catalog_dir>/latest-catalog.csv)")
}

func runExport(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = p.MirrorPath()
	}

	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	rows, err := mirror.Export(db, out)
	if err != nil {
		return fmt.Errorf("mirror export failed: %w", err)
	}

	util.SuccessLog("Exported %d rows to %s", rows, out)
	return nil
}
