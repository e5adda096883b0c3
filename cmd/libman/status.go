package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show catalog totals and a per-extension breakdown",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	total, err := db.CountEntries()
	if err != nil {
		return err
	}
	missing, err := db.CountMissing()
	if err != nil {
		return err
	}
	stats, err := db.ExtensionBreakdown()
	if err != nil {
		return err
	}

	util.InfoLog("Profile: %s", p.Name)
	util.InfoLog("Catalog: %s", p.StorePath())
	util.InfoLog("Entries: %d (%d missing)", total, missing)

	if len(stats) == 0 {
		return nil
	}

	var totalBytes int64
	rows := make([][]string, 0, len(stats))
	for _, st := range stats {
		rows = append(rows, []string{
			st.Extension,
			strconv.Itoa(st.Count),
			util.FormatBytes(st.TotalBytes),
		})
		totalBytes += st.TotalBytes
	}
	rows = append(rows, []string{"total", strconv.Itoa(total - missing), util.FormatBytes(totalBytes)})

	fmt.Println(renderTable([]string{"Extension", "Files", "Size"}, rows, 1, 2))
	return nil
}
