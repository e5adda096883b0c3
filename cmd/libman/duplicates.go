package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/dupes"
	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/util"
)

var duplicatesCmd = &cobra.Command{
	Use:     "duplicates",
	Aliases: []string{"dupes"},
	Short:   "Report exact and fuzzy duplicate files across the catalog",
	Long: `Duplicates reports two kinds of groups over the whole catalog:

  exact  - entries whose content hashes are identical
  fuzzy  - entries whose normalized filenames are within the configured
           edit-distance threshold, linked transitively

Entries that have not been hashed yet are skipped by the exact pass until
the next scan hashes them. Output order is stable across runs.`,
	RunE: runDuplicates,
}

func init() {
	rootCmd.AddCommand(duplicatesCmd)

	duplicatesCmd.Flags().Int("max-distance", 0, "absolute edit-distance cutoff (0 uses the length-relative default)")
	duplicatesCmd.Flags().String("csv", "", "also write the groups to a CSV file")
}

func runDuplicates(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	maxDistance, _ := cmd.Flags().GetInt("max-distance")
	if maxDistance == 0 {
		maxDistance = p.FuzzyMaxDistance
	}
	csvPath, _ := cmd.Flags().GetString("csv")

	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	groups, err := dupes.New(db, dupes.Options{MaxDistance: maxDistance}).Find()
	if err != nil {
		return fmt.Errorf("duplicate detection failed: %w", err)
	}

	if len(groups) == 0 {
		util.SuccessLog("No duplicate groups found")
		return nil
	}

	rows := make([][]string, 0, len(groups))
	for i, g := range groups {
		hash := g.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		for _, m := range g.Members {
			rows = append(rows, []string{
				strconv.Itoa(i + 1),
				string(g.Kind),
				hash,
				m.String(),
			})
		}
	}
	fmt.Println(renderTable([]string{"Group", "Kind", "Hash", "File"}, rows, 1))
	util.InfoLog("%d duplicate groups", len(groups))

	if csvPath != "" {
		if err := writeGroupsCSV(csvPath, groups); err != nil {
			return fmt.Errorf("failed to write duplicates CSV: %w", err)
		}
		util.SuccessLog("Duplicate groups written to %s", csvPath)
	}

	return nil
}

func writeGroupsCSV(path string, groups []dupes.Group) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"group", "kind", "hash", "file"}); err != nil {
		return err
	}
	for i, g := range groups {
		for _, m := range g.Members {
			if err := w.Write([]string{strconv.Itoa(i + 1), string(g.Kind), g.Hash, m.String()}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
