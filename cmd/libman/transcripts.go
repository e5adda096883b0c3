package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chaiji/libman/internal/store"
	"github.com/chaiji/libman/internal/transcripts"
	"github.com/chaiji/libman/internal/util"
)

var transcriptsCmd = &cobra.Command{
	Use:   "transcripts",
	Short: "Work with the transcript ledger",
	Long: `The transcript ledger records which video transcripts have already been
fetched, so re-downloads can be skipped even after the transcript file itself
was renamed or removed from the library.`,
	RunE: runTranscriptsList,
}

var transcriptsCheckCmd = &cobra.Command{
	Use:   "check <filename>",
	Short: "Check whether a transcript should be downloaded",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscriptsCheck,
}

var transcriptsAddCmd = &cobra.Command{
	Use:   "add <filename>",
	Short: "Record a fetched transcript in the ledger",
	Args:  cobra.ExactArgs(1),
	RunE:  runTranscriptsAdd,
}

func init() {
	rootCmd.AddCommand(transcriptsCmd)
	transcriptsCmd.AddCommand(transcriptsCheckCmd)
	transcriptsCmd.AddCommand(transcriptsAddCmd)

	transcriptsCheckCmd.Flags().String("url", "", "watch URL to derive the video identifier from")
	transcriptsAddCmd.Flags().String("url", "", "watch URL to derive the video identifier from")
}

// videoIDFromFlags derives the video identifier from --url when given,
// falling back to scanning the filename itself for an embedded identifier.
func videoIDFromFlags(cmd *cobra.Command, filename string) string {
	url, _ := cmd.Flags().GetString("url")
	if url != "" {
		if id := transcripts.ExtractVideoID(url); id != "" {
			return id
		}
		util.WarnLog("Could not derive a video identifier from %q", url)
	}
	return transcripts.ExtractVideoID(filename)
}

func runTranscriptsList(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	entries, err := db.Transcripts()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		util.InfoLog("Transcript ledger is empty")
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.VideoID,
			e.Filename,
			e.AddedAt.Format("2006-01-02 15:04:05"),
		})
	}
	fmt.Println(renderTable([]string{"Video ID", "Filename", "Added"}, rows))
	return nil
}

func runTranscriptsCheck(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	filename := args[0]
	download, err := transcripts.ShouldDownload(db, videoIDFromFlags(cmd, filename), filename)
	if err != nil {
		return err
	}

	if download {
		util.InfoLog("Not in ledger; download %s", filename)
	} else {
		util.InfoLog("Already recorded; skip %s", filename)
	}
	return nil
}

func runTranscriptsAdd(cmd *cobra.Command, args []string) error {
	p, err := loadProfile()
	if err != nil {
		return err
	}

	db, err := store.Open(p.StorePath())
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer db.Close()

	filename := args[0]
	videoID := videoIDFromFlags(cmd, filename)
	if videoID == "" {
		return fmt.Errorf("no video identifier in %q; pass one with --url", filename)
	}
	if err := transcripts.Record(db, videoID, filename); err != nil {
		return err
	}
	util.SuccessLog("Recorded %s in the transcript ledger", filename)
	return nil
}
