package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"alarmsound/internal/core/alarm"
	"alarmsound/internal/storage"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var recordingsJSON bool

var recordingsCmd = &cobra.Command{
	Use:   "recordings",
	Short: "List saved night recordings",
	RunE:  runRecordings,
}

func init() {
	recordingsCmd.Flags().BoolVarP(&recordingsJSON, "json", "j", false, "output as JSON")
	rootCmd.AddCommand(recordingsCmd)
}

type recordingEntry struct {
	Path     string    `json:"path"`
	Exists   bool      `json:"exists"`
	Size     int64     `json:"size,omitempty"`
	Modified time.Time `json:"modified,omitzero"`
}

func runRecordings(cmd *cobra.Command, args []string) error {
	store, err := storage.OpenListStore(appName, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	recordings, err := store.Load(alarm.DefaultRecordingsKey)
	if err != nil {
		return fmt.Errorf("failed to read recordings: %w", err)
	}

	entries := make([]recordingEntry, 0, len(recordings))
	for _, recording := range recordings {
		entries = append(entries, statRecording(recording))
	}

	out := cmd.OutOrStdout()
	if recordingsJSON {
		encoded, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	}
	printRecordings(out, entries)
	return nil
}

func statRecording(path string) recordingEntry {
	entry := recordingEntry{Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return entry
	}
	entry.Exists = true
	entry.Size = info.Size()
	entry.Modified = info.ModTime()
	return entry
}

func printRecordings(out io.Writer, entries []recordingEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No recordings yet.")
		return
	}
	for _, entry := range entries {
		if !entry.Exists {
			fmt.Fprintf(out, "%s (missing)\n", entry.Path)
			continue
		}
		fmt.Fprintf(out, "%s  %s  %s\n", entry.Path, humanize.Bytes(uint64(entry.Size)), humanize.Time(entry.Modified))
	}
}
