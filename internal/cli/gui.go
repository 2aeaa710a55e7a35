package cli

import (
	"errors"
	"fmt"

	"alarmsound/internal/platform"
	"alarmsound/internal/storage"
	"alarmsound/internal/ui/gui"
	"alarmsound/internal/ui/preferences"

	"github.com/spf13/cobra"
)

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Start the desktop window and tray icon",
	RunE:  runGUI,
}

func init() {
	rootCmd.AddCommand(guiCmd)
}

func runGUI(cmd *cobra.Command, args []string) error {
	err := gui.Run(gui.Config{
		AppName:  appName,
		AppID:    appID,
		Title:    appTitle,
		Settings: settings,
		Logger:   logger,
		SaveSettings: func(updated preferences.Settings) error {
			return storage.SaveSettings(appName, updated)
		},
	})
	if errors.Is(err, platform.ErrAlreadyRunning) {
		fmt.Fprintln(cmd.OutOrStdout(), "Alarm Sound is already running.")
		return nil
	}
	return err
}
