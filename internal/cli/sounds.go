package cli

import (
	"fmt"

	"alarmsound/internal/sound"
	"alarmsound/resources"

	"github.com/spf13/cobra"
)

var soundsCmd = &cobra.Command{
	Use:   "sounds",
	Short: "List available ambient and alarm sounds",
	RunE: func(cmd *cobra.Command, args []string) error {
		locator := resources.NewLocator(settings.SoundsDir, logger)
		for _, name := range locator.Names() {
			marker := ""
			switch name {
			case settings.AmbientSound:
				marker = " (ambient)"
			case settings.AlarmSound:
				marker = " (alarm)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export NAME FILE",
	Short: "Write a sound to a FLAC file",
	Long: `Write a sound to a FLAC file. Exported files placed in the sounds
directory can be edited and replace the built-in sound of the same name.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		locator := resources.NewLocator(settings.SoundsDir, logger)
		buffer, err := locator.Locate(args[0])
		if err != nil {
			return err
		}
		if err := sound.WriteFLAC(args[1], buffer); err != nil {
			return fmt.Errorf("failed to export %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s)\n", args[1], buffer.Duration().Round(1e7))
		return nil
	},
}

func init() {
	soundsCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(soundsCmd)
}
