package cli

import (
	"fmt"
	"os"

	"alarmsound/internal/logging"
	"alarmsound/internal/storage"
	"alarmsound/internal/ui/preferences"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const (
	appName  = "alarmsound"
	appID    = "com.alarmsound.app"
	appTitle = "Alarm Sound"
)

var (
	logPath       string
	logLevel      string
	soundsDir     string
	recordingsDir string

	settings preferences.Settings
	sink     *logging.Sink
	logger   = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Play a sleep sound, record the night and wake up to an alarm",
	Long: `Alarm Sound plays an ambient sound while you fall asleep, records through
the microphone until the alarm time and then rings the alarm.

Without a subcommand the desktop window is started.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeApp()
	},
	RunE:         runGUI,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logPath, "log-path", "", "log directory (default: $"+logging.EnvLogPath+" or the OS cache dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&soundsDir, "sounds-dir", "", "directory with FLAC files overriding built-in sounds")
	rootCmd.PersistentFlags().StringVar(&recordingsDir, "recordings-dir", "", "directory recordings are written to")
}

func initApp(cmd *cobra.Command) error {
	closeApp()
	loaded, err := storage.LoadSettings(appName)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "settings: %v (using defaults)\n", err)
	}
	settings = applyFlags(loaded)

	sink, err = logging.Open(appName, logging.Options{Dir: logPath, Level: settings.LogLevel})
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	logger = sink.Logger
	logger.Info().Str("command", cmd.Name()).Str("log", sink.Path).Msg("starting")
	return nil
}

func applyFlags(loaded preferences.Settings) preferences.Settings {
	if logLevel != "" {
		loaded.LogLevel = logLevel
	}
	if soundsDir != "" {
		loaded.SoundsDir = soundsDir
	}
	if recordingsDir != "" {
		loaded.RecordingsDir = recordingsDir
	}
	return loaded
}

func closeApp() {
	if sink != nil {
		_ = sink.Close()
		sink = nil
	}
	logger = zerolog.Nop()
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		closeApp()
		os.Exit(1)
	}
}
