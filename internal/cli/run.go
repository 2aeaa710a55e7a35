package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alarmsound/internal/core/alarm"
	"alarmsound/internal/core/model"
	"alarmsound/internal/tui"

	"github.com/spf13/cobra"
)

var (
	runSleep   int
	runAlarm   string
	runNoStart bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run in the terminal",
	Long: `Run the sleep sound and alarm in the terminal.

Keyboard shortcuts:
  Space        Play/Pause
  s            Stop and reset
  +/-          Sleep time up/down
  a            Set alarm time
  Enter        Dismiss message
  q, Ctrl+C    Quit`,
	Example: `  alarmsound run --sleep 20 --alarm 06:45`,
	RunE:    runTUI,
}

func init() {
	runCmd.Flags().IntVarP(&runSleep, "sleep", "s", 0, fmt.Sprintf("sleep time in minutes (%d-%d)", model.MinSleepMinutes, model.MaxSleepMinutes))
	runCmd.Flags().StringVarP(&runAlarm, "alarm", "a", "", "alarm time as HH:MM (default: one hour from now)")
	runCmd.Flags().BoolVar(&runNoStart, "no-start", false, "do not start playing right away")
	rootCmd.AddCommand(runCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	if runSleep != 0 && (runSleep < model.MinSleepMinutes || runSleep > model.MaxSleepMinutes) {
		return fmt.Errorf("sleep time must be between %d and %d minutes", model.MinSleepMinutes, model.MaxSleepMinutes)
	}
	alarmTime, err := parseAlarmFlag(runAlarm, time.Now())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return tui.Run(ctx, tui.Config{
		AppName:      appName,
		Settings:     settings,
		SleepMinutes: runSleep,
		AlarmTime:    alarmTime,
		AutoStart:    !runNoStart,
		Logger:       logger,
	})
}

// parseAlarmFlag turns HH:MM into the next matching time; empty yields zero.
func parseAlarmFlag(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	hour, minute, err := alarm.ParseClock(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --alarm %q: %w", value, err)
	}
	return alarm.NextOccurrence(now, hour, minute), nil
}
