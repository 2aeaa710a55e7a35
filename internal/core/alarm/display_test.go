package alarm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandName(t *testing.T) {
	cases := map[State]string{
		StateIdle:      "Play",
		StatePaused:    "Play",
		StateAlarm:     "Play",
		StatePlaying:   "Pause",
		StateRecording: "Pause",
	}
	for state, want := range cases {
		assert.Equal(t, want, CommandName(state), state)
	}
}

func TestStateLabelForPausedPhase(t *testing.T) {
	assert.Equal(t, "Paused (playing)", StateLabel(Snapshot{State: StatePaused, PausedFrom: StatePlaying}))
	assert.Equal(t, "Paused (recording)", StateLabel(Snapshot{State: StatePaused, PausedFrom: StateRecording}))
	assert.Equal(t, "Recording", StateLabel(Snapshot{State: StateRecording}))
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "00:00", FormatRemaining(-time.Second))
	assert.Equal(t, "04:59", FormatRemaining(4*time.Minute+59*time.Second))
	assert.Equal(t, "1:02:03", FormatRemaining(time.Hour+2*time.Minute+3*time.Second))
}

func TestFormatAlarmTime(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, "23:30", FormatAlarmTime(now.Add(90*time.Minute), now))
	assert.Equal(t, "07:00 tomorrow", FormatAlarmTime(time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC), now))
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, 10, 19, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 19, 23, 15, 0, 0, time.UTC), NextOccurrence(now, 23, 15))
	assert.Equal(t, time.Date(2026, 10, 20, 7, 0, 0, 0, time.UTC), NextOccurrence(now, 7, 0))
	assert.Equal(t, time.Date(2026, 10, 20, 22, 0, 0, 0, time.UTC), NextOccurrence(now, 22, 0))
}

func TestParseClock(t *testing.T) {
	hour, minute, err := ParseClock(" 06:30 ")
	require.NoError(t, err)
	assert.Equal(t, 6, hour)
	assert.Equal(t, 30, minute)

	hour, minute, err = ParseClock("0:05")
	require.NoError(t, err)
	assert.Equal(t, 0, hour)
	assert.Equal(t, 5, minute)

	for _, value := range []string{"", "6", "24:00", "12:60", "12:5", "ab:cd", "-1:10"} {
		_, _, err := ParseClock(value)
		assert.ErrorIs(t, err, ErrClockFormat, value)
	}
}
