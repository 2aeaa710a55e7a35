package model

import "time"

// Sleep time bounds, in minutes.
const (
	MinSleepMinutes     = 1
	MaxSleepMinutes     = 60
	DefaultSleepMinutes = MinSleepMinutes
)

// TimeRange is a named span used for alarm defaults and bounds.
type TimeRange time.Duration

const (
	RangeMinute TimeRange = TimeRange(time.Minute)
	RangeHour   TimeRange = TimeRange(time.Hour)
	RangeDay    TimeRange = TimeRange(24 * time.Hour)
	RangeWeek   TimeRange = TimeRange(7 * 24 * time.Hour)
)

// Duration returns the range as a time.Duration.
func (value TimeRange) Duration() time.Duration {
	return time.Duration(value)
}

// AlarmSettings contains the user-selected sleep and alarm times.
type AlarmSettings struct {
	// SleepTime is the number of minutes of ambient playback before recording starts.
	SleepTime int
	// AlarmTime is the wall-clock time at which recording stops and the alarm plays.
	AlarmTime time.Time
}

// DefaultAlarmSettings returns a one minute sleep time and an alarm one hour from now.
func DefaultAlarmSettings(now time.Time) AlarmSettings {
	return AlarmSettings{
		SleepTime: DefaultSleepMinutes,
		AlarmTime: DefaultAlarmTime(now),
	}
}

// DefaultAlarmTime is the fallback alarm time used on reset and auto-correction.
func DefaultAlarmTime(now time.Time) time.Time {
	return now.Add(RangeHour.Duration())
}

// SleepDuration converts the sleep time to a duration.
func (settings AlarmSettings) SleepDuration() time.Duration {
	return time.Duration(settings.SleepTime) * RangeMinute.Duration()
}

// ClampSleepMinutes keeps a sleep time inside the selectable range.
func ClampSleepMinutes(minutes int) int {
	if minutes < MinSleepMinutes {
		return MinSleepMinutes
	}
	if minutes > MaxSleepMinutes {
		return MaxSleepMinutes
	}
	return minutes
}

// SleepMinuteOptions lists every selectable sleep time.
func SleepMinuteOptions() []int {
	options := make([]int, 0, MaxSleepMinutes-MinSleepMinutes+1)
	for minute := MinSleepMinutes; minute <= MaxSleepMinutes; minute++ {
		options = append(options, minute)
	}
	return options
}
