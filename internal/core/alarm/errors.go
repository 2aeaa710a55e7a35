package alarm

import "fmt"

// ErrorKind tags a user-visible controller error.
type ErrorKind string

const (
	ErrorIncorrectAlarmTime   ErrorKind = "incorrect_alarm_time"
	ErrorCannotStartRecording ErrorKind = "cannot_start_recording"
	ErrorSettingsChanged      ErrorKind = "settings_changed"
	ErrorAlarmFired           ErrorKind = "alarm_fired"
	ErrorUnknown              ErrorKind = "unknown"
)

const (
	messageIncorrectAlarmTime = "Alarm time was set before sleep time expired.\nIt was automatically adjusted according to new sleep time settings"
	messageSettingsChanged    = "Settings were changed during playback or recording.\nAll activity was stopped"
	messageAlarmFired         = "Time went off!"
)

// Error is a transient error surfaced once to the presentation layer.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func incorrectAlarmTimeError() *Error {
	return newError(ErrorIncorrectAlarmTime, messageIncorrectAlarmTime, nil)
}

func settingsChangedError() *Error {
	return newError(ErrorSettingsChanged, messageSettingsChanged, nil)
}

func alarmFiredError() *Error {
	return newError(ErrorAlarmFired, messageAlarmFired, nil)
}

func cannotStartRecordingError(cause error) *Error {
	return newError(ErrorCannotStartRecording, "Cannot start playback or recording", cause)
}

func unknownError(cause error) *Error {
	return newError(ErrorUnknown, "Sound error", cause)
}
