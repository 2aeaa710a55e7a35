package alarm

import (
	"context"
	"sync"
	"time"

	"alarmsound/internal/core/countdown"
	"alarmsound/internal/core/model"
	"alarmsound/internal/sound"

	"github.com/rs/zerolog"
)

// Default resource names and list key.
const (
	DefaultAmbientSound  = "ambient"
	DefaultAlarmSound    = "alarm"
	DefaultRecordingsKey = "recordings"

	notificationTitle = "Alarm"
	minRecordDuration = time.Second
)

// SoundService plays and records audio and reports completions on Events.
type SoundService interface {
	Play(source *sound.Buffer, mode sound.LoopMode) error
	Pause()
	Resume()
	Stop()
	Record(location string, duration time.Duration) error
	PauseRecording()
	ResumeRecording()
	StopRecording()
	Events() <-chan sound.Event
}

// Notifier schedules local alerts.
type Notifier interface {
	Schedule(at time.Time, title, body string)
	CancelAll()
}

// ListStore appends references to a persisted list, best effort.
type ListStore interface {
	Append(key, reference string)
}

// ResourceLocator resolves sound names to playable buffers.
type ResourceLocator interface {
	Locate(name string) (*sound.Buffer, error)
}

// Dependencies are the services the controller drives.
type Dependencies struct {
	Sound    SoundService
	Notifier Notifier
	Store    ListStore
	Locator  ResourceLocator
}

// Options contains runtime options for Controller.
type Options struct {
	AmbientSound  string
	AlarmSound    string
	RecordingsDir string
	RecordingsKey string
	MaxRange      model.TimeRange
	Countdown     countdown.Options
	// AlarmFallback is called when the alarm sound cannot be played.
	AlarmFallback func()
	Now           func() time.Time
	Logger        zerolog.Logger
}

// Controller owns the application state and orchestrates the sound,
// notification and storage services.
type Controller struct {
	mu         sync.Mutex
	deps       Dependencies
	options    Options
	state      State
	pausedFrom State
	settings   model.AlarmSettings
	countdown  *countdown.Countdown
	recording  string
	err        *Error
	events     []chan Event
	logger     zerolog.Logger
}

// New creates an idle controller with default settings.
func New(deps Dependencies, options Options) *Controller {
	if options.AmbientSound == "" {
		options.AmbientSound = DefaultAmbientSound
	}
	if options.AlarmSound == "" {
		options.AlarmSound = DefaultAlarmSound
	}
	if options.RecordingsKey == "" {
		options.RecordingsKey = DefaultRecordingsKey
	}
	if options.MaxRange <= 0 {
		options.MaxRange = model.RangeDay
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &Controller{
		deps:     deps,
		options:  options,
		state:    StateIdle,
		settings: model.DefaultAlarmSettings(options.Now()),
		logger:   options.Logger.With().Str("component", "alarm").Logger(),
	}
}

// Subscribe registers a new observer channel.
func (controller *Controller) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	controller.mu.Lock()
	controller.events = append(controller.events, ch)
	controller.mu.Unlock()
	return ch
}

// Close stops all activity and closes observers.
func (controller *Controller) Close() {
	controller.mu.Lock()
	controller.stopActivityLocked()
	events := controller.events
	controller.events = nil
	controller.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Snapshot returns the current observable state.
func (controller *Controller) Snapshot() Snapshot {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.snapshotLocked()
}

// AlarmTimeRange returns the selectable alarm window for the current sleep time.
func (controller *Controller) AlarmTimeRange() (time.Time, time.Time) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	now := controller.options.Now()
	return now.Add(controller.settings.SleepDuration()), now.Add(controller.options.MaxRange.Duration())
}

// SetSounds changes the ambient and alarm sound names used from the next start.
func (controller *Controller) SetSounds(ambient, alarmSound string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if ambient != "" {
		controller.options.AmbientSound = ambient
	}
	if alarmSound != "" {
		controller.options.AlarmSound = alarmSound
	}
}

// SetRecordingsDir changes where the next recording is written.
func (controller *Controller) SetRecordingsDir(dir string) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.options.RecordingsDir = dir
}

// SetSleepTime updates the sleep time in minutes, clamped to the picker range.
func (controller *Controller) SetSleepTime(minutes int) {
	minutes = model.ClampSleepMinutes(minutes)

	controller.mu.Lock()
	defer controller.mu.Unlock()
	changed := minutes != controller.settings.SleepTime
	controller.settings.SleepTime = minutes

	if controller.activeLocked() {
		if changed {
			controller.interruptLocked()
		}
		return
	}
	controller.synchronizeAlarmTimeLocked()
	controller.emitLocked(EventSettingsChange)
}

// SetAlarmTime updates the alarm time. Times before the sleep time expires
// are replaced by the default; times past the maximum range are clamped.
func (controller *Controller) SetAlarmTime(alarmTime time.Time) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	changed := !alarmTime.Equal(controller.settings.AlarmTime)
	controller.settings.AlarmTime = alarmTime

	if controller.activeLocked() {
		if changed {
			controller.interruptLocked()
		}
		return
	}
	if latest := controller.options.Now().Add(controller.options.MaxRange.Duration()); alarmTime.After(latest) {
		controller.settings.AlarmTime = latest
	}
	controller.synchronizeAlarmTimeLocked()
	controller.emitLocked(EventSettingsChange)
}

// Command performs the single-button action for the current state.
func (controller *Controller) Command() {
	switch controller.Snapshot().State {
	case StateIdle:
		controller.Start()
	case StatePaused:
		controller.Resume()
	case StatePlaying, StateRecording:
		controller.Pause()
	case StateAlarm:
		controller.mu.Lock()
		controller.raiseLocked(alarmFiredError())
		controller.mu.Unlock()
	}
}

// Start begins ambient playback and the sleep countdown.
func (controller *Controller) Start() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.state != StateIdle {
		controller.logger.Debug().Str("state", string(controller.state)).Msg("start ignored")
		return
	}
	corrected := controller.synchronizeAlarmTimeLocked()

	source, err := controller.deps.Locator.Locate(controller.options.AmbientSound)
	if err != nil {
		controller.logger.Error().Err(err).Str("sound", controller.options.AmbientSound).Msg("locate ambient sound")
		controller.raiseLocked(cannotStartRecordingError(err))
		return
	}
	if err := controller.deps.Sound.Play(source, sound.LoopInfinite); err != nil {
		controller.logger.Error().Err(err).Msg("start ambient playback")
		controller.raiseLocked(cannotStartRecordingError(err))
		return
	}

	options := controller.options.Countdown
	options.OnTick = controller.onCountdownTick
	var timer *countdown.Countdown
	timer = countdown.New(controller.settings.SleepDuration(), options, func() {
		controller.onCountdownElapsed(timer)
	})
	controller.countdown = timer
	if !corrected {
		controller.err = nil
	}
	controller.setStateLocked(StatePlaying)
	timer.Resume()

	controller.logger.Info().
		Int("sleep_minutes", controller.settings.SleepTime).
		Time("alarm_time", controller.settings.AlarmTime).
		Msg("playback started")
}

// Pause pauses playback or recording.
func (controller *Controller) Pause() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	switch controller.state {
	case StatePlaying:
		controller.countdown.Pause()
		controller.deps.Sound.Pause()
	case StateRecording:
		controller.deps.Sound.PauseRecording()
	default:
		return
	}
	controller.pausedFrom = controller.state
	controller.setStateLocked(StatePaused)
}

// Resume continues the paused phase.
func (controller *Controller) Resume() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.state != StatePaused {
		return
	}
	resumed := controller.pausedFrom
	switch resumed {
	case StatePlaying:
		controller.countdown.Resume()
		controller.deps.Sound.Resume()
	case StateRecording:
		controller.deps.Sound.ResumeRecording()
	default:
		return
	}
	controller.pausedFrom = ""
	controller.setStateLocked(resumed)
}

// Abort stops all activity and resets settings to defaults.
func (controller *Controller) Abort() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.resetLocked()
}

// DismissError clears the current error. An alarm time warning only clears;
// every other error also performs a full stop and reset.
func (controller *Controller) DismissError() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	warning := controller.err != nil && controller.err.Kind == ErrorIncorrectAlarmTime
	controller.err = nil
	if warning {
		controller.emitLocked(EventSettingsChange)
		return
	}
	controller.resetLocked()
}

// EnterBackground schedules a notification for the alarm time while playing or recording.
func (controller *Controller) EnterBackground() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.state != StatePlaying && controller.state != StateRecording {
		return
	}
	if controller.deps.Notifier != nil {
		controller.deps.Notifier.Schedule(controller.settings.AlarmTime, notificationTitle, messageAlarmFired)
	}
}

// EnterForeground cancels pending notifications.
func (controller *Controller) EnterForeground() {
	if controller.deps.Notifier != nil {
		controller.deps.Notifier.CancelAll()
	}
}

// Run feeds sound service events into the controller until ctx is done.
func (controller *Controller) Run(ctx context.Context) {
	events := controller.deps.Sound.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			controller.HandleSoundEvent(event)
		}
	}
}

// HandleSoundEvent advances the state machine for a sound service event.
func (controller *Controller) HandleSoundEvent(event sound.Event) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	switch event.Type {
	case sound.EventRecordingFinished:
		controller.handleRecordingFinishedLocked(event)
	case sound.EventEncodeError, sound.EventDecodeError:
		controller.logger.Error().Err(event.Err).Str("event", string(event.Type)).Str("location", event.Location).Msg("sound error")
		controller.raiseLocked(unknownError(event.Err))
	case sound.EventPlaybackFinished:
		controller.logger.Debug().Str("source", event.Location).Msg("playback finished")
	}
}

// handleRecordingFinishedLocked treats any end of the current recording,
// including an interruption, as the alarm going off.
func (controller *Controller) handleRecordingFinishedLocked(event sound.Event) {
	if event.Location != "" && controller.deps.Store != nil {
		controller.deps.Store.Append(controller.options.RecordingsKey, event.Location)
	}

	recordingPhase := controller.state == StateRecording ||
		(controller.state == StatePaused && controller.pausedFrom == StateRecording)
	if !recordingPhase || event.Location != controller.recording {
		controller.logger.Debug().Str("location", event.Location).Msg("stale recording finished")
		return
	}
	if !event.Successful {
		controller.logger.Warn().Str("location", event.Location).Msg("recording interrupted")
	}

	controller.recording = ""
	controller.pausedFrom = ""
	controller.playAlarmLocked()
	controller.setStateLocked(StateAlarm)
	controller.raiseLocked(alarmFiredError())
}

func (controller *Controller) playAlarmLocked() {
	source, err := controller.deps.Locator.Locate(controller.options.AlarmSound)
	if err == nil {
		err = controller.deps.Sound.Play(source, sound.LoopOnce)
	}
	if err == nil {
		return
	}
	controller.logger.Error().Err(err).Str("sound", controller.options.AlarmSound).Msg("play alarm sound")
	if controller.options.AlarmFallback != nil {
		go controller.options.AlarmFallback()
	}
}

func (controller *Controller) onCountdownTick(time.Duration) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.state == StatePlaying {
		controller.emitLocked(EventProgress)
	}
}

func (controller *Controller) onCountdownElapsed(timer *countdown.Countdown) {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	if controller.state != StatePlaying || controller.countdown != timer {
		return
	}

	controller.deps.Sound.Stop()
	now := controller.options.Now()
	location := sound.TimeBasedLocation(controller.options.RecordingsDir, now)
	duration := controller.settings.AlarmTime.Sub(now)
	if duration < minRecordDuration {
		duration = minRecordDuration
	}

	if err := controller.deps.Sound.Record(location, duration); err != nil {
		controller.logger.Error().Err(err).Str("location", location).Msg("start recording")
		controller.stopActivityLocked()
		controller.setStateLocked(StateIdle)
		controller.raiseLocked(cannotStartRecordingError(err))
		return
	}
	controller.recording = location
	controller.setStateLocked(StateRecording)
	controller.logger.Info().Str("location", location).Dur("duration", duration).Msg("recording started")
}

func (controller *Controller) activeLocked() bool {
	return controller.snapshotLocked().Active()
}

// interruptLocked handles a settings change during activity.
func (controller *Controller) interruptLocked() {
	controller.logger.Warn().Str("state", string(controller.state)).Msg("settings changed while active")
	controller.stopActivityLocked()
	controller.setStateLocked(StateIdle)
	controller.raiseLocked(settingsChangedError())
}

// synchronizeAlarmTimeLocked moves an alarm time that falls before the end of
// the sleep time to the default and raises a warning. It reports whether a
// correction was made.
func (controller *Controller) synchronizeAlarmTimeLocked() bool {
	now := controller.options.Now()
	if !controller.settings.AlarmTime.Before(now.Add(controller.settings.SleepDuration())) {
		return false
	}
	controller.settings.AlarmTime = model.DefaultAlarmTime(now)
	controller.raiseLocked(incorrectAlarmTimeError())
	return true
}

func (controller *Controller) resetLocked() {
	controller.stopActivityLocked()
	controller.settings = model.DefaultAlarmSettings(controller.options.Now())
	controller.setStateLocked(StateIdle)
}

// stopActivityLocked tears down the countdown, playback and recording.
func (controller *Controller) stopActivityLocked() {
	if controller.countdown != nil {
		controller.countdown.Stop()
		controller.countdown = nil
	}
	if controller.deps.Sound != nil {
		controller.deps.Sound.Stop()
		if controller.recording != "" {
			controller.deps.Sound.StopRecording()
		}
	}
	controller.recording = ""
	controller.pausedFrom = ""
}

func (controller *Controller) setStateLocked(state State) {
	if state != StatePaused {
		controller.pausedFrom = ""
	}
	if controller.state == state {
		return
	}
	controller.logger.Info().Str("from", string(controller.state)).Str("to", string(state)).Msg("state change")
	controller.state = state
	controller.emitLocked(EventStateChange)
}

func (controller *Controller) raiseLocked(err *Error) {
	controller.err = err
	controller.logger.Warn().Str("kind", string(err.Kind)).Msg(err.Error())
	controller.emitLocked(EventError)
}

func (controller *Controller) snapshotLocked() Snapshot {
	snapshot := Snapshot{
		State:     controller.state,
		Settings:  controller.settings,
		Recording: controller.recording,
		Error:     controller.err,
	}
	if controller.state == StatePaused {
		snapshot.PausedFrom = controller.pausedFrom
	}
	if controller.countdown != nil && (controller.state == StatePlaying || snapshot.PausedFrom == StatePlaying) {
		snapshot.Remaining = controller.countdown.Remaining()
	}
	return snapshot
}

func (controller *Controller) emitLocked(eventType EventType) {
	event := Event{
		Type:     eventType,
		Snapshot: controller.snapshotLocked(),
		At:       controller.options.Now(),
	}
	events := append([]chan Event(nil), controller.events...)
	for _, ch := range events {
		select {
		case ch <- event:
		default:
		}
	}
}
