package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"alarmsound/internal/ui/preferences"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAppName = "alarmsound-test"

func useTempConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	return filepath.Join(dir, testAppName)
}

func TestLoadSettingsDefaultsWhenMissing(t *testing.T) {
	configDir := useTempConfigDir(t)

	settings, err := LoadSettings(testAppName)
	require.NoError(t, err)

	defaults := preferences.DefaultSettings()
	assert.Equal(t, defaults.DefaultSleepMinutes, settings.DefaultSleepMinutes)
	assert.Equal(t, defaults.AmbientSound, settings.AmbientSound)
	assert.True(t, settings.NotificationsEnabled)
	assert.Equal(t, filepath.Join(configDir, "recordings"), settings.RecordingsDir)
	assert.Equal(t, filepath.Join(configDir, "sounds"), settings.SoundsDir)
}

func TestSaveAndLoadSettings(t *testing.T) {
	useTempConfigDir(t)

	settings := preferences.DefaultSettings()
	settings.DefaultSleepMinutes = 25
	settings.AmbientSound = "rain"
	settings.RecordingsDir = "/data/nights"
	settings.NotificationsEnabled = false
	settings.TickInterval = 250 * time.Millisecond
	settings.LogLevel = "debug"
	require.NoError(t, SaveSettings(testAppName, settings))

	loaded, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, 25, loaded.DefaultSleepMinutes)
	assert.Equal(t, "rain", loaded.AmbientSound)
	assert.Equal(t, "alarm", loaded.AlarmSound)
	assert.Equal(t, "/data/nights", loaded.RecordingsDir)
	assert.False(t, loaded.NotificationsEnabled)
	assert.Equal(t, 250*time.Millisecond, loaded.TickInterval)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestLoadSettingsNormalizesValues(t *testing.T) {
	configDir := useTempConfigDir(t)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, settingsFileName), []byte("default_sleep_minutes: 300\nlog_level: chatty\n"), 0o644))

	settings, err := LoadSettings(testAppName)
	require.NoError(t, err)
	assert.Equal(t, 60, settings.DefaultSleepMinutes)
	assert.Equal(t, "info", settings.LogLevel)
	assert.True(t, settings.NotificationsEnabled)
}

func TestLoadSettingsInvalidYaml(t *testing.T) {
	configDir := useTempConfigDir(t)
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, settingsFileName), []byte("default_sleep_minutes: ["), 0o644))

	settings, err := LoadSettings(testAppName)
	require.Error(t, err)
	assert.Equal(t, preferences.DefaultSettings().DefaultSleepMinutes, settings.DefaultSleepMinutes)
	assert.NotEmpty(t, settings.RecordingsDir)
}

func TestListStoreAppendKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", listsFileName)
	store := NewListStore(path, zerolog.Nop())

	for _, name := range []string{"a.flac", "b.flac", "c.flac"} {
		store.Append("recordings", name)
	}
	store.Append("other", "x")
	store.Flush()

	list, err := store.Load("recordings")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.flac", "b.flac", "c.flac"}, list)

	store.Close()
	reopened := NewListStore(path, zerolog.Nop())
	defer reopened.Close()
	list, err = reopened.Load("other")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, list)
}

func TestListStoreRetrieveDelivers(t *testing.T) {
	store := NewListStore(filepath.Join(t.TempDir(), listsFileName), zerolog.Nop())
	defer store.Close()
	store.Append("recordings", "night.flac")
	store.Flush()

	delivered := make(chan []string, 1)
	store.Retrieve("recordings", func(list []string) { delivered <- list })

	select {
	case list := <-delivered:
		assert.Equal(t, []string{"night.flac"}, list)
	case <-time.After(time.Second):
		t.Fatal("list not delivered")
	}
}

func TestListStoreConcurrentAppendAndRetrieve(t *testing.T) {
	store := NewListStore(filepath.Join(t.TempDir(), listsFileName), zerolog.Nop())
	defer store.Close()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			reference := fmt.Sprintf("night-%02d.flac", i)
			store.Append("recordings", reference)

			delivered := make(chan []string, 1)
			store.Retrieve("recordings", func(list []string) { delivered <- list })
			select {
			case list := <-delivered:
				assert.Contains(t, list, reference)
			case <-time.After(2 * time.Second):
				t.Error("list not delivered")
			}
		}(i)
	}
	wg.Wait()

	list, err := store.Load("recordings")
	require.NoError(t, err)
	assert.Len(t, list, writers)
}

func TestListStoreRetrieveAfterClose(t *testing.T) {
	store := NewListStore(filepath.Join(t.TempDir(), listsFileName), zerolog.Nop())
	store.Append("recordings", "last.flac")
	store.Close()

	delivered := make(chan []string, 1)
	store.Retrieve("recordings", func(list []string) { delivered <- list })
	select {
	case list := <-delivered:
		assert.Equal(t, []string{"last.flac"}, list)
	case <-time.After(time.Second):
		t.Fatal("list not delivered")
	}
}

func TestListStoreRetrieveMissingKey(t *testing.T) {
	store := NewListStore(filepath.Join(t.TempDir(), listsFileName), zerolog.Nop())
	defer store.Close()

	delivered := make(chan []string, 1)
	store.Retrieve("recordings", func(list []string) { delivered <- list })

	select {
	case list := <-delivered:
		assert.Empty(t, list)
	case <-time.After(time.Second):
		t.Fatal("list not delivered")
	}
}

func TestListStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), listsFileName)
	require.NoError(t, os.WriteFile(path, []byte("recordings: {"), 0o644))
	store := NewListStore(path, zerolog.Nop())
	defer store.Close()

	_, err := store.Load("recordings")
	require.Error(t, err)

	store.Append("recordings", "lost.flac")
	store.Flush()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "recordings: {", string(raw))
}

func TestListStoreAppendAfterCloseIsDropped(t *testing.T) {
	path := filepath.Join(t.TempDir(), listsFileName)
	store := NewListStore(path, zerolog.Nop())
	store.Close()
	store.Close()

	store.Append("recordings", "late.flac")
	store.Flush()
	assert.NoFileExists(t, path)
}

func TestOpenListStoreUsesConfigDir(t *testing.T) {
	configDir := useTempConfigDir(t)
	store, err := OpenListStore(testAppName, zerolog.Nop())
	require.NoError(t, err)
	defer store.Close()
	assert.Equal(t, filepath.Join(configDir, listsFileName), store.Path())
}
