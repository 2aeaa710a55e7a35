package resources

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"alarmsound/internal/sound"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	soundDir     = "sounds/"
	presetExt    = ".yaml"
	soundFileExt = ".flac"
)

// ErrResourceNotFound is returned when neither the sounds directory nor the
// embedded presets contain the requested sound.
var ErrResourceNotFound = errors.New("sound resource not found")

//go:embed sounds/*.yaml
var soundFS embed.FS

// Preset loads an embedded sound preset by name.
func Preset(name string) (sound.Preset, error) {
	var preset sound.Preset
	data, err := soundFS.ReadFile(soundDir + name + presetExt)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return preset, fmt.Errorf("preset %s: %w", name, ErrResourceNotFound)
		}
		return preset, fmt.Errorf("read preset %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return preset, fmt.Errorf("parse preset %s: %w", name, err)
	}
	if preset.Name == "" {
		preset.Name = name
	}
	return preset, nil
}

// PresetNames lists the embedded presets.
func PresetNames() []string {
	entries, err := soundFS.ReadDir(strings.TrimSuffix(soundDir, "/"))
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if path.Ext(name) == presetExt {
			names = append(names, strings.TrimSuffix(name, presetExt))
		}
	}
	sort.Strings(names)
	return names
}

// Locator resolves sound names to decoded buffers. A FLAC file in the sounds
// directory takes precedence over the embedded preset of the same name.
type Locator struct {
	mu        sync.RWMutex
	soundsDir string
	cache     sync.Map
	logger    zerolog.Logger
}

// NewLocator creates a locator. soundsDir may be empty.
func NewLocator(soundsDir string, logger zerolog.Logger) *Locator {
	return &Locator{
		soundsDir: soundsDir,
		logger:    logger.With().Str("component", "resources").Logger(),
	}
}

// Locate returns the buffer for name, loading and caching it on first use.
func (locator *Locator) Locate(name string) (*sound.Buffer, error) {
	locator.mu.RLock()
	defer locator.mu.RUnlock()
	if cached, ok := locator.cache.Load(name); ok {
		return cached.(*sound.Buffer), nil
	}

	buffer, err := locator.load(name)
	if err != nil {
		return nil, err
	}
	actual, _ := locator.cache.LoadOrStore(name, buffer)
	return actual.(*sound.Buffer), nil
}

// SetSoundsDir switches the sounds directory and drops cached sounds.
func (locator *Locator) SetSoundsDir(dir string) {
	locator.mu.Lock()
	defer locator.mu.Unlock()
	if dir == locator.soundsDir {
		return
	}
	locator.soundsDir = dir
	locator.cache.Range(func(key, _ any) bool {
		locator.cache.Delete(key)
		return true
	})
}

// Names lists every sound the locator can resolve.
func (locator *Locator) Names() []string {
	locator.mu.RLock()
	soundsDir := locator.soundsDir
	locator.mu.RUnlock()

	seen := map[string]bool{}
	for _, name := range PresetNames() {
		seen[name] = true
	}
	if soundsDir != "" {
		matches, _ := filepath.Glob(filepath.Join(soundsDir, "*"+soundFileExt))
		for _, match := range matches {
			seen[strings.TrimSuffix(filepath.Base(match), soundFileExt)] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (locator *Locator) load(name string) (*sound.Buffer, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("sound %q: %w", name, ErrResourceNotFound)
	}

	if locator.soundsDir != "" {
		filePath := filepath.Join(locator.soundsDir, name+soundFileExt)
		if _, err := os.Stat(filePath); err == nil {
			buffer, err := sound.DecodeFLAC(filePath, name)
			if err != nil {
				locator.logger.Error().Err(err).Str("path", filePath).Msg("decode sound file")
				return nil, err
			}
			locator.logger.Debug().Str("path", filePath).Msg("sound loaded from file")
			return buffer, nil
		}
	}

	preset, err := Preset(name)
	if err != nil {
		return nil, err
	}
	buffer, err := sound.Synthesize(preset)
	if err != nil {
		return nil, err
	}
	locator.logger.Debug().Str("sound", name).Str("kind", string(preset.Kind)).Msg("sound synthesized")
	return buffer, nil
}
