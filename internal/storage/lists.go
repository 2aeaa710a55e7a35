package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"alarmsound/internal/platform"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	listsFileName  = "lists.yaml"
	appendQueueLen = 32
)

// listRequest is either an append or, when barrier is set, a marker that is
// closed once every request queued before it has been written.
type listRequest struct {
	key       string
	reference string
	barrier   chan struct{}
}

// ListStore persists named, ordered lists of references in a YAML file.
// Appends are queued and written by a single goroutine in call order.
type ListStore struct {
	path   string
	logger zerolog.Logger
	fileMu sync.Mutex
	mu     sync.Mutex
	closed bool
	queue  chan listRequest
	done   chan struct{}
}

// OpenListStore opens the list file in the app's config directory.
func OpenListStore(appName string, logger zerolog.Logger) (*ListStore, error) {
	configDir, err := platform.ConfigDir(appName)
	if err != nil {
		return nil, err
	}
	return NewListStore(filepath.Join(configDir, listsFileName), logger), nil
}

// NewListStore creates a store backed by the YAML file at path.
func NewListStore(path string, logger zerolog.Logger) *ListStore {
	store := &ListStore{
		path:   path,
		logger: logger.With().Str("component", "storage").Str("path", path).Logger(),
		queue:  make(chan listRequest, appendQueueLen),
		done:   make(chan struct{}),
	}
	go store.run()
	return store
}

// Path returns the backing file.
func (store *ListStore) Path() string {
	return store.path
}

// Append adds reference to the list under key. The write happens in the
// background; failures are logged and otherwise dropped.
func (store *ListStore) Append(key, reference string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		store.logger.Warn().Str("key", key).Msg("append after close dropped")
		return
	}
	store.queue <- listRequest{key: key, reference: reference}
}

// Retrieve loads the list under key in the background and passes it to
// deliver. Appends queued before the call are visible. A missing or
// unreadable file delivers an empty list.
func (store *ListStore) Retrieve(key string, deliver func([]string)) {
	barrier := store.barrier()
	go func() {
		<-barrier
		list, err := store.Load(key)
		if err != nil {
			store.logger.Error().Err(err).Str("key", key).Msg("retrieve list")
		}
		deliver(list)
	}()
}

// Load reads the list under key synchronously.
func (store *ListStore) Load(key string) ([]string, error) {
	store.fileMu.Lock()
	defer store.fileMu.Unlock()
	lists, err := store.readLocked()
	if err != nil {
		return nil, err
	}
	return append([]string(nil), lists[key]...), nil
}

// Flush waits until every append queued before the call has been written.
func (store *ListStore) Flush() {
	<-store.barrier()
}

// Close flushes queued appends and stops the writer.
func (store *ListStore) Close() {
	store.mu.Lock()
	if store.closed {
		store.mu.Unlock()
		return
	}
	store.closed = true
	close(store.queue)
	store.mu.Unlock()
	<-store.done
}

// barrier queues a marker behind the pending appends. After Close the
// writer has drained the queue, so the returned channel is already closed.
func (store *ListStore) barrier() <-chan struct{} {
	barrier := make(chan struct{})
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.closed {
		<-store.done
		close(barrier)
		return barrier
	}
	store.queue <- listRequest{barrier: barrier}
	return barrier
}

func (store *ListStore) run() {
	defer close(store.done)
	for request := range store.queue {
		if request.barrier != nil {
			close(request.barrier)
			continue
		}
		if err := store.appendNow(request.key, request.reference); err != nil {
			store.logger.Error().Err(err).Str("key", request.key).Msg("append to list")
		} else {
			store.logger.Debug().Str("key", request.key).Str("reference", request.reference).Msg("list appended")
		}
	}
}

func (store *ListStore) appendNow(key, reference string) error {
	store.fileMu.Lock()
	defer store.fileMu.Unlock()

	lists, err := store.readLocked()
	if err != nil {
		return err
	}
	lists[key] = append(lists[key], reference)

	serialized, err := yaml.Marshal(lists)
	if err != nil {
		return fmt.Errorf("marshal lists yaml: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(store.path), 0o755); err != nil {
		return fmt.Errorf("create lists directory: %w", err)
	}
	if err := writeFileAtomic(store.path, serialized); err != nil {
		return fmt.Errorf("write lists file: %w", err)
	}
	return nil
}

func (store *ListStore) readLocked() (map[string][]string, error) {
	lists := map[string][]string{}
	rawData, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return lists, nil
		}
		return lists, fmt.Errorf("read lists file: %w", err)
	}
	if err := yaml.Unmarshal(rawData, &lists); err != nil {
		return map[string][]string{}, fmt.Errorf("parse lists yaml: %w", err)
	}
	if lists == nil {
		lists = map[string][]string{}
	}
	return lists, nil
}
