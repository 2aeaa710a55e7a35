package platform

import (
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"sync"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const activateTimeout = 2 * time.Second

// InstanceGuard holds the single-instance lock. While held, connections from
// later instances are treated as requests to bring the running one forward.
type InstanceGuard struct {
	mu       sync.Mutex
	listener net.Listener
	address  string
	onWake   func()
	done     chan struct{}
}

// AcquireSingleInstance attempts to bind a deterministic localhost port.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := instanceAddress(appName)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlreadyRunning, err)
	}
	guard := &InstanceGuard{listener: listener, address: address, done: make(chan struct{})}
	go guard.serve(listener)
	return guard, nil
}

// OnActivate registers the callback run when another instance starts.
func (guard *InstanceGuard) OnActivate(callback func()) {
	guard.mu.Lock()
	guard.onWake = callback
	guard.mu.Unlock()
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil {
		return nil
	}
	guard.mu.Lock()
	listener := guard.listener
	guard.listener = nil
	guard.mu.Unlock()
	if listener == nil {
		return nil
	}
	err := listener.Close()
	<-guard.done
	return err
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil {
		return ""
	}
	return guard.address
}

// ActivateRunning asks the instance holding the lock to show itself.
func ActivateRunning(appName string) error {
	conn, err := net.DialTimeout("tcp", instanceAddress(appName), activateTimeout)
	if err != nil {
		return fmt.Errorf("activate running instance: %w", err)
	}
	return conn.Close()
}

func (guard *InstanceGuard) serve(listener net.Listener) {
	defer close(guard.done)
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		_ = conn.Close()

		guard.mu.Lock()
		callback := guard.onWake
		guard.mu.Unlock()
		if callback != nil {
			callback()
		}
	}
}

func instanceAddress(appName string) string {
	return fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
}

func portFromName(appName string) int {
	const (
		minPort = 20000
		maxPort = 39999
	)
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxPort - minPort + 1
	return minPort + int(hash.Sum32()%uint32(rangeSize))
}
