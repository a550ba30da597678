package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
)

// Level is the coarse authorization tier attached to a session.
type Level string

const (
	LevelNone    Level = "none"
	LevelRegular Level = "regular"
	LevelAdmin   Level = "admin"
)

// Valid reports whether the level is one of the enumerated tiers.
func (l Level) Valid() bool {
	switch l {
	case LevelNone, LevelRegular, LevelAdmin:
		return true
	}
	return false
}

// EventUserStateUpdated names the notification emitted on every session
// change.
const EventUserStateUpdated = "user-state-updated"

var (
	// ErrInvalidLevel reports a Set with a level outside the enumerated
	// tiers. Reaching it indicates a programming error in the caller.
	ErrInvalidLevel = errors.New("invalid permission level")

	// ErrNotifyFailed reports subscribers that missed an update. The state
	// change itself has already committed when this is returned.
	ErrNotifyFailed = errors.New("session update not delivered")
)

// State is the process-wide current-user snapshot. An empty Username with
// LevelNone means no one is logged in.
type State struct {
	Username string
	Level    Level
}

// Update is the payload delivered to subscribers.
type Update struct {
	Name  string
	State State
}

// Subscriber receives session updates.
type Subscriber struct {
	ID int
	Ch chan Update
}

// Manager holds the single authoritative session value and broadcasts
// every change to its subscribers. Construct one per process and inject
// it; there is no package-level instance.
type Manager struct {
	mu          sync.RWMutex
	state       State
	nextID      int
	subscribers map[int]*Subscriber
}

// NewManager creates a session manager in the anonymous state.
func NewManager() *Manager {
	return &Manager{
		state:       State{Level: LevelNone},
		subscribers: make(map[int]*Subscriber),
	}
}

// State returns a snapshot of the current session.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Set replaces the session and notifies subscribers. Intended for the
// store's authentication path, not for presentation-layer callers.
// Notification happens before the write lock is released, so a subscriber
// never observes an update staler than a subsequent State read. The state
// change is not unwound when delivery fails; the error is ErrNotifyFailed
// in that case.
func (m *Manager) Set(username string, level Level) error {
	if !level.Valid() {
		return fmt.Errorf("%q: %w", level, ErrInvalidLevel)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{Username: username, Level: level}
	return m.broadcastLocked()
}

// LogOut unconditionally resets the session to anonymous. It requires no
// authentication, always succeeds and is idempotent. The reset is
// broadcast like any other change; delivery failures are only logged.
func (m *Manager) LogOut() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = State{Level: LevelNone}
	if err := m.broadcastLocked(); err != nil {
		log.Printf("Logout broadcast: %v", err)
	}
}

// broadcastLocked fans the current state out to every subscriber. Callers
// must hold the write lock. Sends never block: a subscriber with a full
// buffer misses the update.
func (m *Manager) broadcastLocked() error {
	update := Update{Name: EventUserStateUpdated, State: m.state}

	dropped := 0
	for _, sub := range m.subscribers {
		select {
		case sub.Ch <- update:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%d of %d subscribers missed update: %w", dropped, len(m.subscribers), ErrNotifyFailed)
	}
	return nil
}

// Subscribe registers an observer of session changes.
func (m *Manager) Subscribe() *Subscriber {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	sub := &Subscriber{
		ID: m.nextID,
		Ch: make(chan Update, 8),
	}
	m.subscribers[sub.ID] = sub
	return sub
}

// Unsubscribe removes an observer. The channel is left open so a pending
// receive drains rather than panics.
func (m *Manager) Unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, id)
}
