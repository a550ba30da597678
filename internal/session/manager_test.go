package session

import (
	"errors"
	"sync"
	"testing"
)

func TestManagerDefaultsToAnonymous(t *testing.T) {
	m := NewManager()

	state := m.State()
	if state.Username != "" || state.Level != LevelNone {
		t.Fatalf("expected anonymous default, got %+v", state)
	}
}

func TestSetRejectsInvalidLevel(t *testing.T) {
	m := NewManager()

	err := m.Set("john_doe", Level("superuser"))
	if !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("expected ErrInvalidLevel, got %v", err)
	}

	state := m.State()
	if state.Username != "" || state.Level != LevelNone {
		t.Fatalf("state changed despite invalid level: %+v", state)
	}
}

func TestSetBroadcastsExactlyOnce(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe()

	if err := m.Set("john_doe", LevelRegular); err != nil {
		t.Fatalf("set: %v", err)
	}

	update := <-sub.Ch
	if update.Name != EventUserStateUpdated {
		t.Fatalf("expected event %q, got %q", EventUserStateUpdated, update.Name)
	}
	if update.State.Username != "john_doe" || update.State.Level != LevelRegular {
		t.Fatalf("unexpected payload: %+v", update.State)
	}
	if update.State != m.State() {
		t.Fatalf("payload %+v is stale relative to State() %+v", update.State, m.State())
	}

	select {
	case extra := <-sub.Ch:
		t.Fatalf("expected exactly one update, got extra %+v", extra)
	default:
	}
}

func TestLogOutResetsAndIsIdempotent(t *testing.T) {
	m := NewManager()
	if err := m.Set("john_doe", LevelRegular); err != nil {
		t.Fatalf("set: %v", err)
	}

	m.LogOut()
	first := m.State()
	if first.Username != "" || first.Level != LevelNone {
		t.Fatalf("expected anonymous after logout, got %+v", first)
	}

	m.LogOut()
	if second := m.State(); second != first {
		t.Fatalf("logout not idempotent: %+v vs %+v", second, first)
	}
}

func TestSetReportsDroppedSubscribers(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe()

	// Fill the subscriber buffer without draining it.
	for i := 0; i < cap(sub.Ch); i++ {
		if err := m.Set("john_doe", LevelRegular); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}

	err := m.Set("sarah_smith", LevelRegular)
	if !errors.Is(err, ErrNotifyFailed) {
		t.Fatalf("expected ErrNotifyFailed, got %v", err)
	}

	// The state change itself must have committed.
	if state := m.State(); state.Username != "sarah_smith" {
		t.Fatalf("state not committed on delivery failure: %+v", state)
	}
}

func TestLogOutCommitsDespiteDroppedSubscribers(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe()

	// Fill the subscriber buffer so the logout broadcast is dropped.
	for i := 0; i < cap(sub.Ch); i++ {
		if err := m.Set("john_doe", LevelRegular); err != nil {
			t.Fatalf("set %d: %v", i, err)
		}
	}

	m.LogOut()

	if state := m.State(); state.Username != "" || state.Level != LevelNone {
		t.Fatalf("logout not committed on delivery failure: %+v", state)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	m := NewManager()
	sub := m.Subscribe()
	m.Unsubscribe(sub.ID)

	if err := m.Set("john_doe", LevelRegular); err != nil {
		t.Fatalf("set: %v", err)
	}

	select {
	case update := <-sub.Ch:
		t.Fatalf("unsubscribed channel received %+v", update)
	default:
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				state := m.State()
				if !state.Level.Valid() {
					t.Errorf("invalid level observed: %+v", state)
					return
				}
			}
		}()
	}
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = m.Set("john_doe", LevelRegular)
				m.LogOut()
			}
		}()
	}
	wg.Wait()
}
