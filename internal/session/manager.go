package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Manager is the single accessor for session records. All JSON encoding of
// stored records goes through it.
type Manager struct {
	store Store
}

// NewManager wraps a Store.
func NewManager(store Store) *Manager {
	if store == nil {
		panic("session: store cannot be nil")
	}
	return &Manager{store: store}
}

// NewID returns a fresh opaque session id.
func NewID() string {
	return uuid.NewString()
}

// User returns the logged-in patient, or ErrNotFound when nobody is logged in.
// A successful read restarts the expiry of the session records.
func (m *Manager) User(ctx context.Context, sid string) (*User, error) {
	if sid == "" {
		return nil, ErrNotFound
	}
	var u User
	if err := m.load(ctx, sid, KeyUser, &u); err != nil {
		return nil, err
	}
	if err := m.store.Touch(ctx, sid, KeyUser, KeyDraft); err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser stores the logged-in patient record.
func (m *Manager) SaveUser(ctx context.Context, sid string, u User) error {
	return m.save(ctx, sid, KeyUser, u)
}

// Draft returns the pending reschedule handoff.
func (m *Manager) Draft(ctx context.Context, sid string) (*Draft, error) {
	var d Draft
	if err := m.load(ctx, sid, KeyDraft, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDraft overwrites any previous reschedule handoff.
func (m *Manager) SaveDraft(ctx context.Context, sid string, d Draft) error {
	return m.save(ctx, sid, KeyDraft, d)
}

// PushNotice queues a message for the next page render, replacing any pending one.
func (m *Manager) PushNotice(ctx context.Context, sid string, n Notice) error {
	return m.save(ctx, sid, KeyNotice, n)
}

// PopNotice returns and clears the pending notice. It returns nil when there is none.
func (m *Manager) PopNotice(ctx context.Context, sid string) (*Notice, error) {
	if sid == "" {
		return nil, nil
	}
	data, err := m.store.Take(ctx, sid, KeyNotice)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCorrupt, KeyNotice, err)
	}
	return &n, nil
}

// Destroy removes the user record, its legacy copies, the draft and any notice.
func (m *Manager) Destroy(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}
	keys := append([]string{KeyUser, KeyDraft, KeyNotice}, LegacyKeys...)
	return m.store.Delete(ctx, sid, keys...)
}

func (m *Manager) load(ctx context.Context, sid, key string, out any) error {
	data, err := m.store.Get(ctx, sid, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

func (m *Manager) save(ctx context.Context, sid, key string, v any) error {
	if sid == "" {
		return errors.New("session: empty session id")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("session: encode %s: %w", key, err)
	}
	return m.store.Set(ctx, sid, key, data)
}
