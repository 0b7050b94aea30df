package store

import (
	"context"
	"fmt"
	"sync"

	"callbridge/internal/invite"
)

// Memory is an in-memory store for tests. It mirrors the Mongo
// implementation's contract: not-found maps to invite.ErrRecipientNotFound
// and call writes are overwrites keyed by channel name.
type Memory struct {
	mu       sync.Mutex
	Profiles map[string]invite.Profile
	Calls    map[string]invite.CallRecord

	// PutCallErr, when set, is returned by PutCall to simulate a store
	// write failure.
	PutCallErr error
}

func NewMemory() *Memory {
	return &Memory{
		Profiles: make(map[string]invite.Profile),
		Calls:    make(map[string]invite.CallRecord),
	}
}

func (m *Memory) GetProfile(_ context.Context, id string) (invite.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[id]
	if !ok {
		return invite.Profile{}, invite.ErrRecipientNotFound
	}
	return p, nil
}

func (m *Memory) FindProfileByField(_ context.Context, field, value string) (invite.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.Profiles {
		var got string
		switch field {
		case "username":
			got = p.Username
		case "name":
			got = p.Name
		default:
			return invite.Profile{}, fmt.Errorf("store: memory lookup does not support field %q", field)
		}
		if got == value {
			return p, nil
		}
	}
	return invite.Profile{}, invite.ErrRecipientNotFound
}

func (m *Memory) PutCall(_ context.Context, rec invite.CallRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutCallErr != nil {
		return m.PutCallErr
	}
	m.Calls[rec.ChannelName] = rec
	return nil
}

// CallCount reports how many call records exist.
func (m *Memory) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
