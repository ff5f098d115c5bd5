package fabric

import (
	"context"
	"errors"
	"sync"

	"github.com/artpar/smoothstack/internal/core/domain"
	corefabric "github.com/artpar/smoothstack/internal/core/fabric"
	"github.com/artpar/smoothstack/internal/shell/engine"
)

// ErrChannelNotFound is returned when a channel name has no registered entry.
var ErrChannelNotFound = errors.New("communication channel not found")

// ErrChannelExists is returned when registering a channel name already in use.
var ErrChannelExists = errors.New("communication channel already exists")

type channelEntry struct {
	record    domain.CommunicationChannel
	transport Transport
}

// Registry holds every configured channel and its live Transport,
// guarded by a single RWMutex (spec.md §5's "serialized per kind via a
// per-kind lock" — channels are one kind).
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*channelEntry
	client engine.Client
}

// NewRegistry builds an empty channel registry bound to the given
// container engine client (used by the runtime-network and
// shared-volume transports).
func NewRegistry(client engine.Client) *Registry {
	return &Registry{byName: make(map[string]*channelEntry), client: client}
}

// Register validates and opens a transport for ch, storing it under
// ch.Name. Fails if a channel with the same name already exists.
func (r *Registry) Register(ch domain.CommunicationChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byName[ch.Name]; exists {
		return ErrChannelExists
	}

	transport, err := NewTransport(ch, r.client)
	if err != nil {
		return err
	}

	r.byName[ch.Name] = &channelEntry{record: ch, transport: transport}
	return nil
}

// Unregister closes and removes a channel.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.byName[name]
	if !ok {
		return ErrChannelNotFound
	}
	delete(r.byName, name)
	return entry.transport.Close()
}

// Get returns the current record for a channel, including its runtime
// Active/SubscriberCount fields as last updated by the heartbeat loop.
func (r *Registry) Get(name string) (domain.CommunicationChannel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.byName[name]
	if !ok {
		return domain.CommunicationChannel{}, ErrChannelNotFound
	}
	return entry.record, nil
}

// List returns every registered channel's current record.
func (r *Registry) List() []domain.CommunicationChannel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CommunicationChannel, 0, len(r.byName))
	for _, entry := range r.byName {
		result = append(result, entry.record)
	}
	return result
}

// Publish sends content on the named channel to the given targets
// (empty targets means broadcast), building the envelope via
// internal/core/fabric.
func (r *Registry) Publish(ctx context.Context, name, content string, msgType domain.MessageType, source string, targets []string) (domain.Message, error) {
	r.mu.RLock()
	entry, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return domain.Message{}, ErrChannelNotFound
	}

	msg := corefabric.NewMessage(content, msgType, source, targets)
	if err := entry.transport.Publish(ctx, msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// snapshot returns the names and transports of every registered channel,
// used by the heartbeat loop without holding the lock across I/O.
func (r *Registry) snapshot() map[string]Transport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Transport, len(r.byName))
	for name, entry := range r.byName {
		out[name] = entry.transport
	}
	return out
}

// setActive updates a channel's runtime Active flag after a heartbeat probe.
func (r *Registry) setActive(name string, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.byName[name]; ok {
		entry.record.Active = active
	}
}
