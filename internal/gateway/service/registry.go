package service

import (
	"sync"

	"github.com/aussiebroadwan/chatbridge/internal/gateway/domain"
	"github.com/aussiebroadwan/chatbridge/internal/gateway/protocol"
)

// Registry tracks the live protocol clients for this process. It is the
// in-memory side of the instance lifecycle: the durable store records which
// instances exist, the registry records which of them currently hold an open
// (or opening) connection.
//
// Every mutation is fenced on the client handle that performed it, so a
// handler working on behalf of a superseded connection cannot clobber the
// state of its replacement.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*registryEntry
	guards  map[string]struct{}
}

type registryEntry struct {
	client protocol.Client
	state  domain.SessionState
}

func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		guards:  make(map[string]struct{}),
	}
}

// BeginInit claims the right to initialize key. It fails when another
// initialization is in flight or a live entry already exists. A successful
// claim must be released with EndInit once the attempt settles.
func (r *Registry) BeginInit(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.guards[key]; ok {
		return false
	}
	if _, ok := r.entries[key]; ok {
		return false
	}
	r.guards[key] = struct{}{}
	return true
}

func (r *Registry) EndInit(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.guards, key)
}

// Put installs client as the current handle for key in StateInitializing.
// If a previous handle was still registered it is returned so the caller can
// close it; the registry itself never touches the network.
func (r *Registry) Put(key string, client protocol.Client) protocol.Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	var prev protocol.Client
	if e, ok := r.entries[key]; ok {
		prev = e.client
	}
	r.entries[key] = &registryEntry{client: client, state: domain.StateInitializing}
	return prev
}

// Get returns the current handle and state for key.
func (r *Registry) Get(key string) (protocol.Client, domain.SessionState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, "", false
	}
	return e.client, e.state, true
}

// IsCurrent reports whether client is still the registered handle for key.
func (r *Registry) IsCurrent(key string, client protocol.Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	return ok && e.client == client
}

// SetState transitions key to state, but only if client is still the current
// handle. Reports whether the transition was applied.
func (r *Registry) SetState(key string, client protocol.Client, state domain.SessionState) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || e.client != client {
		return false
	}
	e.state = state
	return true
}

// Remove unregisters key unconditionally and returns the handle that was
// registered, if any.
func (r *Registry) Remove(key string) (protocol.Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok {
		return nil, false
	}
	delete(r.entries, key)
	return e.client, true
}

// RemoveIf unregisters key only if client is still the current handle.
// Reports whether the entry was removed.
func (r *Registry) RemoveIf(key string, client protocol.Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[key]
	if !ok || e.client != client {
		return false
	}
	delete(r.entries, key)
	return true
}

// Len returns the number of registered entries in any state.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Keys returns the keys of all registered entries, connected or not.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.entries))
	for key := range r.entries {
		keys = append(keys, key)
	}
	return keys
}
