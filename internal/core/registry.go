package core

import (
	"fmt"
	"sync"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// nameAttempts is how many fresh names are tried before a numeric suffix is used.
const nameAttempts = 5

// NameFunc produces candidate display names.
type NameFunc func() string

// RandomName returns a random human full name.
func RandomName() string {
	return gofakeit.Name()
}

// Registry tracks the set of currently connected clients.
// The lock guards membership only and is never held across network I/O.
type Registry struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	names   map[string]struct{}
	newName NameFunc
	log     *zerolog.Logger
}

// NewRegistry creates an empty registry. A nil names falls back to RandomName.
func NewRegistry(names NameFunc, logger *zerolog.Logger) *Registry {
	if names == nil {
		names = RandomName
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{
		clients: make(map[*Client]struct{}),
		names:   make(map[string]struct{}),
		newName: names,
		log:     logger,
	}
}

// Register adds a client for conn with a fresh ID and a display name unique among registered clients.
func (r *Registry) Register(conn Conn, addr string) *Client {
	r.mu.Lock()
	name := r.uniqueNameLocked()
	client := NewClient(uuid.NewString(), name, addr, conn)
	r.clients[client] = struct{}{}
	r.names[name] = struct{}{}
	count := len(r.clients)
	r.mu.Unlock()

	r.log.Info().
		Str("client_id", client.ID).
		Str("name", client.Name).
		Str("addr", addr).
		Int("clients", count).
		Msg("client connected")
	return client
}

// Unregister removes c. It returns false and does nothing when c is not registered,
// so concurrent disconnect paths can all call it safely.
func (r *Registry) Unregister(c *Client) bool {
	if c == nil {
		return false
	}

	r.mu.Lock()
	if _, ok := r.clients[c]; !ok {
		r.mu.Unlock()
		return false
	}
	delete(r.clients, c)
	delete(r.names, c.Name)
	count := len(r.clients)
	r.mu.Unlock()

	r.log.Info().
		Str("client_id", c.ID).
		Str("name", c.Name).
		Str("addr", c.Addr).
		Int("clients", count).
		Msg("client disconnected")
	return true
}

// Contains reports whether c is registered.
func (r *Registry) Contains(c *Client) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[c]
	return ok
}

// Len returns the number of registered clients.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Snapshot returns a point-in-time copy of the membership.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}

// CloseAll closes every registered connection concurrently. Their dispatch loops
// then end and unregister themselves.
func (r *Registry) CloseAll(reason string) {
	clients := r.Snapshot()

	var g errgroup.Group
	for _, c := range clients {
		c := c
		g.Go(func() error {
			if err := c.Close(reason); err != nil {
				r.log.Debug().Err(err).Str("client_id", c.ID).Msg("close client")
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(clients) > 0 {
		r.log.Info().Int("clients", len(clients)).Msg("closed client connections")
	}
}

func (r *Registry) uniqueNameLocked() string {
	var candidate string
	for n := 0; n < nameAttempts; n++ {
		candidate = r.newName()
		if _, taken := r.names[candidate]; !taken && candidate != "" {
			return candidate
		}
	}
	if candidate == "" {
		candidate = "Guest"
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s (%d)", candidate, i)
		if _, taken := r.names[name]; !taken {
			return name
		}
	}
}
