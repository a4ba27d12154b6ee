package hub

import (
	"errors"
	"strings"
	"sync"

	"github.com/hubbubchat/hubbub/internal/protocol"
)

// AnonymousName is reported for connections that never completed a join.
// Late events from unjoined connections resolve to it instead of failing.
const AnonymousName = "Anonymous"

var (
	// ErrInvalidName rejects empty or whitespace-only display names.
	ErrInvalidName = errors.New("invalid username")
	// ErrNameTaken rejects a display name held by another live connection.
	ErrNameTaken = errors.New("username already taken")
)

// Registry maps live connection ids to joined user profiles and enforces
// display-name uniqueness among them.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]protocol.UserProfile
	order    []string // connection ids in join order, for stable rosters
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[string]protocol.UserProfile)}
}

// Join stores a profile for the connection. The uniqueness check and the
// insert happen under one lock, so concurrent joins with the same name
// cannot both succeed.
func (r *Registry) Join(connID, username string) (protocol.UserProfile, error) {
	if strings.TrimSpace(username) == "" {
		return protocol.UserProfile{}, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, profile := range r.profiles {
		if profile.Username == username {
			return protocol.UserProfile{}, ErrNameTaken
		}
	}

	profile := protocol.UserProfile{Username: username, ID: connID}
	if _, ok := r.profiles[connID]; !ok {
		r.order = append(r.order, connID)
	}
	r.profiles[connID] = profile
	return profile, nil
}

// Leave removes and returns the departing profile. It is idempotent; a
// second call for the same connection reports no profile.
func (r *Registry) Leave(connID string) (protocol.UserProfile, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[connID]
	if !ok {
		return protocol.UserProfile{}, false
	}
	delete(r.profiles, connID)
	for i, id := range r.order {
		if id == connID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return profile, true
}

// Lookup returns the profile for a connection, if it joined.
func (r *Registry) Lookup(connID string) (protocol.UserProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[connID]
	return profile, ok
}

// List snapshots the current roster in join order.
func (r *Registry) List() []protocol.UserProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]protocol.UserProfile, 0, len(r.order))
	for _, id := range r.order {
		if profile, ok := r.profiles[id]; ok {
			out = append(out, profile)
		}
	}
	return out
}

// DisplayNameOf resolves a connection to its display name, falling back
// to AnonymousName for connections that never joined.
func (r *Registry) DisplayNameOf(connID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if profile, ok := r.profiles[connID]; ok {
		return profile.Username
	}
	return AnonymousName
}
