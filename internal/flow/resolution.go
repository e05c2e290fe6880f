// Package flow implements the session-gated navigation contracts of the
// SkillStream client: the session observer, the policy-driven route guard,
// and the login, registration, and profile-setup flows.
package flow

import (
	"sync"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
)

// Resolution is the tri-state derived from the session observer. It is never
// persisted; every observer recomputes it from the provider's callbacks.
type Resolution int

const (
	// ResolutionUnresolved means the provider has not yet reported a state.
	ResolutionUnresolved Resolution = iota
	// ResolutionAuthenticated means a session is attached.
	ResolutionAuthenticated
	// ResolutionAnonymous means the provider reported no session.
	ResolutionAnonymous
)

// String returns the resolution name for logs.
func (resolution Resolution) String() string {
	switch resolution {
	case ResolutionAuthenticated:
		return "authenticated"
	case ResolutionAnonymous:
		return "anonymous"
	default:
		return "unresolved"
	}
}

// Observer subscribes to the identity provider's session-change callbacks and
// exposes the current resolution. Close deregisters the subscription; no
// state change happens after Close returns.
type Observer struct {
	mutex      sync.Mutex
	resolution Resolution
	session    *identity.Session
	unwatch    func()
	closed     bool
}

// NewObserver registers with the client and starts unresolved.
func NewObserver(client *identity.Client) *Observer {
	observer := &Observer{resolution: ResolutionUnresolved}
	observer.unwatch = client.Watch(observer.onSessionChange)
	return observer
}

// State returns the current resolution and session snapshot.
func (observer *Observer) State() (Resolution, *identity.Session) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	return observer.resolution, observer.session
}

// Resolution returns only the tri-state value.
func (observer *Observer) Resolution() Resolution {
	resolution, _ := observer.State()
	return resolution
}

// Close deregisters the provider callback. Guaranteed: the observer's state
// never changes after Close returns.
func (observer *Observer) Close() {
	observer.unwatch()
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	observer.closed = true
}

func (observer *Observer) onSessionChange(session *identity.Session) {
	observer.mutex.Lock()
	defer observer.mutex.Unlock()
	if observer.closed {
		return
	}
	observer.session = session
	if session != nil {
		observer.resolution = ResolutionAuthenticated
	} else {
		observer.resolution = ResolutionAnonymous
	}
}
