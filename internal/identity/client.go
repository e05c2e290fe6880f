package identity

import (
	"context"
	"sync"
)

// Client is one user agent's handle on the provider. It tracks the live
// session for that agent and notifies watchers on every change. Each agent
// drives only its own client, so the client's mutex is the only
// serialization needed.
type Client struct {
	service *Service

	mutex    sync.Mutex
	current  *Session
	watchers map[int]func(*Session)
	nextID   int
}

// NewClient constructs a client with no session.
func (service *Service) NewClient() *Client {
	return &Client{
		service:  service,
		watchers: make(map[int]func(*Session)),
	}
}

// Service exposes the provider behind this client.
func (client *Client) Service() *Service {
	return client.service
}

// SignIn verifies credentials and installs the resulting session.
func (client *Client) SignIn(ctx context.Context, email string, password string) (*Session, error) {
	session, err := client.service.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	client.setSession(session)
	return session, nil
}

// SignUp creates an account and installs its (unverified) session.
func (client *Client) SignUp(ctx context.Context, email string, password string) (*Session, error) {
	session, err := client.service.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	client.setSession(session)
	return session, nil
}

// SignOut clears the current session. Signing out with no session is a no-op.
func (client *Client) SignOut(ctx context.Context) error {
	client.setSession(nil)
	return nil
}

// CurrentSession returns the live session, or nil.
func (client *Client) CurrentSession() *Session {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	return client.current
}

// Watch registers a session-change callback. The callback is invoked at
// least once with the current session (possibly nil) and again on every
// subsequent change. The first delivery is asynchronous, so a caller sees an
// unresolved window between Watch and the first callback. After the returned
// unwatch function returns, the callback is never invoked again. Callbacks
// must not call back into the client.
func (client *Client) Watch(callback func(*Session)) func() {
	client.mutex.Lock()
	watcherID := client.nextID
	client.nextID++
	client.watchers[watcherID] = callback
	client.mutex.Unlock()

	go func() {
		client.mutex.Lock()
		defer client.mutex.Unlock()
		// Skip the initial delivery if the watcher was removed first.
		if _, registered := client.watchers[watcherID]; registered {
			callback(client.current)
		}
	}()

	return func() {
		client.mutex.Lock()
		defer client.mutex.Unlock()
		delete(client.watchers, watcherID)
	}
}

func (client *Client) setSession(session *Session) {
	client.mutex.Lock()
	defer client.mutex.Unlock()
	client.current = session
	for _, callback := range client.watchers {
		callback(session)
	}
}
