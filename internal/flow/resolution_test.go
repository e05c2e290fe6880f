package flow

import (
	"context"
	"testing"
	"time"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
)

func waitForResolution(t *testing.T, observer *Observer, want Resolution) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if observer.Resolution() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("observer stuck at %v, want %v", observer.Resolution(), want)
}

func TestObserverTracksSession(t *testing.T) {
	fixture := newFlowFixture(t, identity.ServiceConfig{})
	fixture.verifiedAccount(t, "u@real.com", "secret1")

	client := fixture.service.NewClient()
	observer := NewObserver(client)
	defer observer.Close()

	// The provider reports asynchronously; the observer settles to anonymous
	// once the initial callback lands.
	waitForResolution(t, observer, ResolutionAnonymous)

	if _, err := client.SignIn(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	waitForResolution(t, observer, ResolutionAuthenticated)

	resolution, session := observer.State()
	if resolution != ResolutionAuthenticated || session == nil || session.Email != "u@real.com" {
		t.Fatalf("unexpected state %v %+v", resolution, session)
	}

	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	waitForResolution(t, observer, ResolutionAnonymous)
}

func TestObserverCloseFreezesState(t *testing.T) {
	fixture := newFlowFixture(t, identity.ServiceConfig{})
	fixture.verifiedAccount(t, "u@real.com", "secret1")

	client := fixture.service.NewClient()
	observer := NewObserver(client)
	waitForResolution(t, observer, ResolutionAnonymous)
	observer.Close()

	if _, err := client.SignIn(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	if resolution := observer.Resolution(); resolution != ResolutionAnonymous {
		t.Fatalf("closed observer changed state to %v", resolution)
	}
}

func TestObserverIndependentPerClient(t *testing.T) {
	fixture := newFlowFixture(t, identity.ServiceConfig{})
	fixture.verifiedAccount(t, "u@real.com", "secret1")

	signedIn := fixture.service.NewClient()
	idle := fixture.service.NewClient()

	first := NewObserver(signedIn)
	defer first.Close()
	second := NewObserver(idle)
	defer second.Close()

	if _, err := signedIn.SignIn(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	waitForResolution(t, first, ResolutionAuthenticated)
	waitForResolution(t, second, ResolutionAnonymous)
}
