package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
	"github.com/includeshubhamgenius/skill-share/internal/profile"
)

var (
	// ErrEmailNotVerified terminates a login whose session has an unverified
	// email. The session is already torn down when this is returned.
	ErrEmailNotVerified = errors.New("flow.email_not_verified")
	// ErrDisposableEmail rejects registration before any provider call.
	ErrDisposableEmail = errors.New("flow.disposable_email")
	// ErrNotSignedIn rejects profile setup without a live session.
	ErrNotSignedIn = errors.New("flow.not_signed_in")
)

// Destination is where a successful login lands.
type Destination int

const (
	// DestinationMain is the authenticated main screen.
	DestinationMain Destination = iota
	// DestinationProfileSetup is the first-login bootstrap screen.
	DestinationProfileSetup
)

// LoginResult reports a completed login. Profile is non-nil only when
// Destination is DestinationMain.
type LoginResult struct {
	Destination Destination
	Session     *identity.Session
	Profile     *profile.Profile
}

// Config tunes the flows.
type Config struct {
	// BlockedEmailDomains is the registration denylist. Empty means the
	// built-in list.
	BlockedEmailDomains []string
}

// Flow drives the login, registration, and profile-setup sequences against
// the identity provider and the profile store.
type Flow struct {
	profiles       profile.Store
	logger         *zap.Logger
	recorder       EventRecorder
	blockedDomains map[string]struct{}
	now            func() time.Time
}

// New constructs a Flow.
func New(profiles profile.Store, logger *zap.Logger, recorder EventRecorder, config Config) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	domains := config.BlockedEmailDomains
	if len(domains) == 0 {
		domains = defaultBlockedDomains
	}
	blocked := make(map[string]struct{}, len(domains))
	for _, domain := range domains {
		blocked[strings.ToLower(domain)] = struct{}{}
	}
	return &Flow{
		profiles:       profiles,
		logger:         logger,
		recorder:       recorder,
		blockedDomains: blocked,
		now:            time.Now,
	}
}

// SignIn runs the login bootstrap: verify credentials, enforce email
// verification, look up the profile record exactly once, and pick the
// destination. Steps run in strict sequence; every failure surfaces once and
// leaves no partial login state.
func (flow *Flow) SignIn(ctx context.Context, client *identity.Client, email string, password string) (LoginResult, error) {
	session, signInErr := client.SignIn(ctx, email, password)
	if signInErr != nil {
		flow.recorder.Increment(EventLoginFailed)
		return LoginResult{}, flow.refineCredentialError(signInErr, email)
	}

	if !session.EmailVerified {
		// Hard stop: tear the session down so nothing unverified survives.
		_ = client.SignOut(ctx)
		flow.recorder.Increment(EventForcedSignOut)
		flow.recorder.Increment(EventLoginUnverified)
		flow.logger.Info("unverified login rejected",
			zap.String("code", "flow.login.unverified"),
			zap.String("account_id", session.UserID),
		)
		return LoginResult{}, ErrEmailNotVerified
	}

	record, lookupErr := flow.profiles.Get(ctx, session.UserID)
	if lookupErr != nil {
		if errors.Is(lookupErr, profile.ErrProfileNotFound) {
			flow.recorder.Increment(EventLoginProfileSetup)
			return LoginResult{Destination: DestinationProfileSetup, Session: session}, nil
		}
		return LoginResult{}, fmt.Errorf("flow.login.profile_lookup: %w", lookupErr)
	}

	flow.recorder.Increment(EventLoginMain)
	return LoginResult{Destination: DestinationMain, Session: session, Profile: &record}, nil
}

// SignOut ends the client's session at the user's request.
func (flow *Flow) SignOut(ctx context.Context, client *identity.Client) error {
	if err := client.SignOut(ctx); err != nil {
		return err
	}
	flow.recorder.Increment(EventUserSignOut)
	return nil
}

// RequestPasswordReset mails a reset link for an existing account.
func (flow *Flow) RequestPasswordReset(ctx context.Context, client *identity.Client, email string) error {
	if err := client.Service().SendPasswordReset(ctx, email); err != nil {
		return flow.refineCredentialError(err, email)
	}
	flow.recorder.Increment(EventPasswordReset)
	return nil
}

// CompleteProfile writes the profile record for the client's current session
// and finishes the first-login bootstrap.
func (flow *Flow) CompleteProfile(ctx context.Context, client *identity.Client, name string, username string, dob string) (profile.Profile, error) {
	session := client.CurrentSession()
	if session == nil {
		return profile.Profile{}, ErrNotSignedIn
	}
	return flow.CompleteProfileFor(ctx, session, name, username, dob)
}

// CompleteProfileFor writes the profile record for an already-resolved
// session.
func (flow *Flow) CompleteProfileFor(ctx context.Context, session *identity.Session, name string, username string, dob string) (profile.Profile, error) {
	if session == nil {
		return profile.Profile{}, ErrNotSignedIn
	}
	record := profile.Profile{
		Name:      name,
		Username:  username,
		DOB:       dob,
		Email:     session.Email,
		CreatedAt: flow.now().UTC(),
	}
	if putErr := flow.profiles.Put(ctx, session.UserID, record); putErr != nil {
		return profile.Profile{}, fmt.Errorf("flow.profile_setup: %w", putErr)
	}
	flow.recorder.Increment(EventProfileCompleted)
	return record, nil
}

// refineCredentialError resolves the ambiguous invalid-credential code the
// way the sign-in screen presents it: a malformed address is reported as an
// email problem, anything else as a credential problem.
func (flow *Flow) refineCredentialError(err error, email string) error {
	if errors.Is(err, identity.ErrInvalidCredential) && !strings.Contains(email, "@") {
		return identity.ErrInvalidEmail
	}
	return err
}

// UserMessage renders a flow or provider error as the notification shown to
// the user. Unmapped errors surface the provider message verbatim.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmailNotVerified):
		return "Please verify your email before logging in."
	case errors.Is(err, ErrDisposableEmail):
		return "Disposable email addresses are not allowed."
	case errors.Is(err, ErrNotSignedIn):
		return "Not logged in"
	case errors.Is(err, identity.ErrInvalidEmail):
		return "Invalid email format."
	case errors.Is(err, identity.ErrUserNotFound):
		return "No account found with this email."
	case errors.Is(err, identity.ErrWrongPassword):
		return "Incorrect password."
	case errors.Is(err, identity.ErrInvalidCredential):
		return "Incorrect email or password."
	case errors.Is(err, identity.ErrEmailInUse):
		return "An account already exists with this email."
	case errors.Is(err, identity.ErrWeakPassword):
		return "Password should be at least 6 characters."
	default:
		return "operation failed: " + err.Error()
	}
}
