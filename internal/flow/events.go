package flow

// EventRecorder increments counters for flow events.
type EventRecorder interface {
	Increment(event string)
}

// Flow event names handed to the EventRecorder.
const (
	EventLoginMain          = "login.main"
	EventLoginProfileSetup  = "login.profile_setup"
	EventLoginUnverified    = "login.unverified"
	EventLoginFailed        = "login.failed"
	EventSignupCreated      = "signup.created"
	EventSignupDenylist     = "signup.denylist_rejected"
	EventVerificationResent = "signup.verification_resent"
	EventProfileCompleted   = "profile.completed"
	EventForcedSignOut      = "signout.forced"
	EventUserSignOut        = "signout.user"
	EventPasswordReset      = "password_reset.requested"
)

type nopRecorder struct{}

func (nopRecorder) Increment(event string) {}
