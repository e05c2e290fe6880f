package flow

// Policy selects which sessions a guarded screen admits. One configurable
// guard replaces the two near-duplicate wrappers the product started with.
type Policy int

const (
	// RequireSession admits authenticated clients and redirects anonymous
	// ones to the sign-in screen. It deliberately does not check email
	// verification or profile existence; the login bootstrap owns those.
	RequireSession Policy = iota
	// RequireNoSession admits anonymous clients and redirects authenticated
	// ones to the main screen. An unverified session still counts as
	// authenticated here.
	RequireNoSession
)

// DecisionKind classifies a guard's verdict.
type DecisionKind int

const (
	// DecisionWait means the resolution is still pending; show a neutral
	// placeholder and do not redirect.
	DecisionWait DecisionKind = iota
	// DecisionProceed means the wrapped screen renders unconditionally.
	DecisionProceed
	// DecisionRedirect means navigation moves to Decision.Target.
	DecisionRedirect
)

// Decision is a guard's verdict for one resolution.
type Decision struct {
	Kind   DecisionKind
	Target string
}

// GuardTargets names the two redirect destinations.
type GuardTargets struct {
	SignInPath string
	MainPath   string
}

// DefaultGuardTargets mirrors the product's route table.
func DefaultGuardTargets() GuardTargets {
	return GuardTargets{SignInPath: "/login", MainPath: "/daily"}
}

// Evaluate applies a policy to a resolution. Guards sharing a resolution
// always agree on whether a session exists, whatever their policy.
func Evaluate(policy Policy, resolution Resolution, targets GuardTargets) Decision {
	if resolution == ResolutionUnresolved {
		return Decision{Kind: DecisionWait}
	}
	authenticated := resolution == ResolutionAuthenticated
	switch policy {
	case RequireNoSession:
		if authenticated {
			return Decision{Kind: DecisionRedirect, Target: targets.MainPath}
		}
		return Decision{Kind: DecisionProceed}
	default:
		if authenticated {
			return Decision{Kind: DecisionProceed}
		}
		return Decision{Kind: DecisionRedirect, Target: targets.SignInPath}
	}
}
