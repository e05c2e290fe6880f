package identity

// Session is the provider's record of an authenticated user in one client
// context. It is created on sign-in or sign-up, destroyed on sign-out, and
// only ever referenced by the application, never mutated.
type Session struct {
	UserID        string
	Email         string
	EmailVerified bool
	PhotoURL      string
}
