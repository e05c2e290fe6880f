package identity

import "errors"

var (
	// ErrInvalidEmail indicates the supplied email address is not syntactically valid.
	ErrInvalidEmail = errors.New("identity.invalid_email")
	// ErrUserNotFound indicates no account exists for the supplied email.
	ErrUserNotFound = errors.New("identity.user_not_found")
	// ErrWrongPassword indicates the account exists but the password did not match.
	ErrWrongPassword = errors.New("identity.wrong_password")
	// ErrInvalidCredential collapses user-not-found and wrong-password when the
	// provider runs in enumeration-resistant mode.
	ErrInvalidCredential = errors.New("identity.invalid_credential")
	// ErrEmailInUse indicates an account already exists for the supplied email.
	ErrEmailInUse = errors.New("identity.email_in_use")
	// ErrWeakPassword indicates the password does not meet the minimum length.
	ErrWeakPassword = errors.New("identity.weak_password")
	// ErrNoSession indicates an operation that needs a live session was called without one.
	ErrNoSession = errors.New("identity.no_session")
	// ErrAlreadyVerified indicates a verification resend for an account that is already verified.
	ErrAlreadyVerified = errors.New("identity.already_verified")
)

var (
	// ErrAccountNotFound indicates no account matched the provided identifier.
	ErrAccountNotFound = errors.New("account_store.not_found")
	// ErrAccountExists indicates a create collided with an existing email.
	ErrAccountExists = errors.New("account_store.exists")
)

var (
	// ErrTokenNotFound indicates the one-time token was never issued or already consumed.
	ErrTokenNotFound = errors.New("token_store.not_found")
	// ErrTokenExpired indicates the one-time token expired before consumption.
	ErrTokenExpired = errors.New("token_store.expired")
)
