package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const minPasswordLength = 6

// ServiceConfig configures the credential identity provider.
type ServiceConfig struct {
	// PublicBaseURL prefixes verification and reset links placed in mail.
	PublicBaseURL string
	// AmbiguousCredentialErrors collapses user-not-found and wrong-password
	// into ErrInvalidCredential, resisting account enumeration.
	AmbiguousCredentialErrors bool
}

// Service is the credential-based identity provider. It owns accounts,
// one-time tokens, and outgoing verification mail. Sessions handed out by
// SignIn and SignUp are plain values; per-client session lifecycle lives on
// Client.
type Service struct {
	accounts AccountStore
	tokens   TokenStore
	mailer   Mailer
	logger   *zap.Logger
	config   ServiceConfig
	now      func() time.Time
}

// NewService constructs the identity provider.
func NewService(accounts AccountStore, tokens TokenStore, mailer Mailer, logger *zap.Logger, config ServiceConfig) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		mailer:   mailer,
		logger:   logger,
		config:   config,
		now:      time.Now,
	}
}

// SignUp creates a new unverified account and returns its session.
func (service *Service) SignUp(ctx context.Context, email string, password string) (*Session, error) {
	normalized, emailErr := normalizeEmail(email)
	if emailErr != nil {
		return nil, emailErr
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	passwordHash, hashErr := HashPassword(password)
	if hashErr != nil {
		return nil, fmt.Errorf("identity.sign_up: %w", hashErr)
	}
	account := Account{
		ID:            uuid.NewString(),
		Email:         normalized,
		PasswordHash:  passwordHash,
		EmailVerified: false,
		CreatedAt:     service.now().UTC(),
	}
	if createErr := service.accounts.Create(ctx, account); createErr != nil {
		if errors.Is(createErr, ErrAccountExists) {
			return nil, ErrEmailInUse
		}
		return nil, fmt.Errorf("identity.sign_up: %w", createErr)
	}
	service.logger.Info("account created",
		zap.String("code", "identity.sign_up"),
		zap.String("account_id", account.ID),
	)
	return sessionFromAccount(account), nil
}

// SignIn verifies credentials and returns the matching session.
func (service *Service) SignIn(ctx context.Context, email string, password string) (*Session, error) {
	normalized, emailErr := normalizeEmail(email)
	if emailErr != nil {
		return nil, emailErr
	}
	account, lookupErr := service.accounts.GetByEmail(ctx, normalized)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrAccountNotFound) {
			return nil, service.credentialError(ErrUserNotFound)
		}
		return nil, fmt.Errorf("identity.sign_in: %w", lookupErr)
	}
	matches, verifyErr := VerifyPassword(password, account.PasswordHash)
	if verifyErr != nil {
		return nil, fmt.Errorf("identity.sign_in: %w", verifyErr)
	}
	if !matches {
		return nil, service.credentialError(ErrWrongPassword)
	}
	return sessionFromAccount(account), nil
}

// SendVerificationEmail issues a one-time token for the session's account and
// mails the confirmation link. Repeatable: each call issues a fresh token.
func (service *Service) SendVerificationEmail(ctx context.Context, session *Session) error {
	if session == nil {
		return ErrNoSession
	}
	token, issueErr := service.tokens.Issue(ctx, session.UserID, TokenPurposeVerifyEmail)
	if issueErr != nil {
		return fmt.Errorf("identity.send_verification: %w", issueErr)
	}
	link := service.config.PublicBaseURL + "/auth/verify?token=" + token
	if sendErr := service.mailer.SendVerification(ctx, session.Email, link); sendErr != nil {
		return fmt.Errorf("identity.send_verification: %w", sendErr)
	}
	return nil
}

// ResendVerification mails a fresh verification link to an existing,
// still-unverified account. Stateless counterpart to SendVerificationEmail
// for callers that no longer hold the registration-time session reference.
func (service *Service) ResendVerification(ctx context.Context, email string) error {
	normalized, emailErr := normalizeEmail(email)
	if emailErr != nil {
		return emailErr
	}
	account, lookupErr := service.accounts.GetByEmail(ctx, normalized)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrAccountNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("identity.resend_verification: %w", lookupErr)
	}
	if account.EmailVerified {
		return ErrAlreadyVerified
	}
	return service.SendVerificationEmail(ctx, sessionFromAccount(account))
}

// ConfirmVerification consumes a mailed token and marks the account verified.
func (service *Service) ConfirmVerification(ctx context.Context, token string) error {
	accountID, consumeErr := service.tokens.Consume(ctx, token, TokenPurposeVerifyEmail)
	if consumeErr != nil {
		return consumeErr
	}
	if markErr := service.accounts.MarkVerified(ctx, accountID); markErr != nil {
		return fmt.Errorf("identity.confirm_verification: %w", markErr)
	}
	service.logger.Info("email verified",
		zap.String("code", "identity.verified"),
		zap.String("account_id", accountID),
	)
	return nil
}

// SendPasswordReset mails a reset link to an existing account.
func (service *Service) SendPasswordReset(ctx context.Context, email string) error {
	normalized, emailErr := normalizeEmail(email)
	if emailErr != nil {
		return emailErr
	}
	account, lookupErr := service.accounts.GetByEmail(ctx, normalized)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrAccountNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("identity.send_password_reset: %w", lookupErr)
	}
	token, issueErr := service.tokens.Issue(ctx, account.ID, TokenPurposePasswordReset)
	if issueErr != nil {
		return fmt.Errorf("identity.send_password_reset: %w", issueErr)
	}
	link := service.config.PublicBaseURL + "/auth/reset?token=" + token
	if sendErr := service.mailer.SendPasswordReset(ctx, account.Email, link); sendErr != nil {
		return fmt.Errorf("identity.send_password_reset: %w", sendErr)
	}
	return nil
}

// LookupSession rebuilds the session view of an account by ID.
func (service *Service) LookupSession(ctx context.Context, accountID string) (*Session, error) {
	account, lookupErr := service.accounts.GetByID(ctx, accountID)
	if lookupErr != nil {
		if errors.Is(lookupErr, ErrAccountNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("identity.lookup_session: %w", lookupErr)
	}
	return sessionFromAccount(account), nil
}

func (service *Service) credentialError(specific error) error {
	if service.config.AmbiguousCredentialErrors {
		return ErrInvalidCredential
	}
	return specific
}

func sessionFromAccount(account Account) *Session {
	return &Session{
		UserID:        account.ID,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		PhotoURL:      account.PhotoURL,
	}
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	parsed, parseErr := mail.ParseAddress(trimmed)
	if parseErr != nil || parsed.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(trimmed), nil
}
