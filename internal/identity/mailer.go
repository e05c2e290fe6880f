package identity

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Mailer delivers verification and reset links to an account's email address.
type Mailer interface {
	SendVerification(ctx context.Context, email string, link string) error
	SendPasswordReset(ctx context.Context, email string, link string) error
}

// LogMailer writes outgoing mail to the log instead of delivering it.
// Intended for local runs without an SMTP relay.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer constructs a LogMailer.
func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// SendVerification logs the verification link.
func (mailer *LogMailer) SendVerification(ctx context.Context, email string, link string) error {
	mailer.logger.Info("verification mail",
		zap.String("code", "mailer.verification"),
		zap.String("email", email),
		zap.String("link", link),
	)
	return nil
}

// SendPasswordReset logs the password reset link.
func (mailer *LogMailer) SendPasswordReset(ctx context.Context, email string, link string) error {
	mailer.logger.Info("password reset mail",
		zap.String("code", "mailer.password_reset"),
		zap.String("email", email),
		zap.String("link", link),
	)
	return nil
}

// SentMail is one captured delivery.
type SentMail struct {
	Email string
	Link  string
	Kind  string
}

// MemoryMailer captures outgoing mail for tests.
type MemoryMailer struct {
	mutex sync.Mutex
	sent  []SentMail
}

// NewMemoryMailer constructs an empty MemoryMailer.
func NewMemoryMailer() *MemoryMailer {
	return &MemoryMailer{}
}

// SendVerification records a verification delivery.
func (mailer *MemoryMailer) SendVerification(ctx context.Context, email string, link string) error {
	mailer.record(SentMail{Email: email, Link: link, Kind: "verification"})
	return nil
}

// SendPasswordReset records a reset delivery.
func (mailer *MemoryMailer) SendPasswordReset(ctx context.Context, email string, link string) error {
	mailer.record(SentMail{Email: email, Link: link, Kind: "password_reset"})
	return nil
}

// Sent returns a copy of all captured deliveries.
func (mailer *MemoryMailer) Sent() []SentMail {
	mailer.mutex.Lock()
	defer mailer.mutex.Unlock()
	clone := make([]SentMail, len(mailer.sent))
	copy(clone, mailer.sent)
	return clone
}

func (mailer *MemoryMailer) record(mail SentMail) {
	mailer.mutex.Lock()
	defer mailer.mutex.Unlock()
	mailer.sent = append(mailer.sent, mail)
}
