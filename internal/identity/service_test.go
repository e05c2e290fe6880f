package identity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T, config ServiceConfig) (*Service, *MemoryMailer) {
	t.Helper()
	if config.PublicBaseURL == "" {
		config.PublicBaseURL = "https://auth.test"
	}
	mailer := NewMemoryMailer()
	service := NewService(NewMemoryAccountStore(), NewMemoryTokenStore(time.Hour), mailer, zaptest.NewLogger(t), config)
	return service, mailer
}

func TestSignUpAndSignIn(t *testing.T) {
	service, _ := newTestService(t, ServiceConfig{})

	created, signUpErr := service.SignUp(context.Background(), "u@real.com", "secret1")
	if signUpErr != nil {
		t.Fatalf("sign up: %v", signUpErr)
	}
	if created.UserID == "" || created.Email != "u@real.com" {
		t.Fatalf("unexpected session %+v", created)
	}
	if created.EmailVerified {
		t.Fatalf("new account must start unverified")
	}

	session, signInErr := service.SignIn(context.Background(), "u@real.com", "secret1")
	if signInErr != nil {
		t.Fatalf("sign in: %v", signInErr)
	}
	if session.UserID != created.UserID {
		t.Fatalf("expected same account, got %q and %q", session.UserID, created.UserID)
	}
}

func TestSignUpValidation(t *testing.T) {
	service, _ := newTestService(t, ServiceConfig{})

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{name: "malformed email", email: "not-an-email", password: "secret1", want: ErrInvalidEmail},
		{name: "empty email", email: "", password: "secret1", want: ErrInvalidEmail},
		{name: "short password", email: "a@real.com", password: "abc", want: ErrWeakPassword},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if _, err := service.SignUp(context.Background(), test.email, test.password); !errors.Is(err, test.want) {
				t.Fatalf("expected %v, got %v", test.want, err)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	service, _ := newTestService(t, ServiceConfig{})

	if _, err := service.SignUp(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := service.SignUp(context.Background(), "u@real.com", "other12"); !errors.Is(err, ErrEmailInUse) {
		t.Fatalf("expected ErrEmailInUse, got %v", err)
	}
}

func TestSignInDistinguishesFailures(t *testing.T) {
	service, _ := newTestService(t, ServiceConfig{})
	if _, err := service.SignUp(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := service.SignIn(context.Background(), "missing@real.com", "secret1"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := service.SignIn(context.Background(), "u@real.com", "wrong12"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestSignInAmbiguousMode(t *testing.T) {
	service, _ := newTestService(t, ServiceConfig{AmbiguousCredentialErrors: true})
	if _, err := service.SignUp(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if _, err := service.SignIn(context.Background(), "missing@real.com", "secret1"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for unknown user, got %v", err)
	}
	if _, err := service.SignIn(context.Background(), "u@real.com", "wrong12"); !errors.Is(err, ErrInvalidCredential) {
		t.Fatalf("expected ErrInvalidCredential for wrong password, got %v", err)
	}
}

func TestVerificationRoundTrip(t *testing.T) {
	service, mailer := newTestService(t, ServiceConfig{})

	session, signUpErr := service.SignUp(context.Background(), "u@real.com", "secret1")
	if signUpErr != nil {
		t.Fatalf("sign up: %v", signUpErr)
	}
	if err := service.SendVerificationEmail(context.Background(), session); err != nil {
		t.Fatalf("send verification: %v", err)
	}

	sent := mailer.Sent()
	if len(sent) != 1 || sent[0].Kind != "verification" || sent[0].Email != "u@real.com" {
		t.Fatalf("unexpected mail log %+v", sent)
	}
	token := tokenFromLink(t, sent[0].Link)

	if err := service.ConfirmVerification(context.Background(), token); err != nil {
		t.Fatalf("confirm verification: %v", err)
	}

	verified, signInErr := service.SignIn(context.Background(), "u@real.com", "secret1")
	if signInErr != nil {
		t.Fatalf("sign in: %v", signInErr)
	}
	if !verified.EmailVerified {
		t.Fatalf("expected verified session after confirmation")
	}

	if err := service.ConfirmVerification(context.Background(), token); !errors.Is(err, ErrTokenNotFound) {
		t.Fatalf("expected ErrTokenNotFound on reused token, got %v", err)
	}
}

func TestSendVerificationWithoutSession(t *testing.T) {
	service, _ := newTestService(t, ServiceConfig{})
	if err := service.SendVerificationEmail(context.Background(), nil); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}

func TestResendVerification(t *testing.T) {
	service, mailer := newTestService(t, ServiceConfig{})

	if _, err := service.SignUp(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := service.ResendVerification(context.Background(), "u@real.com"); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if err := service.ResendVerification(context.Background(), "missing@real.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	token := tokenFromLink(t, mailer.Sent()[0].Link)
	if err := service.ConfirmVerification(context.Background(), token); err != nil {
		t.Fatalf("confirm verification: %v", err)
	}
	if err := service.ResendVerification(context.Background(), "u@real.com"); !errors.Is(err, ErrAlreadyVerified) {
		t.Fatalf("expected ErrAlreadyVerified, got %v", err)
	}
}

func TestSendPasswordReset(t *testing.T) {
	service, mailer := newTestService(t, ServiceConfig{})
	if _, err := service.SignUp(context.Background(), "u@real.com", "secret1"); err != nil {
		t.Fatalf("sign up: %v", err)
	}

	if err := service.SendPasswordReset(context.Background(), "u@real.com"); err != nil {
		t.Fatalf("send reset: %v", err)
	}
	sent := mailer.Sent()
	if len(sent) != 1 || sent[0].Kind != "password_reset" {
		t.Fatalf("unexpected mail log %+v", sent)
	}

	if err := service.SendPasswordReset(context.Background(), "missing@real.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	index := strings.Index(link, "token=")
	if index < 0 {
		t.Fatalf("no token in link %q", link)
	}
	return link[index+len("token="):]
}
