package flow

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/includeshubhamgenius/skill-share/internal/identity"
)

// Disposable-address providers rejected before any identity call. The check
// is a client-side convenience, not authoritative.
var defaultBlockedDomains = []string{
	"mailinator.com",
	"guerrillamail.com",
	"10minutemail.com",
	"tempmail.com",
	"yopmail.com",
	"trashmail.com",
	"sharklasers.com",
	"getnada.com",
	"dispostable.com",
	"maildrop.cc",
}

// PendingVerification is the post-registration state: the account exists,
// the verification mail is out, and the session is already torn down. It
// retains the signed-out session reference in memory only, solely so the
// verification mail can be re-requested; the reference does not survive a
// reload, and resend is unavailable after one. Accepted limitation.
type PendingVerification struct {
	Email string

	session  *identity.Session
	service  *identity.Service
	recorder EventRecorder
}

// Resend requests another verification mail against the retained session
// reference. Safe to repeat; it never creates a second account or session.
func (pending *PendingVerification) Resend(ctx context.Context) error {
	if err := pending.service.SendVerificationEmail(ctx, pending.session); err != nil {
		return err
	}
	pending.recorder.Increment(EventVerificationResent)
	return nil
}

// Register runs the registration gate: denylist check, account creation,
// verification mail, then an immediate forced sign-out so the unverified
// session can never reach protected content.
func (flow *Flow) Register(ctx context.Context, client *identity.Client, email string, password string) (*PendingVerification, error) {
	if flow.isBlockedDomain(email) {
		flow.recorder.Increment(EventSignupDenylist)
		return nil, ErrDisposableEmail
	}

	session, signUpErr := client.SignUp(ctx, email, password)
	if signUpErr != nil {
		return nil, signUpErr
	}

	if sendErr := client.Service().SendVerificationEmail(ctx, session); sendErr != nil {
		_ = client.SignOut(ctx)
		return nil, fmt.Errorf("flow.register.send_verification: %w", sendErr)
	}

	_ = client.SignOut(ctx)
	flow.recorder.Increment(EventForcedSignOut)
	flow.recorder.Increment(EventSignupCreated)
	flow.logger.Info("registration pending verification",
		zap.String("code", "flow.register.pending"),
		zap.String("account_id", session.UserID),
	)

	return &PendingVerification{
		Email:    session.Email,
		session:  session,
		service:  client.Service(),
		recorder: flow.recorder,
	}, nil
}

func (flow *Flow) isBlockedDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	_, blocked := flow.blockedDomains[domain]
	return blocked
}
