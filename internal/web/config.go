package web

import (
	"net/http"
	"time"

	"github.com/includeshubhamgenius/skill-share/internal/flow"
)

// ServerConfig configures cookies, token signing, and guard targets.
type ServerConfig struct {
	SigningKey        []byte
	Issuer            string
	CookieDomain      string
	SessionCookieName string
	SessionTTL        time.Duration
	SameSiteMode      http.SameSite
	AllowInsecureHTTP bool
	GuardTargets      flow.GuardTargets
}
