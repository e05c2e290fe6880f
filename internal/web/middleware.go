package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/includeshubhamgenius/skill-share/internal/flow"
)

// ClaimsContextKey is where the guard stores validated session claims.
const ClaimsContextKey = "session_claims"

// Guard applies one navigation policy to every request. The per-request
// resolution is derived from the session cookie, so it is never unresolved
// here; the wait branch exists for contract parity with the client guard.
func Guard(configuration ServerConfig, policy flow.Policy) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		claims, resolution := resolveRequest(contextGin, configuration)
		decision := flow.Evaluate(policy, resolution, configuration.GuardTargets)
		switch decision.Kind {
		case flow.DecisionProceed:
			if claims != nil {
				contextGin.Set(ClaimsContextKey, claims)
			}
			contextGin.Next()
		case flow.DecisionRedirect:
			if policy == flow.RequireNoSession {
				contextGin.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":    "auth.already_authenticated",
					"redirect": decision.Target,
				})
				return
			}
			contextGin.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "auth.session_required",
				"redirect": decision.Target,
			})
		default:
			contextGin.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}

func resolveRequest(contextGin *gin.Context, configuration ServerConfig) (*SessionClaims, flow.Resolution) {
	sessionCookie, cookieErr := contextGin.Request.Cookie(configuration.SessionCookieName)
	if cookieErr != nil || sessionCookie == nil || strings.TrimSpace(sessionCookie.Value) == "" {
		return nil, flow.ResolutionAnonymous
	}
	claims, parseErr := ParseSessionToken(sessionCookie.Value, configuration.Issuer, configuration.SigningKey)
	if parseErr != nil {
		return nil, flow.ResolutionAnonymous
	}
	return claims, flow.ResolutionAuthenticated
}

func sessionClaims(contextGin *gin.Context) *SessionClaims {
	claimsValue, found := contextGin.Get(ClaimsContextKey)
	if !found {
		return nil
	}
	claims, ok := claimsValue.(*SessionClaims)
	if !ok {
		return nil
	}
	return claims
}
