package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/includeshubhamgenius/skill-share/internal/flow"
	"github.com/includeshubhamgenius/skill-share/internal/identity"
	"github.com/includeshubhamgenius/skill-share/internal/profile"
)

// MountRoutes registers the credential endpoints under /auth and the
// session-guarded endpoints under /api.
func MountRoutes(router gin.IRouter, configuration ServerConfig, flows *flow.Flow, service *identity.Service, profiles profile.Store, limiter *RateLimiter, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	authGroup := router.Group("/auth")

	// Credential submissions are public-only: an authenticated client is
	// bounced to the main screen, and attempts are throttled per IP.
	credentialGroup := authGroup.Group("")
	credentialGroup.Use(Guard(configuration, flow.RequireNoSession))
	if limiter != nil {
		credentialGroup.Use(limiter.Middleware())
	}

	credentialGroup.POST("/signup", func(contextGin *gin.Context) {
		var inbound struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil || strings.TrimSpace(inbound.Email) == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		if !configuration.AllowInsecureHTTP && !isHTTPS(contextGin.Request) {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "https_required"})
			return
		}

		pending, registerErr := flows.Register(contextGin, service.NewClient(), inbound.Email, inbound.Password)
		if registerErr != nil {
			respondFlowError(contextGin, logger, registerErr)
			return
		}
		contextGin.JSON(http.StatusCreated, gin.H{
			"status": "pending_verification",
			"email":  pending.Email,
		})
	})

	credentialGroup.POST("/login", func(contextGin *gin.Context) {
		var inbound struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil || strings.TrimSpace(inbound.Email) == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		if !configuration.AllowInsecureHTTP && !isHTTPS(contextGin.Request) {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "https_required"})
			return
		}

		result, loginErr := flows.SignIn(contextGin, service.NewClient(), inbound.Email, inbound.Password)
		if loginErr != nil {
			respondFlowError(contextGin, logger, loginErr)
			return
		}

		sessionToken, sessionExpiresAt, mintErr := MintSessionToken(result.Session, configuration.Issuer, configuration.SigningKey, configuration.SessionTTL)
		if mintErr != nil {
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		writeSessionCookie(contextGin, configuration, sessionToken, sessionExpiresAt)

		outbound := gin.H{
			"destination": destinationLabel(result.Destination),
			"user": gin.H{
				"user_id":   result.Session.UserID,
				"email":     result.Session.Email,
				"photo_url": result.Session.PhotoURL,
			},
		}
		if result.Profile != nil {
			outbound["profile"] = profilePayload(*result.Profile)
		}
		contextGin.JSON(http.StatusOK, outbound)
	})

	credentialGroup.POST("/reset", func(contextGin *gin.Context) {
		var inbound struct {
			Email string `json:"email"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil || strings.TrimSpace(inbound.Email) == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		if resetErr := flows.RequestPasswordReset(contextGin, service.NewClient(), inbound.Email); resetErr != nil {
			respondFlowError(contextGin, logger, resetErr)
			return
		}
		contextGin.Status(http.StatusNoContent)
	})

	credentialGroup.POST("/resend", func(contextGin *gin.Context) {
		var inbound struct {
			Email string `json:"email"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil || strings.TrimSpace(inbound.Email) == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		if resendErr := service.ResendVerification(contextGin, inbound.Email); resendErr != nil {
			respondFlowError(contextGin, logger, resendErr)
			return
		}
		contextGin.Status(http.StatusNoContent)
	})

	authGroup.GET("/verify", func(contextGin *gin.Context) {
		token := strings.TrimSpace(contextGin.Query("token"))
		if token == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing_token"})
			return
		}
		if confirmErr := service.ConfirmVerification(contextGin, token); confirmErr != nil {
			respondFlowError(contextGin, logger, confirmErr)
			return
		}
		contextGin.JSON(http.StatusOK, gin.H{"status": "verified"})
	})

	authGroup.POST("/logout", func(contextGin *gin.Context) {
		clearSessionCookie(contextGin, configuration)
		_ = flows.SignOut(contextGin, service.NewClient())
		contextGin.Status(http.StatusNoContent)
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(Guard(configuration, flow.RequireSession))
	apiGroup.GET("/me", HandleMe(service, logger))
	apiGroup.GET("/profile", HandleGetProfile(profiles, logger))
	apiGroup.POST("/profile", HandleCompleteProfile(flows, service, logger))
}

// HandleMe resolves the authenticated account's current session view.
func HandleMe(service *identity.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		claims := sessionClaims(contextGin)
		if claims == nil || claims.UserID == "" {
			logger.Warn("missing session claims on context",
				zap.String("code", "api.me.missing_claims"))
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		session, lookupErr := service.LookupSession(contextGin, claims.UserID)
		if lookupErr != nil {
			if errors.Is(lookupErr, identity.ErrUserNotFound) {
				contextGin.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			logger.Error("session lookup error",
				zap.String("code", "api.me.lookup_error"),
				zap.String("user_id", claims.UserID),
				zap.Error(lookupErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		contextGin.JSON(http.StatusOK, gin.H{
			"user_id":        session.UserID,
			"email":          session.Email,
			"email_verified": session.EmailVerified,
			"photo_url":      session.PhotoURL,
		})
	}
}

// HandleGetProfile returns the caller's profile record, 404 when the
// first-login bootstrap has not written one yet.
func HandleGetProfile(profiles profile.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		claims := sessionClaims(contextGin)
		if claims == nil || claims.UserID == "" {
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		record, getErr := profiles.Get(contextGin, claims.UserID)
		if getErr != nil {
			if errors.Is(getErr, profile.ErrProfileNotFound) {
				contextGin.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "profile.not_found"})
				return
			}
			logger.Error("profile lookup error",
				zap.String("code", "api.profile.lookup_error"),
				zap.String("user_id", claims.UserID),
				zap.Error(getErr))
			contextGin.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		contextGin.JSON(http.StatusOK, profilePayload(record))
	}
}

// HandleCompleteProfile writes the caller's profile record.
func HandleCompleteProfile(flows *flow.Flow, service *identity.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		claims := sessionClaims(contextGin)
		if claims == nil || claims.UserID == "" {
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		var inbound struct {
			Name     string `json:"name"`
			Username string `json:"username"`
			DOB      string `json:"dob"`
		}
		if err := contextGin.BindJSON(&inbound); err != nil || strings.TrimSpace(inbound.Name) == "" || strings.TrimSpace(inbound.Username) == "" {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		session, lookupErr := service.LookupSession(contextGin, claims.UserID)
		if lookupErr != nil {
			contextGin.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		record, setupErr := flows.CompleteProfileFor(contextGin, session, inbound.Name, inbound.Username, inbound.DOB)
		if setupErr != nil {
			respondFlowError(contextGin, logger, setupErr)
			return
		}
		contextGin.JSON(http.StatusOK, profilePayload(record))
	}
}

func profilePayload(record profile.Profile) gin.H {
	return gin.H{
		"name":       record.Name,
		"username":   record.Username,
		"dob":        record.DOB,
		"email":      record.Email,
		"created_at": record.CreatedAt,
	}
}

func destinationLabel(destination flow.Destination) string {
	if destination == flow.DestinationProfileSetup {
		return "profile_setup"
	}
	return "main"
}

func respondFlowError(contextGin *gin.Context, logger *zap.Logger, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("unexpected flow error",
			zap.String("code", "web.flow_error"),
			zap.Error(err))
	}
	contextGin.AbortWithStatusJSON(status, gin.H{
		"error":   errorCode(err),
		"message": flow.UserMessage(err),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, flow.ErrDisposableEmail),
		errors.Is(err, identity.ErrTokenNotFound),
		errors.Is(err, identity.ErrTokenExpired):
		return http.StatusBadRequest
	case errors.Is(err, identity.ErrUserNotFound),
		errors.Is(err, identity.ErrWrongPassword),
		errors.Is(err, identity.ErrInvalidCredential),
		errors.Is(err, flow.ErrNotSignedIn):
		return http.StatusUnauthorized
	case errors.Is(err, flow.ErrEmailNotVerified):
		return http.StatusForbidden
	case errors.Is(err, identity.ErrEmailInUse),
		errors.Is(err, identity.ErrAlreadyVerified):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorCode(err error) string {
	for _, sentinel := range []error{
		identity.ErrInvalidEmail,
		identity.ErrWeakPassword,
		identity.ErrUserNotFound,
		identity.ErrWrongPassword,
		identity.ErrInvalidCredential,
		identity.ErrEmailInUse,
		identity.ErrAlreadyVerified,
		identity.ErrTokenNotFound,
		identity.ErrTokenExpired,
		flow.ErrDisposableEmail,
		flow.ErrEmailNotVerified,
		flow.ErrNotSignedIn,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal"
}
