package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/includeshubhamgenius/skill-share/internal/flow"
	"github.com/includeshubhamgenius/skill-share/internal/identity"
	"github.com/includeshubhamgenius/skill-share/internal/identitypg"
	"github.com/includeshubhamgenius/skill-share/internal/metrics"
	"github.com/includeshubhamgenius/skill-share/internal/profile"
	"github.com/includeshubhamgenius/skill-share/internal/web"
)

var serveHTTP = func(server *http.Server) error {
	return server.ListenAndServe()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "skillstream-auth",
		Short:   "Identity and profile-bootstrap service for the SkillStream app: credential sessions, email verification gate, guarded routes",
		PreRunE: prepareServerConfig,
		RunE:    runServer,
	}

	rootCmd.Flags().String("listen_addr", ":8080", "HTTP listen address")
	rootCmd.Flags().String("cookie_domain", "", "Cookie domain; empty for host-only")
	rootCmd.Flags().String("jwt_signing_key", "", "HS256 signing secret for the session JWT")
	rootCmd.Flags().Duration("session_ttl", 24*time.Hour, "Session cookie TTL")
	rootCmd.Flags().Duration("verification_ttl", 24*time.Hour, "Verification and reset link TTL")
	rootCmd.Flags().String("public_base_url", "http://localhost:8080", "Base URL prefixed to mailed links")
	rootCmd.Flags().String("database_url", "", "Database URL for accounts and profiles (postgres:// or sqlite://; leave empty for in-memory stores)")
	rootCmd.Flags().Bool("dev_insecure_http", false, "Allow insecure HTTP for local dev")
	rootCmd.Flags().Bool("enable_cors", false, "Enable CORS for the cross-origin SPA (required to set SameSite=None cookies)")
	rootCmd.Flags().StringSlice("cors_allowed_origins", []string{}, "Allowed origins when CORS is enabled (required if enable_cors is true)")
	rootCmd.Flags().StringSlice("blocked_email_domains", []string{}, "Disposable email domains rejected at signup (empty for the built-in list)")
	rootCmd.Flags().Bool("ambiguous_credential_errors", false, "Collapse user-not-found and wrong-password into one error")
	rootCmd.Flags().Float64("login_rate_per_min", 10, "Credential submissions allowed per minute per IP")
	rootCmd.Flags().Int("login_burst", 10, "Credential submission burst per IP")

	_ = viper.BindPFlag("listen_addr", rootCmd.Flags().Lookup("listen_addr"))
	_ = viper.BindPFlag("cookie_domain", rootCmd.Flags().Lookup("cookie_domain"))
	_ = viper.BindPFlag("jwt_signing_key", rootCmd.Flags().Lookup("jwt_signing_key"))
	_ = viper.BindPFlag("session_ttl", rootCmd.Flags().Lookup("session_ttl"))
	_ = viper.BindPFlag("verification_ttl", rootCmd.Flags().Lookup("verification_ttl"))
	_ = viper.BindPFlag("public_base_url", rootCmd.Flags().Lookup("public_base_url"))
	_ = viper.BindPFlag("database_url", rootCmd.Flags().Lookup("database_url"))
	_ = viper.BindPFlag("dev_insecure_http", rootCmd.Flags().Lookup("dev_insecure_http"))
	_ = viper.BindPFlag("enable_cors", rootCmd.Flags().Lookup("enable_cors"))
	_ = viper.BindPFlag("cors_allowed_origins", rootCmd.Flags().Lookup("cors_allowed_origins"))
	_ = viper.BindPFlag("blocked_email_domains", rootCmd.Flags().Lookup("blocked_email_domains"))
	_ = viper.BindPFlag("ambiguous_credential_errors", rootCmd.Flags().Lookup("ambiguous_credential_errors"))
	_ = viper.BindPFlag("login_rate_per_min", rootCmd.Flags().Lookup("login_rate_per_min"))
	_ = viper.BindPFlag("login_burst", rootCmd.Flags().Lookup("login_burst"))

	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()

	return rootCmd
}

const (
	sessionCookieName = "skillstream_session"
	sessionIssuer     = "skillstream-auth"

	configCodeMissingJWTSigningKey    = "config.missing_jwt_signing_key"
	configCodeInvalidSessionTTL       = "config.invalid_session_ttl"
	configCodeInvalidVerificationTTL  = "config.invalid_verification_ttl"
	configCodeInvalidPublicBaseURL    = "config.invalid_public_base_url"
	configCodeUninitializedServerConf = "config.uninitialized_server_config"
)

type contextKey string

const serverConfigContextKey contextKey = "serverConfig"

type serverSettings struct {
	JWTSigningKey   []byte
	SessionTTL      time.Duration
	VerificationTTL time.Duration
	PublicBaseURL   string
	CookieDomain    string
}

func prepareServerConfig(command *cobra.Command, arguments []string) error {
	settings, loadErr := loadServerSettings()
	if loadErr != nil {
		return loadErr
	}
	existingContext := command.Context()
	if existingContext == nil {
		existingContext = context.Background()
	}
	command.SetContext(context.WithValue(existingContext, serverConfigContextKey, settings))
	return nil
}

func configError(code, message string) error {
	return fmt.Errorf("%s: %s", code, message)
}

func loadServerSettings() (serverSettings, error) {
	jwtSigningKey := viper.GetString("jwt_signing_key")
	if jwtSigningKey == "" {
		return serverSettings{}, configError(configCodeMissingJWTSigningKey, "jwt_signing_key must be provided")
	}

	sessionTTL := viper.GetDuration("session_ttl")
	if sessionTTL <= 0 {
		return serverSettings{}, configError(configCodeInvalidSessionTTL, "session_ttl must be greater than zero")
	}

	verificationTTL := viper.GetDuration("verification_ttl")
	if verificationTTL <= 0 {
		return serverSettings{}, configError(configCodeInvalidVerificationTTL, "verification_ttl must be greater than zero")
	}

	publicBaseURL := strings.TrimRight(viper.GetString("public_base_url"), "/")
	if parsed, parseErr := url.Parse(publicBaseURL); parseErr != nil || parsed.Scheme == "" || parsed.Host == "" {
		return serverSettings{}, configError(configCodeInvalidPublicBaseURL, "public_base_url must be an absolute URL")
	}

	return serverSettings{
		JWTSigningKey:   []byte(jwtSigningKey),
		SessionTTL:      sessionTTL,
		VerificationTTL: verificationTTL,
		PublicBaseURL:   publicBaseURL,
		CookieDomain:    viper.GetString("cookie_domain"),
	}, nil
}

func runServer(command *cobra.Command, arguments []string) error {
	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	commandContext := command.Context()
	var contextValue any
	if commandContext != nil {
		contextValue = commandContext.Value(serverConfigContextKey)
	}
	settings, ok := contextValue.(serverSettings)
	if !ok {
		return configError(configCodeUninitializedServerConf, "server configuration not prepared; PreRunE must execute before RunE")
	}

	listenAddr := viper.GetString("listen_addr")
	devInsecureHTTP := viper.GetBool("dev_insecure_http")
	databaseURL := viper.GetString("database_url")
	enableCORS := viper.GetBool("enable_cors")
	corsAllowedOrigins := viper.GetStringSlice("cors_allowed_origins")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(zapLoggerMiddleware(logger))

	if enableCORS {
		corsMiddleware, corsErr := web.ConfigureCORS(logger, corsAllowedOrigins)
		if corsErr != nil {
			return corsErr
		}
		router.Use(corsMiddleware)
	}

	accounts, profiles, tokens, storesErr := buildStores(command.Context(), logger, databaseURL, settings.VerificationTTL)
	if storesErr != nil {
		return storesErr
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	router.Use(loginLatencyMiddleware(collector))
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))

	service := identity.NewService(accounts, tokens, identity.NewLogMailer(logger), logger, identity.ServiceConfig{
		PublicBaseURL:             settings.PublicBaseURL,
		AmbiguousCredentialErrors: viper.GetBool("ambiguous_credential_errors"),
	})

	flows := flow.New(profiles, logger, collector, flow.Config{
		BlockedEmailDomains: viper.GetStringSlice("blocked_email_domains"),
	})

	sameSiteMode := http.SameSiteStrictMode
	if enableCORS {
		sameSiteMode = http.SameSiteNoneMode
	}
	webConfig := web.ServerConfig{
		SigningKey:        settings.JWTSigningKey,
		Issuer:            sessionIssuer,
		CookieDomain:      settings.CookieDomain,
		SessionCookieName: sessionCookieName,
		SessionTTL:        settings.SessionTTL,
		SameSiteMode:      sameSiteMode,
		AllowInsecureHTTP: devInsecureHTTP,
		GuardTargets:      flow.DefaultGuardTargets(),
	}

	limiter := web.NewRateLimiter(web.RateLimiterConfig{
		Rate:            rate.Limit(viper.GetFloat64("login_rate_per_min") / 60.0),
		Burst:           viper.GetInt("login_burst"),
		CleanupInterval: 5 * time.Minute,
	})
	defer limiter.Stop()

	web.MountRoutes(router, webConfig, flows, service, profiles, limiter, logger)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	defer shutdownCancel()

	go func() {
		stopSignals := make(chan os.Signal, 1)
		signal.Notify(stopSignals, syscall.SIGINT, syscall.SIGTERM)
		<-stopSignals
		graceCtx, graceCancel := context.WithTimeout(shutdownCtx, 10*time.Second)
		defer graceCancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", listenAddr))
	if err := serveHTTP(server); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen error: %w", err)
	}
	return nil
}

func buildStores(ctx context.Context, logger *zap.Logger, databaseURL string, verificationTTL time.Duration) (identity.AccountStore, profile.Store, identity.TokenStore, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.TrimSpace(databaseURL) == "" {
		logger.Info("using in-memory stores")
		return identity.NewMemoryAccountStore(), profile.NewMemoryStore(), identity.NewMemoryTokenStore(verificationTTL), nil
	}

	accounts, accountsErr := identity.NewDatabaseAccountStore(ctx, databaseURL)
	if accountsErr != nil {
		return nil, nil, nil, accountsErr
	}
	profiles, profilesErr := profile.NewDatabaseStore(ctx, databaseURL)
	if profilesErr != nil {
		return nil, nil, nil, profilesErr
	}
	logger.Info("using persistent stores", zap.String("driver", accounts.Driver()))

	var tokens identity.TokenStore = identity.NewMemoryTokenStore(verificationTTL)
	if accounts.Driver() == "postgres" {
		pool, poolErr := identitypg.BuildPool(ctx, databaseURL)
		if poolErr != nil {
			return nil, nil, nil, poolErr
		}
		if schemaErr := identitypg.EnsureSchema(ctx, pool); schemaErr != nil {
			return nil, nil, nil, schemaErr
		}
		tokens = identitypg.NewPostgresTokenStore(pool, verificationTTL)
		logger.Info("using postgres one-time token store")
	}
	return accounts, profiles, tokens, nil
}

func loginLatencyMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		if contextGin.Request.Method != http.MethodPost || contextGin.Request.URL.Path != "/auth/login" {
			contextGin.Next()
			return
		}
		startTime := time.Now()
		contextGin.Next()
		collector.ObserveLoginLatency(time.Since(startTime))
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		startTime := time.Now()
		contextGin.Next()
		duration := time.Since(startTime)
		logger.Info("http",
			zap.String("method", contextGin.Request.Method),
			zap.String("path", contextGin.Request.URL.Path),
			zap.Int("status", contextGin.Writer.Status()),
			zap.String("ip", contextGin.ClientIP()),
			zap.Duration("elapsed", duration),
		)
	}
}
