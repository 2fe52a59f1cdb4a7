package http

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appsvc "gopherauth/internal/app"
	"gopherauth/internal/bootstrap"
	"gopherauth/internal/config"
	"gopherauth/internal/pkg/password"
	"gopherauth/internal/platform/database"
	"gopherauth/internal/ratelimit"
	"gopherauth/internal/repository"
	"gopherauth/internal/session"
	"gopherauth/internal/transport/http/flash"
	"gopherauth/internal/transport/http/handler"
	"gopherauth/internal/transport/http/middleware"
	"gopherauth/web"
)

// Dependencies is everything the engine needs. Limiter may be nil, which
// disables rate limiting.
type Dependencies struct {
	Config   *config.Config
	Auth     *appsvc.AuthService
	Access   *appsvc.AccessService
	Sessions *session.Manager
	Limiter  *ratelimit.Limiter
	Health   *handler.HealthHandler
}

// NewRouter wires services over the resources held by app.
func NewRouter(app *bootstrap.App) (*gin.Engine, error) {
	cfg := app.Config

	userRepo := repository.NewUserRepository(app.DB)
	authService, err := appsvc.NewAuthService(userRepo, password.NewHasher(cfg.Auth.BcryptCost))
	if err != nil {
		return nil, fmt.Errorf("create auth service failed: %w", err)
	}

	checks := map[string]handler.Checker{
		"database": func(ctx context.Context) error { return database.Ping(ctx, app.DB) },
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		var store ratelimit.Store
		if cfg.RateLimit.Backend == config.BackendRedis && app.Redis != nil {
			store = ratelimit.NewRedisStore(app.Redis)
			checks["redis"] = func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() }
		} else {
			store = ratelimit.NewMemoryStore()
		}
		limiter = ratelimit.NewLimiter(store, cfg.RateLimit.KeyPrefix)
	}

	return NewEngine(Dependencies{
		Config:   cfg,
		Auth:     authService,
		Access:   appsvc.NewAccessService(userRepo),
		Sessions: newSessionManager(cfg),
		Limiter:  limiter,
		Health:   handler.NewHealthHandler(cfg.App.Name, cfg.App.Env, app.StartedAt, checks),
	})
}

func newSessionManager(cfg *config.Config) *session.Manager {
	return session.NewManager(session.Options{
		Secret:     cfg.Auth.SessionSecret,
		TTL:        time.Duration(cfg.Auth.SessionTTLMinute) * time.Minute,
		CookieName: cfg.Auth.SessionCookieName,
		Secure:     cfg.Auth.CookieSecure,
	})
}

func NewEngine(deps Dependencies) (*gin.Engine, error) {
	cfg := deps.Config

	defaultRates, err := ratelimit.ParseRates(cfg.RateLimit.Default)
	if err != nil {
		return nil, fmt.Errorf("parse default rate limit failed: %w", err)
	}
	registerRates, err := ratelimit.ParseRates(cfg.RateLimit.Register)
	if err != nil {
		return nil, fmt.Errorf("parse register rate limit failed: %w", err)
	}
	loginRates, err := ratelimit.ParseRates(cfg.RateLimit.Login)
	if err != nil {
		return nil, fmt.Errorf("parse login rate limit failed: %w", err)
	}

	templates, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates failed: %w", err)
	}

	gin.SetMode(cfg.App.GinMode)
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.App.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies failed: %w", err)
	}
	router.SetHTMLTemplate(templates)
	router.Use(
		middleware.RequestID(),
		middleware.RequestLog(),
		middleware.Recovery(),
	)

	if deps.Health != nil {
		router.GET("/healthz", deps.Health.Check)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions)
	pageHandler := handler.NewPageHandler(deps.Access)

	pages := router.Group("/")
	pages.Use(
		middleware.SecurityHeaders(cfg.Auth.CookieSecure),
		flash.Middleware(cfg.Auth.FlashCookieName, cfg.Auth.SessionSecret, cfg.Auth.CookieSecure),
		middleware.RateLimit(deps.Limiter, "global", defaultRates, handler.PathHome, handler.PathLogin),
		middleware.LoadIdentity(deps.Sessions),
	)

	registerLimit := middleware.RateLimit(deps.Limiter, "register", registerRates, handler.PathHome, handler.PathLogin)
	loginLimit := middleware.RateLimit(deps.Limiter, "login", loginRates, handler.PathHome, handler.PathLogin)

	pages.GET(handler.PathHome, pageHandler.Home)
	pages.GET(handler.PathRegister, registerLimit, authHandler.RegisterForm)
	pages.POST(handler.PathRegister, registerLimit, authHandler.Register)
	pages.GET(handler.PathLogin, loginLimit, authHandler.LoginForm)
	pages.POST(handler.PathLogin, loginLimit, authHandler.Login)
	pages.GET(handler.PathLogout, authHandler.Logout)
	pages.GET(handler.PathUsers, pageHandler.Users)

	return router, nil
}
