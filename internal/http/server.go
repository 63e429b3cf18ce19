package http

import (
	"strings"

	"github.com/goliatone/go-portal/internal/authz"
	"github.com/goliatone/go-portal/internal/contentsync"
	"github.com/goliatone/go-portal/internal/logging"
	"github.com/goliatone/go-portal/internal/runtimeconfig"
	"github.com/goliatone/go-portal/pkg/interfaces"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionRoleKey   = "role"
	sessionUserIDKey = "user_id"
	defaultSession   = "portal_session"
	maxUploadBytes   = 10 << 20
)

// API serves the portal JSON endpoints.
type API struct {
	sync        *contentsync.Service
	logger      interfaces.Logger
	sessionName string
}

// Option configures the API.
type Option func(*API)

func WithLogger(logger interfaces.Logger) Option {
	return func(api *API) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// WithSessionName sets the cookie session read for the caller's role.
func WithSessionName(name string) Option {
	return func(api *API) {
		if strings.TrimSpace(name) != "" {
			api.sessionName = name
		}
	}
}

func NewAPI(sync *contentsync.Service, opts ...Option) *API {
	api := &API{
		sync:        sync,
		logger:      logging.NoOp(),
		sessionName: defaultSession,
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}

// NewServer builds an echo instance with recovery, request logging, the
// session store and every API route under /api.
func NewServer(cfg runtimeconfig.HTTPConfig, api *API) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		MaxAge:   86400 * 7,
	}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			api.logger.Debug("http.request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency.String(),
			)
			return nil
		},
	}))
	e.Use(session.Middleware(store))
	e.Use(api.principalMiddleware)

	api.Register(e.Group("/api"))
	return e
}

// Register mounts the routes on g.
func (api *API) Register(g *echo.Group) {
	g.GET("/settings", api.handleSettingsGet)
	g.PUT("/settings", api.handleSettingsUpdate)
	g.GET("/translations", api.handleTranslations)
	g.POST("/translations/setup", api.handleTranslationsSetup)
	g.POST("/media", api.handleMediaUpload, middleware.BodyLimit("10M"))

	g.GET("/:kind", api.handleList)
	g.POST("/:kind", api.handleCreate)
	g.PUT("/:kind/order", api.handleReorder)
	g.GET("/:kind/:ref", api.handleGet)
	g.PUT("/:kind/:id", api.handleUpdate)
	g.DELETE("/:kind/:id", api.handleDelete)
	g.POST("/:kind/:id/move-up", api.handleMoveUp)
	g.POST("/:kind/:id/move-down", api.handleMoveDown)
	g.POST("/:kind/:id/drag", api.handleDrag)
}

// principalMiddleware copies the session role onto the request context.
// Requests without a readable session are anonymous.
func (api *API) principalMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var principal interfaces.Principal
		if sess, err := session.Get(api.sessionName, c); err == nil {
			principal.Role, _ = sess.Values[sessionRoleKey].(string)
			principal.ID, _ = sess.Values[sessionUserIDKey].(string)
		}
		req := c.Request()
		c.SetRequest(req.WithContext(authz.WithPrincipal(req.Context(), principal)))
		return next(c)
	}
}

func principal(c echo.Context) interfaces.Principal {
	return authz.PrincipalFrom(c.Request().Context())
}
