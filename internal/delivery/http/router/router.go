// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"storefront/internal/delivery/http/middleware"
	"storefront/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

// Metric labels for the rate-limited routes.
const (
	routeRegister = "register"
	routeLogin    = "login"
	routeRefresh  = "refresh"
)

type RouterParams struct {
	fx.In

	UserHandler         *handler.UserHandler
	SessionHandler      *handler.SessionHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
	Registry            *prometheus.Registry `optional:"true"`
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler    *handler.UserHandler
	sessionHandler *handler.SessionHandler
	authMiddleware *middleware.AuthMiddleware
	rateLimit      *middleware.RateLimitMiddleware
	registry       *prometheus.Registry
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:    params.UserHandler,
		sessionHandler: params.SessionHandler,
		authMiddleware: params.AuthMiddleware,
		rateLimit:      params.RateLimitMiddleware,
		registry:       params.Registry,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.HealthCheck)

	if r.registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})))
	}

	userGroup := e.Group("/user")
	{
		userGroup.POST("/register", r.userHandler.RegisterUser, r.rateLimit.Limit(routeRegister))
		userGroup.POST("/login", r.userHandler.Login, r.rateLimit.Limit(routeLogin))
		userGroup.POST("/refresh", r.userHandler.RefreshToken, r.rateLimit.Limit(routeRefresh))
		userGroup.POST("/logout", r.userHandler.Logout)

		// Behind the auth gate
		userGroup.GET("/profile", r.userHandler.GetProfile, r.authMiddleware.Authenticate)
		userGroup.GET("/all", r.userHandler.ListUsers, r.authMiddleware.Authenticate)
		userGroup.GET("/sessions", r.sessionHandler.GetSessions, r.authMiddleware.Authenticate)
		userGroup.POST("/logout-all", r.sessionHandler.LogoutAll, r.authMiddleware.Authenticate)
	}
}
