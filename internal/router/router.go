// Package router registers the HTTP routes and their middleware chains.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/yubin-dev/roomescape/internal/handler"
	"github.com/yubin-dev/roomescape/internal/middleware"
	"github.com/yubin-dev/roomescape/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Signup, login and
// refresh are open; check and logout need a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)

	auth := e.Group("/v1/auth")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/check", a.Check)
	auth.POST("/logout", a.Logout)
}

// RegisterPublic registers the unauthenticated catalog endpoints so guests
// can browse themes, time slots and availability before signing up. The
// response cache is applied here and nowhere else: every other GET route
// returns per-member data that must never be replayed across accounts.
func RegisterPublic(e *echo.Echo, th *handler.ThemeHandler, ts *handler.TimeSlotHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/themes", th.List)
	g.GET("/themes/popular", th.Popular)
	g.GET("/times", ts.List)
	g.GET("/times/available", ts.Available)
}

// RegisterMember registers the booking endpoints available to any
// authenticated member.
func RegisterMember(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1/reservations")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.POST("", r.Create)
	g.GET("/mine", r.Mine)
	g.DELETE("/:id", r.Delete)
}

// RegisterAdmin registers the management endpoints under /v1/admin. Every
// route requires a valid token carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AuthHandler, ar *handler.AdminReservationHandler, th *handler.ThemeHandler, ts *handler.TimeSlotHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/members", a.Members)

	g.POST("/reservations", ar.Create)
	g.GET("/reservations", ar.List)
	g.DELETE("/reservations/:id", ar.Delete)

	g.POST("/themes", th.Create)
	g.DELETE("/themes/:id", th.Delete)

	g.POST("/times", ts.Create)
	g.DELETE("/times/:id", ts.Delete)
}
