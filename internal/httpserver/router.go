package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/vidtube/vidtube/internal/middleware"
)

type Deps struct {
	Users     *UserHTTP
	JWTSecret []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := middleware.NewAuth(d.JWTSecret)

	e.POST("/register", d.Users.Register)
	e.POST("/login", d.Users.Login)
	e.POST("/refresh-token", d.Users.RefreshToken)
	e.GET("/channel/:userName", d.Users.Channel, authMw.OptionalAuth)

	private := e.Group("")
	private.Use(authMw.RequireAuth)

	private.POST("/logout", d.Users.Logout)
	private.POST("/change-password", d.Users.ChangePassword)
	private.GET("/current-user", d.Users.CurrentUser)
	private.PATCH("/update-account", d.Users.UpdateAccount)
	private.POST("/update-avatar", d.Users.UpdateAvatar)
	private.POST("/update-cover-image", d.Users.UpdateCoverImage)
	private.GET("/watch-history", d.Users.WatchHistory)
}
