package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vidtube/vidtube/internal/cookies"
	"github.com/vidtube/vidtube/internal/logging"
	"github.com/vidtube/vidtube/internal/middleware"
	"github.com/vidtube/vidtube/internal/service"
)

type UserHTTP struct {
	Users   *service.UserService
	Views   *service.ViewService
	TempDir string
}

func (h *UserHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "register")

	avatarPath, err := spoolFormFile(c, "avatar", h.TempDir)
	if err != nil {
		l.Warn("avatar spool failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "could not read avatar file")
	}
	coverPath, err := spoolFormFile(c, "coverImage", h.TempDir)
	if err != nil {
		l.Warn("cover spool failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "could not read cover image file")
	}

	user, err := h.Users.Register(ctx, service.RegisterInput{
		Username:   c.FormValue("userName"),
		Email:      c.FormValue("email"),
		FullName:   c.FormValue("fullName"),
		Password:   c.FormValue("password"),
		AvatarPath: avatarPath,
		CoverPath:  coverPath,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, user, "User registered successfully")
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Users.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(cookies.Create(cookies.AccessToken, res.AccessToken, "/", res.AccessExp))
	c.SetCookie(cookies.Create(cookies.RefreshToken, res.RefreshToken, "/", res.RefreshExp))

	return respond(c, http.StatusOK, res, "User logged in successfully")
}

func (h *UserHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	if err := h.Users.Logout(ctx, userID); err != nil {
		return err
	}

	c.SetCookie(cookies.Delete(cookies.AccessToken, "/"))
	c.SetCookie(cookies.Delete(cookies.RefreshToken, "/"))

	return respond(c, http.StatusOK, nil, "User logged out successfully")
}

func (h *UserHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()

	presented := ""
	if cookie, err := c.Cookie(cookies.RefreshToken); err == nil {
		presented = cookie.Value
	}
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.Bind(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.Users.RefreshSession(ctx, presented)
	if err != nil {
		return err
	}

	c.SetCookie(cookies.Create(cookies.AccessToken, pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(cookies.Create(cookies.RefreshToken, pair.RefreshToken, "/", pair.RefreshExp))

	return respond(c, http.StatusOK, pair, "Access token refreshed")
}

func (h *UserHTTP) ChangePassword(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Users.ChangePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	return respond(c, http.StatusOK, nil, "Password changed successfully")
}

func (h *UserHTTP) CurrentUser(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	user, err := h.Users.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Current user fetched successfully")
}

func (h *UserHTTP) UpdateAccount(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	var req struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.UpdateAccount(c.Request().Context(), userID, req.FullName, req.Email)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Account details updated successfully")
}

func (h *UserHTTP) UpdateAvatar(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	localPath, err := spoolFormFile(c, "avatar", h.TempDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read avatar file")
	}

	user, err := h.Users.UpdateAvatar(ctx, userID, localPath)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Avatar updated successfully")
}

func (h *UserHTTP) UpdateCoverImage(c echo.Context) error {
	ctx := c.Request().Context()

	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	localPath, err := spoolFormFile(c, "coverImage", h.TempDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "could not read cover image file")
	}

	user, err := h.Users.UpdateCoverImage(ctx, userID, localPath)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user, "Cover image updated successfully")
}

func (h *UserHTTP) Channel(c echo.Context) error {
	ctx := c.Request().Context()

	profile, err := h.Views.ChannelProfile(ctx, c.Param("userName"), viewerPtr(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, profile, "Channel profile fetched successfully")
}

func (h *UserHTTP) WatchHistory(c echo.Context) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	history, err := h.Views.WatchHistory(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, history, "Watch history fetched successfully")
}

// viewerPtr returns the authenticated viewer's id for routes that are
// public but viewer-aware.
func viewerPtr(c echo.Context) *uuid.UUID {
	if id, ok := middleware.UserID(c); ok {
		return &id
	}
	return nil
}
