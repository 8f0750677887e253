package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/constants"
)

// Sessions opens the device session and the login session on store.
// The device session keeps the store's options. The login session is sent
// without Max-Age or Expires so the browser drops it when it closes; logins
// that should survive that are remembered per device in storage instead.
func Sessions(store sessions.Store, secure bool) []gin.HandlerFunc {
	names := []string{constants.SessionCookieName, constants.LoginCookieName}
	return []gin.HandlerFunc{
		sessions.SessionsMany(names, store),
		func(c *gin.Context) {
			LoginSession(c).Options(sessions.Options{
				Path:     "/",
				MaxAge:   0,
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Next()
		},
	}
}

// DeviceSession returns the long lived session carrying the device id.
func DeviceSession(c *gin.Context) sessions.Session {
	return sessions.DefaultMany(c, constants.SessionCookieName)
}

// LoginSession returns the browser session carrying the logged in email.
func LoginSession(c *gin.Context) sessions.Session {
	return sessions.DefaultMany(c, constants.LoginCookieName)
}

// EndLogin clears the login session and tells the browser to drop its cookie.
func EndLogin(c *gin.Context) error {
	session := LoginSession(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}
