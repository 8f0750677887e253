package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/taskflow/internal/constants"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/models"
)

var errNoDevice = errors.New("device id missing from context")

// SessionLookup finds the remembered login of a device.
type SessionLookup interface {
	Current(ctx context.Context, deviceID string) (models.SessionMarker, bool, error)
}

// DeviceID makes sure every client carries a device id in its session cookie
// and exposes it to handlers. All device scoped storage hangs off this id.
func DeviceID() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := DeviceSession(c)
		id, _ := session.Get(constants.SessionKeyDeviceID).(string)

		if id == "" {
			id = uuid.NewString()
			session.Set(constants.SessionKeyDeviceID, id)
			if err := session.Save(); err != nil {
				apierrors.InternalError(c, "Failed to save session")
				c.Abort()
				return
			}
		}

		c.Set(constants.ContextKeyDeviceID, id)
		c.Next()
	}
}

// GetDeviceID retrieves the device id set by DeviceID
func GetDeviceID(c *gin.Context) (string, bool) {
	id := c.GetString(constants.ContextKeyDeviceID)
	return id, id != ""
}

// RequireAuth rejects requests with no logged in account.
func RequireAuth(lookup SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := resolveUser(c, lookup)
		if err != nil {
			apierrors.ServiceUnavailable(c, "Failed to read session")
			c.Abort()
			return
		}
		if email == "" {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserEmail, email)
		c.Next()
	}
}

// RequirePageAuth sends anonymous visitors to the login page.
func RequirePageAuth(lookup SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := resolveUser(c, lookup)
		if err != nil {
			apierrors.ServiceUnavailable(c, "Failed to read session")
			c.Abort()
			return
		}
		if email == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserEmail, email)
		c.Next()
	}
}

// OptionalAuth resolves the account when there is one and never rejects.
func OptionalAuth(lookup SessionLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		if email, err := resolveUser(c, lookup); err == nil && email != "" {
			c.Set(constants.ContextKeyUserEmail, email)
		}
		c.Next()
	}
}

// GetUserEmail retrieves the current account email from context
func GetUserEmail(c *gin.Context) (string, bool) {
	email := c.GetString(constants.ContextKeyUserEmail)
	return email, email != ""
}

// resolveUser prefers the login held in the browser session and falls back
// to the marker remembered for the device.
func resolveUser(c *gin.Context, lookup SessionLookup) (string, error) {
	if email, ok := LoginSession(c).Get(constants.SessionKeyUserEmail).(string); ok && email != "" {
		return email, nil
	}

	deviceID, ok := GetDeviceID(c)
	if !ok {
		return "", errNoDevice
	}

	marker, found, err := lookup.Current(c.Request.Context(), deviceID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}
	return marker.Email, nil
}
