package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/dto"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	accountService *services.AccountService
	sessionService *services.SessionService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountService *services.AccountService, sessionService *services.SessionService) *AuthHandler {
	return &AuthHandler{
		accountService: accountService,
		sessionService: sessionService,
	}
}

// Signup registers a new account. It does not log the caller in.
func (h *AuthHandler) Signup(c *gin.Context) {
	type SignupRequest struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Location string `json:"location"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	account, err := h.accountService.Register(c.Request.Context(), services.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Location: req.Location,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAccountDTO(*account))
}

// Login authenticates an account and starts a session on the device. The
// login is remembered across browser restarts only when remember is set.
func (h *AuthHandler) Login(c *gin.Context) {
	type LoginRequest struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Remember bool   `json:"remember"`
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		apierrors.InternalError(c, "Missing device")
		return
	}

	account, err := h.accountService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	// The last login wins: a login that is not remembered must not leave an
	// older remembered one behind to resurface after a browser restart.
	if !req.Remember {
		if err := h.sessionService.End(c.Request.Context(), deviceID); err != nil {
			respondError(c, err)
			return
		}
	}

	marker, err := h.sessionService.Start(c.Request.Context(), deviceID, account, req.Remember)
	if err != nil {
		respondError(c, err)
		return
	}

	session := middleware.LoginSession(c)
	session.Set(constants.SessionKeyUserEmail, account.Email)
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, dto.SessionDTO{
		User:      dto.ToAccountDTO(*account),
		Remember:  req.Remember,
		StartedAt: marker.StartedAt,
	})
}

// Logout ends the session. The device id survives so device preferences
// stay attached to the browser.
func (h *AuthHandler) Logout(c *gin.Context) {
	deviceID, ok := middleware.GetDeviceID(c)
	if !ok {
		apierrors.InternalError(c, "Missing device")
		return
	}

	if err := h.sessionService.End(c.Request.Context(), deviceID); err != nil {
		respondError(c, err)
		return
	}

	if err := middleware.EndLogin(c); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// GetCurrentUser returns the authenticated account.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	account, err := h.accountService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountDTO(*account))
}
