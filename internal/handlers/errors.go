package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/services"
	"github.com/yukikurage/taskflow/internal/storage"
)

// respondError maps service errors onto API error responses. Anything
// unexpected is attached to the context so the request logger records it.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError

	switch {
	case errors.As(err, &verr):
		apierrors.BadRequestWithDetails(c, "Invalid input", gin.H{"fields": verr.Fields})
	case errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrDescriptionTooLong),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidTheme),
		errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case errors.Is(err, services.ErrAccountNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, storage.ErrUnavailable):
		_ = c.Error(err)
		apierrors.ServiceUnavailable(c, "Storage is unavailable")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
