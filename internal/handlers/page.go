package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/dto"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/services"
)

// PageHandler answers the navigation routes with page descriptors.
type PageHandler struct {
	accountService    *services.AccountService
	taskService       *services.TaskService
	preferenceService *services.PreferenceService
}

func NewPageHandler(accountService *services.AccountService, taskService *services.TaskService, preferenceService *services.PreferenceService) *PageHandler {
	return &PageHandler{
		accountService:    accountService,
		taskService:       taskService,
		preferenceService: preferenceService,
	}
}

// Static returns a handler for a page with no data of its own.
func (h *PageHandler) Static(page, title string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, h.describe(c, page, title))
	}
}

// Tasks describes the task page: every task of the account, with progress
// counted over today's. Routed behind RequirePageAuth.
func (h *PageHandler) Tasks(c *gin.Context) {
	email, _ := middleware.GetUserEmail(c)

	account, err := h.accountService.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	list, err := h.taskService.Open(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	page := h.describe(c, "tasks", "My Tasks")
	user := dto.ToAccountDTO(*account)
	progress := list.Progress()
	page.User = &user
	page.Today = h.taskService.Today()
	page.Progress = &dto.ProgressDTO{Completed: progress.Completed, Total: progress.Total}
	page.Tasks = dto.ToTaskDTOs(list.All())

	c.JSON(http.StatusOK, page)
}

func (h *PageHandler) describe(c *gin.Context, page, title string) dto.PageDTO {
	_, authenticated := middleware.GetUserEmail(c)

	theme := constants.ThemeLight
	if deviceID, ok := middleware.GetDeviceID(c); ok {
		if t, err := h.preferenceService.Theme(c.Request.Context(), deviceID); err == nil {
			theme = t
		} else {
			_ = c.Error(err)
		}
	}

	return dto.PageDTO{
		Page:          page,
		Title:         title,
		Authenticated: authenticated,
		Theme:         theme,
	}
}
