package handlers

import (
	"context"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/dto"
	apierrors "github.com/yukikurage/taskflow/internal/errors"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/models"
	"github.com/yukikurage/taskflow/internal/services"
)

const (
	scopeAll   = "all"
	scopeToday = "today"
)

type TaskHandler struct {
	taskService *services.TaskService
	aiService   *services.AIService
}

func NewTaskHandler(taskService *services.TaskService, aiService *services.AIService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		aiService:   aiService,
	}
}

// ListTasks returns the caller's tasks in insertion order.
// ?scope=today narrows the list to today's tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	scope := c.DefaultQuery("scope", scopeAll)
	if scope != scopeAll && scope != scopeToday {
		apierrors.BadRequest(c, "scope must be all or today")
		return
	}

	list, err := h.taskService.Open(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	var tasks []models.Task
	if scope == scopeToday {
		tasks = slices.Collect(list.Today())
	} else {
		tasks = list.All()
	}

	progress := list.Progress()
	c.JSON(http.StatusOK, dto.TaskListResponse{
		Today:    h.taskService.Today(),
		Scope:    scope,
		Tasks:    dto.ToTaskDTOs(tasks),
		Progress: dto.ProgressDTO{Completed: progress.Completed, Total: progress.Total},
	})
}

// CreateTask adds a task on the given date, today when none is given.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Description string `json:"description"`
		Date        string `json:"date"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var task *models.Task
	err := h.taskService.Update(c.Request.Context(), email, func(list *services.TaskList) error {
		if req.Date != "" {
			if err := list.SelectDate(req.Date); err != nil {
				return err
			}
		}
		var err error
		task, err = list.Add(c.Request.Context(), req.Description)
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GenerateTasks asks the AI service to split free text into tasks and adds
// every suggestion to the caller's list.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
		Date string `json:"date"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if h.aiService == nil {
		respondError(c, services.ErrAIServiceNotConfigured)
		return
	}

	suggestions, err := h.aiService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}

	var created []models.Task
	err = h.taskService.Update(c.Request.Context(), email, func(list *services.TaskList) error {
		if req.Date != "" {
			if err := list.SelectDate(req.Date); err != nil {
				return err
			}
		}
		for _, description := range suggestions {
			task, err := list.Add(c.Request.Context(), description)
			if err != nil {
				return err
			}
			created = append(created, *task)
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"tasks": dto.ToTaskDTOs(created),
	})
}

// GetProgress reports today's completed and total task counts.
func (h *TaskHandler) GetProgress(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	list, err := h.taskService.Open(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	progress := list.Progress()
	c.JSON(http.StatusOK, gin.H{
		"today":     h.taskService.Today(),
		"completed": progress.Completed,
		"total":     progress.Total,
	})
}

// ToggleCompleted flips a task's completed flag. Unknown ids answer
// changed=false.
func (h *TaskHandler) ToggleCompleted(c *gin.Context) {
	h.toggle(c, (*services.TaskList).ToggleCompleted)
}

// TogglePriority flips a task's priority flag. Unknown ids answer
// changed=false.
func (h *TaskHandler) TogglePriority(c *gin.Context) {
	h.toggle(c, (*services.TaskList).TogglePriority)
}

// DeleteTask removes a task. Unknown ids answer changed=false.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var removed bool
	err := h.taskService.Update(c.Request.Context(), email, func(list *services.TaskList) error {
		var err error
		removed, err = list.Remove(c.Request.Context(), c.Param("id"))
		return err
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.TaskMutationResponse{Changed: removed})
}

type toggleFunc func(*services.TaskList, context.Context, string) (bool, error)

func (h *TaskHandler) toggle(c *gin.Context, flip toggleFunc) {
	email, exists := middleware.GetUserEmail(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id := c.Param("id")
	resp := dto.TaskMutationResponse{}
	err := h.taskService.Update(c.Request.Context(), email, func(list *services.TaskList) error {
		changed, err := flip(list, c.Request.Context(), id)
		if err != nil {
			return err
		}
		resp.Changed = changed
		if task, ok := list.Get(id); ok && changed {
			t := dto.ToTaskDTO(task)
			resp.Task = &t
		}
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
