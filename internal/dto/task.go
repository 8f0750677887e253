package dto

import (
	"time"

	"github.com/yukikurage/taskflow/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	Date        string    `json:"date"`
	Priority    bool      `json:"priority"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProgressDTO counts today's tasks
type ProgressDTO struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// TaskListResponse is the body of GET /api/tasks
type TaskListResponse struct {
	Today    string      `json:"today"`
	Scope    string      `json:"scope"`
	Tasks    []TaskDTO   `json:"tasks"`
	Progress ProgressDTO `json:"progress"`
}

// TaskMutationResponse reports whether a toggle or removal matched a task.
type TaskMutationResponse struct {
	Changed bool     `json:"changed"`
	Task    *TaskDTO `json:"task,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		Description: task.Description,
		Completed:   task.Completed,
		Date:        task.Date,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt,
	}
}

// ToTaskDTOs converts tasks, keeping their order. Never returns nil so the
// JSON body always carries an array.
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task)
	}
	return out
}
