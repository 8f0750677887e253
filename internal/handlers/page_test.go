package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow/internal/dto"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/services"
)

func TestPageHandler(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "a@b.com")
	pages := NewPageHandler(env.accounts, env.tasks, env.preferences)
	auth := NewAuthHandler(env.accounts, env.sessions)

	r := newSessionRouter()
	r.GET("/about", middleware.OptionalAuth(env.sessions), pages.Static("about", "About"))
	r.GET("/tasks", middleware.RequirePageAuth(env.sessions), pages.Tasks)
	r.POST("/api/auth/login", auth.Login)

	w := performJSON(r, http.MethodGet, "/about", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	about := decode[dto.PageDTO](t, w)
	assert.Equal(t, "about", about.Page)
	assert.False(t, about.Authenticated)
	assert.Equal(t, "light", about.Theme)

	w = performJSON(r, http.MethodGet, "/tasks", nil, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	w = performJSON(r, http.MethodPost, "/api/auth/login", map[string]any{
		"email":    "a@b.com",
		"password": "supersecret",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := sessionCookie(w)

	w = performJSON(r, http.MethodGet, "/tasks", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[dto.PageDTO](t, w)
	assert.Equal(t, "tasks", page.Page)
	assert.True(t, page.Authenticated)
	require.NotNil(t, page.User)
	assert.Equal(t, "a@b.com", page.User.Email)
	assert.Equal(t, "2026-10-15", page.Today)
	assert.Equal(t, &dto.ProgressDTO{}, page.Progress)
	assert.Empty(t, page.Tasks)
}

func TestPageHandler_TasksListsEveryDate(t *testing.T) {
	env := setupTestEnv(t)
	env.register(t, "a@b.com")
	pages := NewPageHandler(env.accounts, env.tasks, env.preferences)

	ctx := context.Background()
	err := env.tasks.Update(ctx, "a@b.com", func(l *services.TaskList) error {
		done, err := l.Add(ctx, "today")
		if err != nil {
			return err
		}
		if _, err := l.ToggleCompleted(ctx, done.ID); err != nil {
			return err
		}
		if err := l.SelectDate("2026-10-20"); err != nil {
			return err
		}
		_, err = l.Add(ctx, "next week")
		return err
	})
	require.NoError(t, err)

	c, w := newUserContext(http.MethodGet, "/tasks", nil, "a@b.com")
	pages.Tasks(c)
	require.Equal(t, http.StatusOK, w.Code)

	page := decode[dto.PageDTO](t, w)
	require.Len(t, page.Tasks, 2)
	assert.Equal(t, "2026-10-15", page.Tasks[0].Date)
	assert.Equal(t, "2026-10-20", page.Tasks[1].Date)
	assert.Equal(t, "next week", page.Tasks[1].Description)
	assert.Equal(t, &dto.ProgressDTO{Completed: 1, Total: 1}, page.Progress, "progress counts today only")
}
