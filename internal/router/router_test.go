package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/metrics"
	"github.com/yukikurage/taskflow/internal/repository"
	"github.com/yukikurage/taskflow/internal/services"
	"github.com/yukikurage/taskflow/internal/storage"
)

// RouterTestSuite drives the full HTTP surface against an in-memory store.
type RouterTestSuite struct {
	suite.Suite
	store   *storage.MemoryStore
	router  *gin.Engine
	cookies map[string]*http.Cookie
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.store = storage.NewMemoryStore()
	s.cookies = map[string]*http.Cookie{}

	now := func() time.Time { return time.Date(2026, time.October, 15, 12, 0, 0, 0, time.UTC) }
	m := metrics.New()

	s.router = New(Dependencies{
		Logger:             logger.NewNop(),
		Metrics:            m,
		SessionStore:       cookie.NewStore([]byte("secret")),
		LoginRatePerMinute: 3,
		Accounts:           services.NewAccountService(repository.NewAccountRepository(s.store), now),
		Sessions:           services.NewSessionService(repository.NewSessionRepository(s.store), now),
		Tasks: services.NewTaskService(repository.NewTaskRepository(s.store, time.UTC), time.UTC,
			services.WithClock(now), services.WithMutationObserver(m)),
		Preferences: services.NewPreferenceService(repository.NewPreferenceRepository(s.store)),
		Weather:     services.NewWeatherService(nil, "http://unused", ""),
	})
}

// do sends a request as the browser would, carrying and updating the
// session cookies.
func (s *RouterTestSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for _, ck := range s.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(s.cookies, ck.Name)
			continue
		}
		s.cookies[ck.Name] = ck
	}
	return w
}

// restartBrowser drops every cookie that carries no expiry, as closing the
// browser would.
func (s *RouterTestSuite) restartBrowser() {
	for name, ck := range s.cookies {
		if ck.MaxAge == 0 && ck.Expires.IsZero() {
			delete(s.cookies, name)
		}
	}
}

func (s *RouterTestSuite) signup() {
	w := s.do(http.MethodPost, "/api/auth/signup", map[string]string{
		"name": "A", "email": "a@b.com", "location": "X", "username": "a1", "password": "p",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *RouterTestSuite) login(remember bool) {
	w := s.do(http.MethodPost, "/api/auth/login", map[string]any{
		"email": "a@b.com", "password": "p", "remember": remember,
	})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *RouterTestSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"status":"ok"`)
}

func (s *RouterTestSuite) TestRegisterLoginRememberCurrentUser() {
	s.signup()

	w := s.do(http.MethodGet, "/api/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.login(true)

	w = s.do(http.MethodGet, "/api/auth/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"email":"a@b.com"`)
}

func (s *RouterTestSuite) TestUnrememberedLoginEndsWithBrowser() {
	s.signup()
	s.login(false)

	s.Require().Contains(s.cookies, constants.LoginCookieName)
	login := s.cookies[constants.LoginCookieName]
	s.Zero(login.MaxAge)
	s.True(login.Expires.IsZero())
	s.Positive(s.cookies[constants.SessionCookieName].MaxAge)

	w := s.do(http.MethodGet, "/api/auth/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	s.restartBrowser()
	s.Require().Contains(s.cookies, constants.SessionCookieName, "the device survives a restart")

	w = s.do(http.MethodGet, "/api/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/tasks", nil)
	s.Equal(http.StatusFound, w.Code)
}

func (s *RouterTestSuite) TestRememberedLoginSurvivesBrowserRestart() {
	s.signup()
	s.login(true)

	s.restartBrowser()

	w := s.do(http.MethodGet, "/api/auth/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"email":"a@b.com"`)

	s.do(http.MethodPost, "/api/auth/logout", nil)
	w = s.do(http.MethodGet, "/api/auth/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) TestTasksPageRedirectsWhenLoggedOut() {
	w := s.do(http.MethodGet, "/tasks", nil)
	s.Equal(http.StatusFound, w.Code)
	s.Equal("/login", w.Header().Get("Location"))

	s.signup()
	s.login(false)

	w = s.do(http.MethodGet, "/tasks", nil)
	s.Equal(http.StatusOK, w.Code)

	s.do(http.MethodPost, "/api/auth/logout", nil)
	w = s.do(http.MethodGet, "/tasks", nil)
	s.Equal(http.StatusFound, w.Code)
}

func (s *RouterTestSuite) TestTaskLifecycle() {
	s.signup()
	s.login(false)

	var ids []string
	for _, d := range []string{"one", "two", "three"} {
		w := s.do(http.MethodPost, "/api/tasks", map[string]string{"description": d})
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
		var task struct{ ID string }
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &task))
		ids = append(ids, task.ID)
	}

	w := s.do(http.MethodPost, "/api/tasks/"+ids[0]+"/complete", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/tasks/progress", nil)
	s.JSONEq(`{"today":"2026-10-15","completed":1,"total":3}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/tasks/"+ids[1], nil)
	s.JSONEq(`{"changed":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/tasks?scope=today", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"progress":{"completed":1,"total":2}`)

	w = s.do(http.MethodPost, "/api/tasks/generate", map[string]string{"text": "x"})
	s.Equal(http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodGet, "/metrics", nil)
	s.Contains(w.Body.String(), `taskflow_task_mutations_total{op="add"} 3`)
	s.Contains(w.Body.String(), `taskflow_task_mutations_total{op="remove"} 1`)
}

func (s *RouterTestSuite) TestTasksRequireLogin() {
	w := s.do(http.MethodGet, "/api/tasks", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *RouterTestSuite) TestLoginIsRateLimited() {
	s.signup()

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "a@b.com", "password": "wrong"})
		codes = append(codes, w.Code)
	}
	s.Equal([]int{401, 401, 401, http.StatusTooManyRequests}, codes)
}

func (s *RouterTestSuite) TestThemeAndWeather() {
	w := s.do(http.MethodPut, "/api/preferences/theme", map[string]string{"theme": "dark"})
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/", nil)
	s.Contains(w.Body.String(), `"theme":"dark"`)

	w = s.do(http.MethodGet, "/api/weather?lat=1&lon=2", nil)
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *RouterTestSuite) TestDevicesAreIsolated() {
	w := s.do(http.MethodPut, "/api/preferences/theme", map[string]string{"theme": "dark"})
	s.Require().Equal(http.StatusOK, w.Code)

	s.cookies = map[string]*http.Cookie{}
	w = s.do(http.MethodGet, "/api/preferences/theme", nil)
	s.JSONEq(`{"theme":"light"}`, w.Body.String())
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
