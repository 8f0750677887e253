package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskflow/internal/constants"
	"github.com/yukikurage/taskflow/internal/database"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/repository"
	"github.com/yukikurage/taskflow/internal/services"
	"github.com/yukikurage/taskflow/internal/storage"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, time.October, 15, 9, 30, 0, 0, time.UTC)

func testClock() time.Time {
	return testNow
}

type testEnv struct {
	store       storage.Store
	accounts    *services.AccountService
	sessions    *services.SessionService
	tasks       *services.TaskService
	preferences *services.PreferenceService
}

func setupTestEnv(t *testing.T) testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	store := storage.NewGormStore(db)
	return newTestEnv(store)
}

func newTestEnv(store storage.Store) testEnv {
	return testEnv{
		store:       store,
		accounts:    services.NewAccountService(repository.NewAccountRepository(store), testClock),
		sessions:    services.NewSessionService(repository.NewSessionRepository(store), testClock),
		tasks:       services.NewTaskService(repository.NewTaskRepository(store, time.UTC), time.UTC, services.WithClock(testClock)),
		preferences: services.NewPreferenceService(repository.NewPreferenceRepository(store)),
	}
}

func (env testEnv) register(t *testing.T, email string) {
	t.Helper()
	_, err := env.accounts.Register(context.Background(), services.SignupInput{
		Name:     "A",
		Email:    email,
		Location: "X",
		Username: "a1",
		Password: "supersecret",
	})
	require.NoError(t, err)
}

// newSessionRouter returns an engine carrying the cookie session and device
// middleware the handlers rely on.
func newSessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Sessions(cookie.NewStore([]byte("secret")), false)...)
	r.Use(middleware.DeviceID())
	return r
}

// newUserContext simulates a request that passed RequireAuth.
func newUserContext(method, url string, body any, email string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if email != "" {
		c.Set(constants.ContextKeyUserEmail, email)
	}
	c.Set(constants.ContextKeyDeviceID, "device-1")

	return c, w
}

func performJSON(r http.Handler, method, url string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// sessionCookie returns the cookies a browser would keep after the response.
func sessionCookie(w *httptest.ResponseRecorder) []*http.Cookie {
	return keepCookies(nil, w)
}

// keepCookies applies the response's Set-Cookie headers to prev the way a
// browser jar would: the last value per name wins and expired ones go.
func keepCookies(prev []*http.Cookie, w *httptest.ResponseRecorder) []*http.Cookie {
	jar := map[string]*http.Cookie{}
	for _, ck := range prev {
		jar[ck.Name] = ck
	}
	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(jar, ck.Name)
			continue
		}
		jar[ck.Name] = ck
	}

	var cookies []*http.Cookie
	for _, name := range []string{constants.SessionCookieName, constants.LoginCookieName} {
		if ck, ok := jar[name]; ok {
			cookies = append(cookies, ck)
		}
	}
	return cookies
}

// deviceCookieOnly simulates a browser restart, which keeps the long lived
// device cookie and drops the login session cookie.
func deviceCookieOnly(cookies []*http.Cookie) []*http.Cookie {
	var kept []*http.Cookie
	for _, ck := range cookies {
		if ck.Name == constants.SessionCookieName {
			kept = append(kept, ck)
		}
	}
	return kept
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

// unavailableStore fails every operation like an unreachable backend.
type unavailableStore struct{}

func (unavailableStore) Get(context.Context, string) (string, bool, error) {
	return "", false, storage.ErrUnavailable
}

func (unavailableStore) Set(context.Context, string, string) error {
	return storage.ErrUnavailable
}

func (unavailableStore) Delete(context.Context, string) error {
	return storage.ErrUnavailable
}
