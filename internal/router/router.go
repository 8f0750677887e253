package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/taskflow/internal/handlers"
	"github.com/yukikurage/taskflow/internal/logger"
	"github.com/yukikurage/taskflow/internal/metrics"
	"github.com/yukikurage/taskflow/internal/middleware"
	"github.com/yukikurage/taskflow/internal/services"
)

// Dependencies are the collaborators the HTTP surface is built from.
// AI may be nil when no OpenAI key is configured.
type Dependencies struct {
	Logger  *logger.Logger
	Metrics *metrics.Metrics

	SessionStore       sessions.Store
	SecureCookies      bool
	LoginRatePerMinute int

	Accounts    *services.AccountService
	Sessions    *services.SessionService
	Tasks       *services.TaskService
	Preferences *services.PreferenceService
	Weather     *services.WeatherService
	AI          *services.AIService
}

// New wires every route onto a fresh gin engine.
func New(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(deps.Logger.GinMiddleware())
	r.Use(deps.Metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TaskFlow is running",
		})
	})
	r.GET("/metrics", deps.Metrics.Handler())

	// Everything below is device scoped
	app := r.Group("")
	app.Use(middleware.Sessions(deps.SessionStore, deps.SecureCookies)...)
	app.Use(middleware.DeviceID())

	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Sessions)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.AI)
	preferenceHandler := handlers.NewPreferenceHandler(deps.Preferences)
	weatherHandler := handlers.NewWeatherHandler(deps.Weather)
	pageHandler := handlers.NewPageHandler(deps.Accounts, deps.Tasks, deps.Preferences)

	// Pages
	pages := app.Group("")
	pages.Use(middleware.OptionalAuth(deps.Sessions))
	{
		pages.GET("/", pageHandler.Static("home", "TaskFlow"))
		pages.GET("/about", pageHandler.Static("about", "About"))
		pages.GET("/signup", pageHandler.Static("signup", "Sign Up"))
		pages.GET("/login", pageHandler.Static("login", "Log In"))
	}
	app.GET("/tasks", middleware.RequirePageAuth(deps.Sessions), pageHandler.Tasks)

	// API routes
	api := app.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			loginLimiter := middleware.NewRateLimiter(deps.LoginRatePerMinute)

			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", loginLimiter.Middleware(), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(deps.Sessions), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(deps.Sessions))
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/progress", taskHandler.GetProgress)
			tasks.POST("/:id/complete", taskHandler.ToggleCompleted)
			tasks.POST("/:id/priority", taskHandler.TogglePriority)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		api.GET("/preferences/theme", preferenceHandler.GetTheme)
		api.PUT("/preferences/theme", preferenceHandler.SetTheme)
		api.GET("/weather", weatherHandler.GetWeather)
	}

	return r
}
