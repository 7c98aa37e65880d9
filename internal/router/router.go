package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/droptracker/api/handler"
)

type Handlers struct {
	Auth         *apiHandler.AuthHandler
	Profile      *apiHandler.ProfileHandler
	Task         *apiHandler.TaskHandler
	Notification *apiHandler.NotificationHandler
	Project      *apiHandler.ProjectHandler
	Admin        *apiHandler.AdminHandler
	Contact      *apiHandler.ContactHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, authMiddleware func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Public routes
	r.GET("/api/v1/projects", handlers.Project.ListProjects)
	r.GET("/api/v1/projects/{id}", handlers.Project.GetProject)
	r.POST("/api/v1/contact", handlers.Contact.Submit)

	// Auth routes
	r.POST("/api/v1/auth/login", authMiddleware(handlers.Auth.Login))
	r.POST("/api/v1/auth/refresh", authMiddleware(handlers.Auth.Refresh))
	r.POST("/api/v1/auth/logout", authMiddleware(handlers.Auth.Logout))
	r.POST("/api/v1/auth/logout-all", authMiddleware(handlers.Auth.LogoutAll))

	// Protected routes
	r.GET("/api/v1/profile", authMiddleware(handlers.Profile.GetProfile))
	r.PUT("/api/v1/profile", authMiddleware(handlers.Profile.UpdateProfile))
	r.GET("/api/v1/progress", authMiddleware(handlers.Profile.GetProgress))

	r.GET("/api/v1/tasks", authMiddleware(handlers.Task.GetTasks))
	r.POST("/api/v1/tasks", authMiddleware(handlers.Task.CreateTask))
	r.GET("/api/v1/tasks/stream", authMiddleware(handlers.Task.StreamTasks))
	r.GET("/api/v1/tasks/{id}", authMiddleware(handlers.Task.GetTask))
	r.PUT("/api/v1/tasks/{id}", authMiddleware(handlers.Task.UpdateTask))
	r.DELETE("/api/v1/tasks/{id}", authMiddleware(handlers.Task.DeleteTask))
	r.POST("/api/v1/tasks/{id}/toggle", authMiddleware(handlers.Task.ToggleTask))

	r.GET("/api/v1/notifications", authMiddleware(handlers.Notification.List))
	r.DELETE("/api/v1/notifications", authMiddleware(handlers.Notification.Clear))
	r.POST("/api/v1/notifications/read", authMiddleware(handlers.Notification.MarkAllRead))
	r.POST("/api/v1/notifications/{id}/read", authMiddleware(handlers.Notification.MarkRead))
	r.DELETE("/api/v1/notifications/{id}", authMiddleware(handlers.Notification.Remove))

	// Admin routes; role checks happen in the use cases.
	r.GET("/api/v1/admin/stats", authMiddleware(handlers.Admin.Stats))
	r.POST("/api/v1/admin/projects", authMiddleware(handlers.Project.CreateProject))
	r.PUT("/api/v1/admin/projects/{id}", authMiddleware(handlers.Project.UpdateProject))
	r.DELETE("/api/v1/admin/projects/{id}", authMiddleware(handlers.Project.DeleteProject))

	return r
}
