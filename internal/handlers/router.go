package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/teamtasks/task-management-api/internal/constants"
	"github.com/teamtasks/task-management-api/internal/middleware"
	"github.com/teamtasks/task-management-api/internal/repository"
	"github.com/teamtasks/task-management-api/internal/services"
)

// Dependencies holds what the HTTP layer needs to serve the API.
type Dependencies struct {
	SessionStore sessions.Store

	TaskRepo repository.TaskRepository
	UserRepo repository.UserRepository

	AuthService       *services.AuthService
	TaskService       *services.TaskService
	UserService       *services.UserService
	PreferenceService *services.PreferenceService
}

// RegisterRoutes mounts the session middleware and every API route on r.
func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))

	authHandler := NewAuthHandler(deps.AuthService)
	taskHandler := NewTaskHandler(deps.TaskService)
	userHandler := NewUserHandler(deps.UserService)
	prefHandler := NewPreferenceHandler(deps.PreferenceService)

	requireAuth := middleware.RequireAuth(deps.UserRepo)
	requireAdmin := middleware.RequireAdmin()
	requireTask := middleware.RequireTaskAccess(deps.TaskRepo)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Management API is running",
		})
	})

	api := r.Group("/api")
	{
		// Public
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		protected := api.Group("")
		protected.Use(requireAuth)
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/user", authHandler.GetCurrentUser)
			protected.PUT("/profile", authHandler.UpdateProfile)

			protected.GET("/my-tasks", taskHandler.MyTasks)

			tasks := protected.Group("/tasks")
			{
				tasks.GET("", taskHandler.ListTasks)
				tasks.POST("", taskHandler.CreateTask)
				tasks.POST("/generate", taskHandler.GenerateTasks)
				tasks.GET("/:id", requireTask, taskHandler.GetTask)
				tasks.PUT("/:id", requireTask, taskHandler.UpdateTask)
				tasks.PATCH("/:id", requireTask, taskHandler.UpdateTask)
				tasks.PATCH("/:id/status", requireTask, taskHandler.UpdateTaskStatus)
				tasks.DELETE("/:id", requireTask, taskHandler.DeleteTask)
			}

			protected.GET("/email-preferences", prefHandler.GetPreferences)
			protected.PUT("/email-preferences", prefHandler.UpdatePreferences)

			admin := protected.Group("")
			admin.Use(requireAdmin)
			{
				admin.GET("/users", userHandler.ListUsers)
				admin.POST("/users", userHandler.CreateUser)
				admin.GET("/users/:id", userHandler.GetUser)
				admin.PUT("/users/:id", userHandler.UpdateUser)
				admin.DELETE("/users/:id", userHandler.DeleteUser)

				admin.GET("/users/:id/email-preferences", prefHandler.GetUserPreferences)
				admin.PUT("/users/:id/email-preferences", prefHandler.UpdateUserPreferences)
				admin.GET("/admin/email-preferences/overview", prefHandler.Overview)
			}
		}
	}
}
