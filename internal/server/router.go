// Package server wires handlers, middleware and sessions into a gin engine.
package server

import (
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/todo-list/internal/constants"
	apierrors "github.com/yukikurage/todo-list/internal/errors"
	"github.com/yukikurage/todo-list/internal/handlers"
	"github.com/yukikurage/todo-list/internal/logger"
	"github.com/yukikurage/todo-list/internal/middleware"
	"github.com/yukikurage/todo-list/internal/services"
)

// Dependencies are the collaborators the router needs.
type Dependencies struct {
	AuthService  *services.AuthService
	TaskService  *services.TaskService
	SessionStore sessions.Store
	Templates    *template.Template
}

// NewRouter builds the engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger())
	r.SetHTMLTemplate(deps.Templates)
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.SessionStore))
	r.Use(middleware.CurrentUser())

	authHandler := handlers.NewAuthHandler(deps.AuthService)
	taskHandler := handlers.NewTaskHandler(deps.TaskService)
	requireOwner := middleware.RequireTaskOwner(deps.TaskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "To-do list is running",
		})
	})

	r.GET("/", taskHandler.Index)
	r.GET("/signup", authHandler.SignupForm)
	r.POST("/signup", authHandler.Signup)
	r.GET("/login", authHandler.LoginForm)
	r.POST("/login", authHandler.Login)
	r.POST("/logout", authHandler.Logout)

	r.GET("/details/:id", taskHandler.GetTask)

	list := r.Group("/list")
	list.Use(middleware.RequireAuth())
	{
		list.GET("/", taskHandler.ListTasks)
		list.GET("/tag/:slug", taskHandler.ListTasks)
		list.GET("/create/", taskHandler.NewTaskForm)
		list.POST("/create/", taskHandler.CreateTask)
		list.POST("/complete/:id/", requireOwner, taskHandler.CompleteTask)
		list.POST("/delete/:id/", requireOwner, taskHandler.DeleteTask)
	}

	edit := r.Group("/edit")
	edit.Use(middleware.RequireAuth())
	{
		edit.GET("/:id", requireOwner, taskHandler.EditTaskForm)
		edit.POST("/:id", requireOwner, taskHandler.UpdateTask)
	}

	export := r.Group("/export")
	export.Use(middleware.RequireAuth())
	{
		export.GET("/", taskHandler.ExportForm)
		export.POST("/", taskHandler.ExportTasks)
	}

	// API routes
	api := r.Group("/api")
	api.Use(middleware.RequireAuth())
	{
		api.GET("/auth/me", authHandler.GetCurrentUser)
		api.GET("/tasks", taskHandler.APIListTasks)
		api.POST("/tasks/suggest", taskHandler.SuggestTasks)
	}

	r.NoRoute(func(c *gin.Context) {
		apierrors.NotFound(c, "Page not found")
	})

	return r
}
