package web

import (
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

// TaskService is the slice of the store the handlers need. *store.Store
// satisfies it; tests substitute a mock.
type TaskService interface {
	CreateTask(ctx context.Context, input engine.TaskInput) (model.Task, error)
	GetTask(ctx context.Context, taskID int64) (model.Task, error)
	ListTasks(ctx context.Context, filter model.Filter, spec model.SortSpec) ([]model.Task, error)
	UpdateTask(ctx context.Context, taskID int64, patch engine.Patch) (model.Task, error)
	CompleteTask(ctx context.Context, taskID int64) (model.Task, *model.Task, error)
	DeleteTask(ctx context.Context, taskID int64) error
	DueSoon(ctx context.Context, now time.Time, window time.Duration) ([]model.Task, error)
	ListHistory(ctx context.Context, taskID int64) ([]model.HistoryEntry, error)
	SaveView(ctx context.Context, view model.View) (model.View, error)
	ListViews(ctx context.Context) ([]model.View, error)
	DeleteView(ctx context.Context, viewID int64) error
	ExportJSON(ctx context.Context, w io.Writer) error
	ImportJSON(ctx context.Context, r io.Reader) (int, error)
}

// Server exposes the task store over HTTP.
type Server struct {
	service TaskService
	router  *gin.Engine
}

func NewServer(service TaskService) *Server {
	router := gin.Default()

	s := &Server{
		service: service,
		router:  router,
	}
	s.registerRoutes(router)
	return s
}

func (s *Server) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
		api.POST("/tasks/:id/complete", s.handleCompleteTask)
		api.GET("/tasks/:id/history", s.handleTaskHistory)
		api.GET("/reminders", s.handleReminders)
		api.GET("/views", s.handleListViews)
		api.POST("/views", s.handleSaveView)
		api.DELETE("/views/:id", s.handleDeleteView)
		api.GET("/export", s.handleExport)
		api.POST("/import", s.handleImport)
	}
}

// Run starts the web server.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
