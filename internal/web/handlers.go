package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"taskpilot/internal/engine"
	"taskpilot/internal/model"
)

type taskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	Due         string   `json:"due"`
	Recurrence  string   `json:"recurrence"`
}

type taskPatchRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	Tags        []string `json:"tags"`
	Due         *string  `json:"due"`
	ClearDue    bool     `json:"clear_due"`
	Recurrence  *string  `json:"recurrence"`
}

type viewRequest struct {
	Name   string       `json:"name"`
	Filter model.Filter `json:"filter"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	filter, err := s.filterFromQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	spec := model.SortSpec{}
	if raw := c.Query("sort_by"); raw != "" {
		field, ok := model.ParseSortField(raw)
		if !ok {
			badRequest(c, fmt.Errorf("unknown sort field %q", raw))
			return
		}
		spec.Field = field
		spec.Order = model.Ascending
	}
	if raw := c.Query("order"); raw != "" {
		order, ok := model.ParseSortOrder(raw)
		if !ok {
			badRequest(c, fmt.Errorf("unknown sort order %q", raw))
			return
		}
		spec.Order = order
	}

	tasks, err := s.service.ListTasks(c.Request.Context(), filter, spec)
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks, "count": len(tasks)})
}

func (s *Server) filterFromQuery(c *gin.Context) (model.Filter, error) {
	var filter model.Filter

	if name := c.Query("view"); name != "" {
		view, err := s.findView(c, name)
		if err != nil {
			return model.Filter{}, err
		}
		filter = view.Filter
	}

	if raw := c.Query("status"); raw != "" {
		status, ok := model.ParseStatus(raw)
		if !ok {
			return model.Filter{}, fmt.Errorf("unknown status %q", raw)
		}
		filter.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority, ok := model.ParsePriority(raw)
		if !ok {
			return model.Filter{}, fmt.Errorf("unknown priority %q", raw)
		}
		filter.Priority = &priority
	}
	if raw := c.Query("tags"); raw != "" {
		tags, err := engine.NormalizeTags(model.SplitTags(raw))
		if err != nil {
			return model.Filter{}, err
		}
		filter.Tags = tags
	}
	if raw := c.Query("search"); raw != "" {
		filter.Keyword = raw
	}
	if raw := c.Query("from"); raw != "" {
		from, err := model.ParseDate(raw)
		if err != nil {
			return model.Filter{}, err
		}
		filter.CreatedFrom = &from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := model.ParseDate(raw)
		if err != nil {
			return model.Filter{}, err
		}
		// The upper bound names a whole day.
		end := endOfDay(to)
		filter.CreatedTo = &end
	}
	return filter, nil
}

func (s *Server) findView(c *gin.Context, name string) (model.View, error) {
	views, err := s.service.ListViews(c.Request.Context())
	if err != nil {
		return model.View{}, err
	}
	for _, view := range views {
		if view.Name == name {
			return view, nil
		}
	}
	return model.View{}, fmt.Errorf("view %q not found", name)
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	input, err := req.toInput()
	if err != nil {
		badRequest(c, err)
		return
	}

	task, err := s.service.CreateTask(c.Request.Context(), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "task": task})
}

func (req taskRequest) toInput() (engine.TaskInput, error) {
	input := engine.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Tags:        req.Tags,
		Recurrence:  req.Recurrence,
	}
	if req.Due != "" {
		due, err := model.ParseDueDate(req.Due)
		if err != nil {
			return engine.TaskInput{}, err
		}
		input.DueDate = &due
	}
	return input, nil
}

func (s *Server) handleGetTask(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	task, err := s.service.GetTask(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	var req taskPatchRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	patch := engine.Patch{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Tags:         req.Tags,
		ClearDueDate: req.ClearDue,
		Recurrence:   req.Recurrence,
	}
	if req.Due != nil {
		due, err := model.ParseDueDate(*req.Due)
		if err != nil {
			badRequest(c, err)
			return
		}
		patch.DueDate = &due
	}

	task, err := s.service.UpdateTask(c.Request.Context(), taskID, patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "task": task})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := s.service.DeleteTask(c.Request.Context(), taskID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "task deleted"})
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	completed, spawned, err := s.service.CompleteTask(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := gin.H{"success": true, "task": completed}
	if spawned != nil {
		resp["spawned"] = spawned
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleTaskHistory(c *gin.Context) {
	taskID, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	entries, err := s.service.ListHistory(c.Request.Context(), taskID)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []model.HistoryEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}

func (s *Server) handleReminders(c *gin.Context) {
	window := 24 * time.Hour
	if raw := c.Query("window"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 {
			badRequest(c, fmt.Errorf("invalid window %q", raw))
			return
		}
		window = parsed
	}

	tasks, err := s.service.DueSoon(c.Request.Context(), time.Now(), window)
	if err != nil {
		writeError(c, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleListViews(c *gin.Context) {
	views, err := s.service.ListViews(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if views == nil {
		views = []model.View{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "views": views})
}

func (s *Server) handleSaveView(c *gin.Context) {
	var req viewRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := s.service.SaveView(c.Request.Context(), model.View{Name: req.Name, Filter: req.Filter})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "view": view})
}

func (s *Server) handleDeleteView(c *gin.Context) {
	viewID, err := pathID(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	if err := s.service.DeleteView(c.Request.Context(), viewID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "view deleted"})
}

func (s *Server) handleExport(c *gin.Context) {
	c.Header("Content-Type", "application/json")
	c.Header("Content-Disposition", `attachment; filename="tasks.json"`)
	if err := s.service.ExportJSON(c.Request.Context(), c.Writer); err != nil {
		writeError(c, err)
	}
}

func (s *Server) handleImport(c *gin.Context) {
	count, err := s.service.ImportJSON(c.Request.Context(), c.Request.Body)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "imported": count})
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, engine.ErrValidation):
		badRequest(c, err)
	case errors.Is(err, engine.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
