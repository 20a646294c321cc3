package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

type createTaskRequest struct {
	Title                     string  `json:"title" binding:"required"`
	Description               string  `json:"description"`
	Priority                  string  `json:"priority"`
	DueDate                   string  `json:"due_date"`
	AssignedTo                string  `json:"assigned_to"`
	ProjectID                 string  `json:"project_id"`
	ParentID                  string  `json:"parent_id"`
	RequiresExecutionWorkflow bool    `json:"requires_execution_workflow"`
	Questions                 *string `json:"questions"`
}

type transitionRequest struct {
	Status string `json:"status"`
	Stage  string `json:"stage"`
	Note   string `json:"note"`
}

type extendRequest struct {
	DueDate string `json:"due_date" binding:"required"`
}

func (s *Server) createTask(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	input := service.TaskInput{
		Title:                     req.Title,
		Description:               req.Description,
		Priority:                  model.Priority(req.Priority),
		AssignedTo:                uuid.FromStringOrNil(req.AssignedTo),
		ProjectID:                 optionalID(req.ProjectID),
		ParentID:                  optionalID(req.ParentID),
		RequiresExecutionWorkflow: req.RequiresExecutionWorkflow,
		Questions:                 req.Questions,
	}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid due_date"})
			return
		}
		input.DueDate = &due
	}

	task, err := s.tasks.Create(c.Request.Context(), caller, input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) getTask(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	task, err := s.tasks.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) listTasks(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	tasks, err := s.tasks.List(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (s *Server) updateStatus(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	task, err := s.tasks.UpdateStatus(c.Request.Context(), caller, id, model.Status(req.Status), req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateStage(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	task, err := s.tasks.UpdateStage(c.Request.Context(), caller, id, req.Stage, req.Note)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) extendDeadline(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	due, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid due_date"})
		return
	}
	task, err := s.tasks.ExtendDeadline(c.Request.Context(), caller, id, due)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	if err := s.tasks.Delete(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task was deleted."})
}

func (s *Server) listTrash(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	tasks, err := s.tasks.Trash(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tasks})
}

func (s *Server) restoreTask(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	if err := s.tasks.Restore(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task was restored."})
}

func (s *Server) purgeTask(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid task id"})
		return
	}
	if err := s.tasks.Purge(c.Request.Context(), caller, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task was permanently deleted."})
}

// optionalID parses a UUID field that may be absent.
func optionalID(raw string) *uuid.UUID {
	if raw == "" {
		return nil
	}
	id, err := uuid.FromString(raw)
	if err != nil {
		return nil
	}
	return &id
}

// parseDate accepts a bare date or a full RFC 3339 timestamp.
func parseDate(raw string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", raw, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
