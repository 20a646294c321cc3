package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"

	"taskflow/internal/model"
	"taskflow/internal/service"
)

type createDefinitionRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority"`
	AssignedTo  string  `json:"assigned_to" binding:"required"`
	ProjectID   string  `json:"project_id"`
	Frequency   string  `json:"frequency" binding:"required"`
	Trigger     string  `json:"recurrence_trigger"`
	StartDate   string  `json:"start_date" binding:"required"`
	Questions   *string `json:"questions"`
}

func (s *Server) createDefinition(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}

	var req createDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid start_date"})
		return
	}

	def, err := s.recurring.CreateDefinition(c.Request.Context(), caller, service.DefinitionInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.Priority(req.Priority),
		AssignedTo:  uuid.FromStringOrNil(req.AssignedTo),
		ProjectID:   optionalID(req.ProjectID),
		Frequency:   model.Frequency(req.Frequency),
		Trigger:     model.Trigger(req.Trigger),
		StartDate:   start,
		Questions:   req.Questions,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, def)
}

func (s *Server) listDefinitions(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	defs, err := s.recurring.List(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": defs})
}

// runRecurringTick triggers schedule-mode generation, cron-style. The
// response always reports a count; per-definition failures are logged.
func (s *Server) runRecurringTick(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}
	generated := s.recurring.Tick(c.Request.Context(), time.Now())
	c.JSON(http.StatusOK, gin.H{"generated": generated})
}

// runReminderTick triggers the reminder/overdue scan, cron-style.
func (s *Server) runReminderTick(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}
	stats := s.reminders.Tick(c.Request.Context(), time.Now())
	c.JSON(http.StatusOK, gin.H{"reminders": stats.Reminders, "overdue": stats.Overdue})
}
