// Package server exposes the core operations over HTTP. Handlers only
// parse and validate the wire shape; every rule lives in the services.
package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"taskflow/internal/apperr"
	"taskflow/internal/auth"
	"taskflow/internal/service"
)

// Options configure the HTTP surface.
type Options struct {
	JWTSecret      []byte
	RequestsPerMin int
	AllowedOrigins []string
}

// Server wires the gin router to the services.
type Server struct {
	router        *gin.Engine
	tasks         *service.TaskService
	recurring     *service.RecurringService
	reminders     *service.ReminderService
	notifications *service.NotificationService
}

func New(tasks *service.TaskService, recurring *service.RecurringService, reminders *service.ReminderService, notifications *service.NotificationService, opts Options) *Server {
	s := &Server{
		tasks:         tasks,
		recurring:     recurring,
		reminders:     reminders,
		notifications: notifications,
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	if opts.RequestsPerMin > 0 {
		r.Use(rateLimiter(rate.Limit(float64(opts.RequestsPerMin)/60.0), opts.RequestsPerMin))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "taskflow"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(auth.Middleware(opts.JWTSecret))
	{
		taskRoutes := v1.Group("/tasks")
		{
			taskRoutes.POST("", s.createTask)
			taskRoutes.GET("", s.listTasks)
			taskRoutes.GET("/trash", s.listTrash)
			taskRoutes.GET("/:id", s.getTask)
			taskRoutes.PATCH("/:id/status", s.updateStatus)
			taskRoutes.PATCH("/:id/stage", s.updateStage)
			taskRoutes.POST("/:id/extend", s.extendDeadline)
			taskRoutes.POST("/:id/restore", s.restoreTask)
			taskRoutes.DELETE("/:id", s.deleteTask)
			taskRoutes.DELETE("/:id/purge", s.purgeTask)
		}

		recurringRoutes := v1.Group("/recurring")
		{
			recurringRoutes.POST("", s.createDefinition)
			recurringRoutes.GET("", s.listDefinitions)
			recurringRoutes.POST("/run", s.runRecurringTick)
		}

		v1.POST("/reminders/run", s.runReminderTick)

		notificationRoutes := v1.Group("/notifications")
		{
			notificationRoutes.GET("", s.listNotifications)
			notificationRoutes.POST("/:id/read", s.markNotificationRead)
			notificationRoutes.DELETE("/:id", s.deleteNotification)
			notificationRoutes.DELETE("", s.deleteAllNotifications)
		}
	}

	s.router = r
	return s
}

// Handler returns the router for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// actor extracts the caller context placed by the auth middleware.
func actor(c *gin.Context) (auth.Context, bool) {
	actor, ok := auth.FromGin(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "No token provided."})
	}
	return actor, ok
}

// writeError maps the error taxonomy to HTTP statuses.
func writeError(c *gin.Context, err error) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal error."})
		return
	}
	status := http.StatusInternalServerError
	switch e.Kind {
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindPrecondition:
		status = http.StatusConflict
	case apperr.KindPersistence:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"message": e.Message, "kind": e.Kind.String()})
}
