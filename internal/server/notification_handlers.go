package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
)

func (s *Server) listNotifications(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	ns, err := s.notifications.ListForUser(c.Request.Context(), caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ns})
}

func (s *Server) markNotificationRead(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid notification id"})
		return
	}
	if err := s.notifications.MarkRead(c.Request.Context(), caller.UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read."})
}

func (s *Server) deleteNotification(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	id, err := uuid.FromString(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid notification id"})
		return
	}
	if err := s.notifications.Delete(c.Request.Context(), caller.UserID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted."})
}

func (s *Server) deleteAllNotifications(c *gin.Context) {
	caller, ok := actor(c)
	if !ok {
		return
	}
	if err := s.notifications.DeleteAll(c.Request.Context(), caller.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All notifications deleted."})
}
