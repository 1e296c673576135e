package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mini-page/Secura/internal/server/services"
)

func (s *Server) handleActivity(c *gin.Context) {
	entries, err := s.activity.List(c.Request.Context(),
		c.GetString(ctxUserID), c.GetString(ctxRole), parseLimit(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context(), c.GetString(ctxRole))
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (s *Server) handleAdminAudit(c *gin.Context) {
	entries, err := s.activity.List(c.Request.Context(),
		c.GetString(ctxUserID), c.GetString(ctxRole), parseLimit(c))
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// parseLimit reads the optional limit query parameter; anything
// non-positive or unparsable falls back to the service default.
func parseLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return services.DefaultAuditLimit
	}
	return n
}
