package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"foodMarketplace/internal/apperr"
	"foodMarketplace/internal/auth"
)

var codeToStatus = map[apperr.Code]int{
	apperr.CodeNotAuthenticated:  http.StatusUnauthorized,
	apperr.CodeNotFound:          http.StatusNotFound,
	apperr.CodeForbidden:         http.StatusForbidden,
	apperr.CodeInvalidTransition: http.StatusConflict,
	apperr.CodeValidation:        http.StatusBadRequest,
	apperr.CodeConflict:          http.StatusConflict,
	apperr.CodeInternal:          http.StatusInternalServerError,
}

// fail writes the uniform error envelope. Internal errors get a generic
// message; their cause is already logged at the service layer.
func (s *Server) fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status, ok := codeToStatus[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := err.Error()
	if code == apperr.CodeInternal {
		message = "internal error"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{"code": string(code), "message": message},
	})
}

// actor returns the authenticated actor; authRequired guarantees it is
// present on every /api route.
func (s *Server) actor(c *gin.Context) *auth.Actor {
	a, _ := auth.FromContext(c.Request.Context())
	return a
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "VALIDATION", "message": "invalid id"},
		})
		return 0, false
	}
	return id, true
}
