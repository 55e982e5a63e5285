package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/repositories"
	"github.com/marwanhaqiqi/be-task-management-system-new/internal/validation"
)

// Response is the envelope every API reply uses.
type Response struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Data    interface{}         `json:"data,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
	Error   string              `json:"error,omitempty"`
}

func respondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondValidation(c *gin.Context, verr *validation.Errors) {
	c.JSON(http.StatusUnprocessableEntity, Response{
		Success: false,
		Message: "Validation Error",
		Errors:  verr.Fields,
	})
}

// ErrorResponder maps service errors onto the envelope.
type ErrorResponder struct {
	ExposeDetails bool
}

// handleTaskError writes 422 for validation failures, 404 for missing or
// foreign tasks and 500 with failMessage for everything else.
func (r ErrorResponder) handleTaskError(c *gin.Context, err error, failMessage string) {
	var verr *validation.Errors
	switch {
	case errors.As(err, &verr):
		respondValidation(c, verr)
	case errors.Is(err, repositories.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, Response{Success: false, Message: "Task not found"})
	default:
		log.Printf("❌ %s: %v", failMessage, err)
		resp := Response{Success: false, Message: failMessage}
		if r.ExposeDetails {
			resp.Error = err.Error()
		}
		c.JSON(http.StatusInternalServerError, resp)
	}
}
