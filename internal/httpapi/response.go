package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wuyiadepoju/subscription-billing/internal/app/subscription/domain"
)

// Response represents a standard API response
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func successJSON(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Success: true, Message: "success", Data: data})
}

func errorJSON(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// statusFor maps an error kind to its HTTP status. A dependency fault wins
// over whatever kind its cause carries.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrDependency):
		return http.StatusInternalServerError
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError hides dependency details from clients; they are already logged
// by the use case.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		errorJSON(c, status, "internal error")
		return
	}
	errorJSON(c, status, err.Error())
}
