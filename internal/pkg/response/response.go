// internal/pkg/response/response.go
package response

import (
	"errors"
	"net/http"

	xerrors "storefront-crm/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// Response defines the standard API response format.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success sends a successful response with a message and optional data.
func Success(c *gin.Context, status int, message string, data interface{}) {
	if status == 0 {
		status = http.StatusOK
	}

	c.JSON(status, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends a standardized error response.
func Error(c *gin.Context, code int, message string, err error, data ...interface{}) {
	// Abort before writing so later handlers in the chain do not run.
	c.Abort()

	response := Response{
		Success: false,
		Message: message,
	}

	if err != nil {
		response.Error = err.Error()
	}

	if len(data) > 0 {
		response.Data = data[0]
	}

	c.JSON(code, response)
}

// ValidationError sends a 400 Bad Request response for invalid input.
func ValidationError(c *gin.Context, message string, err error) {
	Error(c, http.StatusBadRequest, message, err)
}

// Unauthorized sends a 401 Unauthorized response.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 Forbidden response.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 Not Found response.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// Conflict sends a 409 with the conflict's user-facing message.
func Conflict(c *gin.Context, err error) {
	Error(c, http.StatusConflict, err.Error(), err)
}

// FromError maps a service error onto the matching status code. Unknown
// errors become a 500 whose message is the fallback and whose detail is hidden.
func FromError(c *gin.Context, fallback string, err error) {
	var conflict *xerrors.ConflictError
	switch {
	case errors.As(err, &conflict):
		Conflict(c, conflict)
	case errors.Is(err, xerrors.ErrConflict):
		Error(c, http.StatusConflict, fallback, err)
	case errors.Is(err, xerrors.ErrNotFound):
		NotFound(c, fallback+": not found")
	case errors.Is(err, xerrors.ErrInvalidInput),
		errors.Is(err, xerrors.ErrBadRequest),
		errors.Is(err, xerrors.ErrInvalidReference):
		ValidationError(c, fallback, err)
	case errors.Is(err, xerrors.ErrInvalidTransition):
		Error(c, http.StatusUnprocessableEntity, fallback, err)
	case errors.Is(err, xerrors.ErrForbidden):
		Forbidden(c, fallback+": forbidden")
	case errors.Is(err, xerrors.ErrUnauthorized):
		Unauthorized(c, fallback+": unauthorized")
	default:
		Error(c, http.StatusInternalServerError, fallback, nil)
	}
}
