// Package response renders the admin API's uniform JSON envelope.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conversion-guard/pkg/errors"
)

const (
	MessageSuccess          = "Success"
	DefaultErrorMessage     = "Something went wrong"
	InternalServerErrorCode = 500
)

type Resp struct {
	ErrorCode int    `json:"error_code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
}

// OK sends 200 JSON with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Resp{
		ErrorCode: 0,
		Message:   MessageSuccess,
		Data:      data,
	})
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context) {
	Error(c, errors.NewUnauthorizedHTTPError())
}

// Error sends the response matching err: *errors.HTTPError gets its own
// status and message, anything else is an opaque 500.
func Error(c *gin.Context, err error) {
	if httpErr, ok := err.(*errors.HTTPError); ok {
		statusCode := httpErr.StatusCode
		if statusCode == 0 {
			statusCode = http.StatusBadRequest
		}
		c.JSON(statusCode, Resp{
			ErrorCode: httpErr.Code,
			Message:   httpErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Resp{
		ErrorCode: InternalServerErrorCode,
		Message:   DefaultErrorMessage,
	})
}
