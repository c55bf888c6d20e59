// Package handlers implements the HTTP API endpoints.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/partscout/partscout/pkg/errors"
	"github.com/partscout/partscout/pkg/types/common"
)

// requestIDKey is set by the logging middleware.
const requestIDKey = "request_id"

// respond writes the standard success envelope.
func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, common.APIResponse[interface{}]{
		Success:   true,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
		Timestamp: common.Now(),
	})
}

// respondError writes the standard error envelope, mapping the error
// code to an HTTP status.  Internal errors are masked.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	code := apperrors.GetCode(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, common.APIResponse[interface{}]{
		Success: false,
		Error: &common.ErrorDetail{
			Code:    code.String(),
			Message: message,
		},
		RequestID: c.GetString(requestIDKey),
		Timestamp: common.Now(),
	})
}
