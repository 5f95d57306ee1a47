package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// RetryAfterSeconds is advertised on responses for retryable errors.
const RetryAfterSeconds = 1

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Code    ErrorCode   `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

// RespondAppError maps a service error onto its HTTP status. Internal causes
// never reach the client.
func RespondAppError(c *gin.Context, err error) {
	appErr := AsAppError(err)
	meta := MetadataFor(appErr.Code)

	message := appErr.Message
	if appErr.Code == CodeInternal {
		message = meta.PublicMessage
	}

	resp := JSONResponse{
		Status:  false,
		Message: message,
		Code:    appErr.Code,
	}
	if meta.DetailsAllowed {
		resp.Errors = appErr.Details
	}
	if meta.Retryable {
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
	}
	c.JSON(meta.HTTPStatus, resp)
}
