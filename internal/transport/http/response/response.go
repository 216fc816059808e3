package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUsernameExists     = 40001
	CodeEmailExists        = 40002
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeUpstreamAuth       = 40102
	CodeNotFound           = 40400
	CodePayloadTooLarge    = 41300
	CodeTooManyRequests    = 42900 // upstream model quota
	CodeRateLimited        = 42901 // local per-IP limit
	CodeInternalServer     = 50000
	CodeUpstreamShape      = 50001
	CodeServiceUnavailable = 50300
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// JSON writes a success payload as-is; the browser client reads these shapes
// directly.
func JSON(c *gin.Context, data interface{}) {
	c.JSON(200, data)
}

func Message(c *gin.Context, message string) {
	c.JSON(200, gin.H{"message": message})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
