package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/intern-portal-api/internal/models"
	appErrors "github.com/noah-isme/intern-portal-api/pkg/errors"
)

const diagnosticsKey = "response_diagnostics"

// Envelope represents the common response contract. Every response carries
// success and a human readable message.
type Envelope struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Code       string             `json:"code,omitempty"`
	Data       interface{}        `json:"data,omitempty"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
	Detail     string             `json:"detail,omitempty"`
}

// Diagnostics enables the detail field on error responses for the request.
// It must only be mounted outside production.
func Diagnostics(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(diagnosticsKey, enabled)
		c.Next()
	}
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, message string, data interface{}, pagination *models.Pagination) {
	noStore(c)
	c.JSON(status, Envelope{Success: true, Message: message, Data: data, Pagination: pagination})
}

// OK responds with HTTP 200.
func OK(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusOK, message, data, nil)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, message string, data interface{}) {
	JSON(c, http.StatusCreated, message, data, nil)
}

// Page responds with a paginated row set.
func Page(c *gin.Context, message string, rows interface{}, pagination *models.Pagination) {
	JSON(c, http.StatusOK, message, rows, pagination)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	env := Envelope{Success: false, Message: appErr.Message, Code: appErr.Code}
	if c.GetBool(diagnosticsKey) && appErr.Err != nil {
		env.Detail = appErr.Err.Error()
	}
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(appErr.Status, env)
}

// Abort writes the error response and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// Binary streams a stored blob with its mime type. When download is true the
// payload is sent as an attachment.
func Binary(c *gin.Context, filename, mimeType string, data []byte, download bool) {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	noStore(c)
	if download {
		if filename == "" {
			filename = "download"
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	c.Data(http.StatusOK, mimeType, data)
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}
