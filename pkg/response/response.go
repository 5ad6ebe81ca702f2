package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ServiGo-Platform/service-marketplace/pkg/domain"
)

// Envelope is the uniform response body: {success, message?, data?, error?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Success writes a 200 response with the given data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// SuccessMessage writes a 200 response with data and a human-readable message.
func SuccessMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 response with the given data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// CreatedMessage writes a 201 response with data and a message.
func CreatedMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// BadRequest writes a 400 response with the given error message.
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Error: msg})
}

// Unauthorized writes a 401 response with the given error message.
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, Envelope{Success: false, Error: msg})
}

// Paginated writes a 200 response with a paged list and count/total/page/pages.
func Paginated[T any](c *gin.Context, items []T, total int64, page, limit int) {
	pages := domain.NewPaginatedResult(items, total, page, limit).Pages()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"total":   total,
		"page":    page,
		"pages":   pages,
		"data":    items,
	})
}

// List writes a 200 response with an unpaged list and its count.
func List[T any](c *gin.Context, items []T) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// Error maps a domain error kind to an HTTP status and writes the envelope.
// Non-domain errors are reported as 500 without leaking internals.
func Error(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status, msg = http.StatusBadRequest, err.Error()
	case domain.KindNotFound:
		status, msg = http.StatusNotFound, err.Error()
	case domain.KindForbidden:
		status, msg = http.StatusForbidden, err.Error()
	case domain.KindUnauthorized:
		status, msg = http.StatusUnauthorized, err.Error()
	case domain.KindConflict:
		status, msg = http.StatusConflict, err.Error()
	}

	c.JSON(status, Envelope{Success: false, Error: msg})
}
