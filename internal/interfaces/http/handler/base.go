package handler

import (
	"errors"
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	page, pageSize = dto.Pagination(page, pageSize)
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 for malformed path or query parameters
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrorInfo{
		Code:      dto.ErrCodeBadRequest,
		Message:   message,
		RequestID: middleware.GetRequestID(c),
	}))
}

// BindError reports a failed ShouldBind* as VALIDATION_FAILED
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	h.HandleError(c, shared.NewValidationError(middleware.BindingIssues(err)))
}

// HandleError maps a service error to its status through the code table.
// Unclassified errors become a logged 500 without leaking their text.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	info := dto.ErrorInfo{
		Code:      shared.CodeOf(err),
		RequestID: middleware.GetRequestID(c),
	}

	var verr *shared.ValidationError
	var ferr *shared.ImmutableFieldError
	switch {
	case errors.As(err, &verr):
		info.Message = "Request validation failed"
		info.Issues = verr.Issues
	case errors.As(err, &ferr):
		info.Message = ferr.Message
		info.Field = ferr.Field
	case info.Code != "":
		info.Message = err.Error()
	default:
		logger.L(c.Request.Context()).Error("Unhandled error",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		info.Code = dto.ErrCodeInternal
		info.Message = "An unexpected error occurred"
	}

	c.JSON(dto.GetHTTPStatus(info.Code), dto.NewErrorResponse(info))
}

// pathUUID parses the named path parameter, writing a 400 on failure
func (h *BaseHandler) pathUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+label+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// actor is the audit identity of the current request
func actor(c *gin.Context) string {
	return middleware.GetActor(c)
}
