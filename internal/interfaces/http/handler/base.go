package handler

import (
	"errors"
	"net/http"

	domainledger "github.com/airp/ledger/internal/domain/ledger"
	"github.com/airp/ledger/internal/domain/shared"
	"github.com/airp/ledger/internal/interfaces/http/dto"
	"github.com/airp/ledger/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with an explicit status
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// DomainError maps a domain or validation error to its HTTP response.
// Anything without a stable code is an internal error; the message is not
// leaked to the client.
func (h *BaseHandler) DomainError(c *gin.Context, err error) {
	code, message := classify(err)
	if code == dto.ErrCodeInternal {
		h.InternalError(c, "internal error")
		return
	}
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func classify(err error) (code, message string) {
	var validationErr *domainledger.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Code, validationErr.Message
	}
	var unbalanced *domainledger.UnbalancedEntryError
	if errors.As(err, &unbalanced) {
		return unbalanced.ValidationCode(), unbalanced.Error()
	}
	var missingDim *domainledger.MissingSubledgerDimensionError
	if errors.As(err, &missingDim) {
		return missingDim.ValidationCode(), missingDim.Error()
	}
	var unresolvable *domainledger.UnresolvableAccountError
	if errors.As(err, &unresolvable) {
		return unresolvable.ValidationCode(), unresolvable.Error()
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code, domainErr.Message
	}
	return dto.ErrCodeInternal, err.Error()
}
