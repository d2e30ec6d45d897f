package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP.
func writeError(c *gin.Context, logger *zap.Logger, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, validationBody(err))
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "timeout"})
	case errors.Is(err, domain.ErrExternalLookup):
		logger.Error(action+" failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream store unavailable"})
	default:
		logger.Error(action+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not " + action})
	}
}

func validationBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	var (
		missing *domain.MissingFieldError
		options *domain.IncompatibleOptionsError
		types   *domain.IncompatibleTypeError
	)
	switch {
	case errors.As(err, &missing):
		body["reason"] = "missing_field"
		body["criterion_index"] = missing.CriterionIndex
	case errors.As(err, &options):
		body["reason"] = "incompatible_options"
		body["criterion_index"] = options.CriterionIndex
	case errors.As(err, &types):
		body["reason"] = "incompatible_type"
		body["criterion_index"] = types.CriterionIndex
	}
	return body
}
