package controllers

import (
	"errors"
	"net/http"

	"template-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// parseTemplateID reads the :id route parameter as a UUID, writing the 400
// itself on failure.
func parseTemplateID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid template ID format"})
		return uuid.Nil, false
	}
	return id, true
}

// respondServiceError maps service errors onto HTTP responses: validation
// errors are 400 with the message verbatim, the not-found sentinels are 404,
// anything else is logged and becomes an opaque 500.
func respondServiceError(c *gin.Context, err error, action string) {
	if services.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch {
	case errors.Is(err, services.ErrTemplateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
	case errors.Is(err, services.ErrScenarioNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Scenario not found"})
	case errors.Is(err, services.ErrOverrideNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Override not found"})
	case errors.Is(err, services.ErrSourceFileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Source spreadsheet file not found"})
	default:
		zap.L().Error("Failed to "+action, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action})
	}
}
