package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"template-service/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ExportController handles the synchronous export download.
type ExportController struct {
	exportService ExportServiceAPI
	validator     *RequestValidator
	timeout       time.Duration
}

func NewExportController(es ExportServiceAPI, validator *RequestValidator) *ExportController {
	return &ExportController{
		exportService: es,
		validator:     validator,
		timeout:       DefaultContextTimeout,
	}
}

// Export builds the spreadsheet inline and streams it as an attachment in
// the original file's format.
func (ec *ExportController) Export(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	opts, err := ec.validator.ParseExportOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ec.timeout)
	defer cancel()

	file, err := ec.exportService.BuildExport(ctx, userID, id, opts)
	if err != nil {
		respondServiceError(c, err, "build export")
		return
	}

	zap.L().Info("export downloaded",
		zap.String("template", id.String()),
		zap.String("file", file.Filename),
		zap.Int("bytes", len(file.Data)))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
