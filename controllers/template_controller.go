package controllers

import (
	"context"
	"net/http"
	"time"

	"template-service/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TemplateController handles the template lifecycle endpoints.
type TemplateController struct {
	templateService TemplateServiceAPI
	validator       *RequestValidator
	timeout         time.Duration
}

func NewTemplateController(ts TemplateServiceAPI, validator *RequestValidator) *TemplateController {
	return &TemplateController{
		templateService: ts,
		validator:       validator,
		timeout:         DefaultContextTimeout,
	}
}

// CreateTemplate handles the multipart upload of a new spreadsheet template.
func (tc *TemplateController) CreateTemplate(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	req, fileData, err := tc.validator.ParseCreateTemplateRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), tc.timeout)
	defer cancel()

	tmpl, err := tc.templateService.CreateTemplate(ctx, userID, req, fileData)
	if err != nil {
		respondServiceError(c, err, "create template")
		return
	}

	zap.L().Info("template created",
		zap.String("template", tmpl.ID.String()),
		zap.String("user", userID),
		zap.String("file_type", tmpl.FileType))
	c.JSON(http.StatusCreated, tmpl)
}

// ListTemplates returns the caller's templates, newest first.
func (tc *TemplateController) ListTemplates(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), tc.timeout)
	defer cancel()

	templates, err := tc.templateService.ListTemplates(ctx, userID)
	if err != nil {
		respondServiceError(c, err, "list templates")
		return
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

func (tc *TemplateController) GetTemplate(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), tc.timeout)
	defer cancel()

	tmpl, err := tc.templateService.GetTemplate(ctx, userID, id)
	if err != nil {
		respondServiceError(c, err, "get template")
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

func (tc *TemplateController) DeleteTemplate(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), tc.timeout)
	defer cancel()

	if err := tc.templateService.DeleteTemplate(ctx, userID, id); err != nil {
		respondServiceError(c, err, "delete template")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Template deleted"})
}

// GetRows returns the parsed 2-D contents of the original file, header first.
func (tc *TemplateController) GetRows(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), tc.timeout)
	defer cancel()

	rows, err := tc.templateService.GetRows(ctx, userID, id)
	if err != nil {
		respondServiceError(c, err, "read template rows")
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
