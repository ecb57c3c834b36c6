package controllers

import (
	"context"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"template-service/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PresignedURLHandler hands out presigned S3 PUT URLs so browsers upload
// source spreadsheets directly, bypassing the service.
type PresignedURLHandler struct {
	templateService TemplateServiceAPI
	timeout         time.Duration
}

func NewPresignedURLHandler(ts TemplateServiceAPI) *PresignedURLHandler {
	return &PresignedURLHandler{
		templateService: ts,
		timeout:         DefaultContextTimeout,
	}
}

// GetPresignUpload returns a presigned URL for direct S3 upload.
func (h *PresignedURLHandler) GetPresignUpload(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	filename := strings.TrimSpace(c.Query("filename"))
	if filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename query parameter is required"})
		return
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedSpreadsheetExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only CSV, XLS and XLSX files are allowed"})
		return
	}

	contentType := c.DefaultQuery("content_type", "application/octet-stream")
	expires := parseExpiresSeconds(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	uploadURL, key, err := h.templateService.PresignUpload(ctx, userID, filepath.Base(filename), contentType, time.Duration(expires)*time.Second)
	if err != nil {
		zap.L().Error("Failed to generate presigned upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate presigned upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": uploadURL,
		"method":     "PUT",
		"key":        key,
		"expires_in": expires,
	})
}

func parseExpiresSeconds(c *gin.Context) int64 {
	expiresStr := c.DefaultQuery("expires", "900")
	expires, err := strconv.ParseInt(expiresStr, 10, 64)
	if err != nil || expires <= 0 {
		expires = 900
	}
	// Cap at 1 hour
	if expires > 3600 {
		expires = 3600
	}
	return expires
}
