package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"template-service/middleware"

	"github.com/gin-gonic/gin"
)

// OverrideController handles export-override and description upserts.
type OverrideController struct {
	overrideService OverrideServiceAPI
	validator       *RequestValidator
	timeout         time.Duration
}

func NewOverrideController(os OverrideServiceAPI, validator *RequestValidator) *OverrideController {
	return &OverrideController{
		overrideService: os,
		validator:       validator,
		timeout:         DefaultContextTimeout,
	}
}

func (oc *OverrideController) GetOverrides(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), oc.timeout)
	defer cancel()

	doc, err := oc.overrideService.GetOverrides(ctx, userID, id)
	if err != nil {
		respondServiceError(c, err, "get overrides")
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (oc *OverrideController) UpsertOverride(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	req, err := oc.validator.ParseUpsertOverrideRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), oc.timeout)
	defer cancel()

	ov, err := oc.overrideService.UpsertExportOverride(ctx, userID, id, req)
	if err != nil {
		respondServiceError(c, err, "save override")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_key": req.ProductKey, "override": ov})
}

// DeleteOverrides deletes one product's export override when productKey is
// given, or the whole override document when it is not.
func (oc *OverrideController) DeleteOverrides(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), oc.timeout)
	defer cancel()

	productKey := strings.TrimSpace(c.Query("productKey"))
	if productKey == "" {
		if err := oc.overrideService.DeleteAllOverrides(ctx, userID, id); err != nil {
			respondServiceError(c, err, "delete overrides")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "All overrides deleted"})
		return
	}

	if err := oc.overrideService.DeleteExportOverride(ctx, userID, id, productKey); err != nil {
		respondServiceError(c, err, "delete override")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Override deleted"})
}

func (oc *OverrideController) UpsertDescription(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	req, err := oc.validator.ParseUpsertDescriptionRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), oc.timeout)
	defer cancel()

	if err := oc.overrideService.UpsertDescription(ctx, userID, id, req); err != nil {
		respondServiceError(c, err, "save description")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Description saved"})
}
