package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"template-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScenarioController handles scenario creation, listing and restores.
type ScenarioController struct {
	scenarioService ScenarioServiceAPI
	validator       *RequestValidator
	timeout         time.Duration
}

func NewScenarioController(ss ScenarioServiceAPI, validator *RequestValidator) *ScenarioController {
	return &ScenarioController{
		scenarioService: ss,
		validator:       validator,
		timeout:         DefaultContextTimeout,
	}
}

func (sc *ScenarioController) CreateScenario(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	req, err := sc.validator.ParseCreateScenarioRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	scenario, err := sc.scenarioService.CreateScenario(ctx, userID, id, req)
	if err != nil {
		respondServiceError(c, err, "create scenario")
		return
	}
	c.JSON(http.StatusCreated, scenario)
}

// ListScenarios returns the template's scenarios in creation order; the
// optional productKey query narrows to one product.
func (sc *ScenarioController) ListScenarios(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	scenarios, err := sc.scenarioService.ListScenarios(ctx, userID, id, strings.TrimSpace(c.Query("productKey")))
	if err != nil {
		respondServiceError(c, err, "list scenarios")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}

func (sc *ScenarioController) DeleteScenario(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}
	scenarioID, err := uuid.Parse(c.Param("scenarioId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid scenario ID format"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	if err := sc.scenarioService.DeleteScenario(ctx, userID, id, scenarioID); err != nil {
		respondServiceError(c, err, "delete scenario")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scenario deleted"})
}

// RestoreProduct deletes all scenarios for one product and clears its export
// override, returning the product to its original images on the next export.
func (sc *ScenarioController) RestoreProduct(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	id, ok := parseTemplateID(c)
	if !ok {
		return
	}
	productKey := strings.TrimSpace(c.Query("productKey"))
	if productKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productKey query parameter is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.timeout)
	defer cancel()

	if err := sc.scenarioService.RestoreProduct(ctx, userID, id, productKey); err != nil {
		respondServiceError(c, err, "restore product")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product restored to original"})
}
