package controllers

import (
	"context"
	"time"

	"template-service/middleware"
	"template-service/models"
	"template-service/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeTemplateService struct {
	createFn  func(ctx context.Context, userID string, req services.TemplateCreateRequest, fileData []byte) (*models.SpreadsheetTemplate, error)
	getFn     func(ctx context.Context, userID string, id uuid.UUID) (*models.SpreadsheetTemplate, error)
	listFn    func(ctx context.Context, userID string) ([]models.SpreadsheetTemplate, error)
	deleteFn  func(ctx context.Context, userID string, id uuid.UUID) error
	rowsFn    func(ctx context.Context, userID string, id uuid.UUID) ([][]string, error)
	presignFn func(ctx context.Context, userID, filename, contentType string, expires time.Duration) (string, string, error)
}

func (f *fakeTemplateService) CreateTemplate(ctx context.Context, userID string, req services.TemplateCreateRequest, fileData []byte) (*models.SpreadsheetTemplate, error) {
	return f.createFn(ctx, userID, req, fileData)
}

func (f *fakeTemplateService) GetTemplate(ctx context.Context, userID string, id uuid.UUID) (*models.SpreadsheetTemplate, error) {
	return f.getFn(ctx, userID, id)
}

func (f *fakeTemplateService) ListTemplates(ctx context.Context, userID string) ([]models.SpreadsheetTemplate, error) {
	return f.listFn(ctx, userID)
}

func (f *fakeTemplateService) DeleteTemplate(ctx context.Context, userID string, id uuid.UUID) error {
	return f.deleteFn(ctx, userID, id)
}

func (f *fakeTemplateService) GetRows(ctx context.Context, userID string, id uuid.UUID) ([][]string, error) {
	return f.rowsFn(ctx, userID, id)
}

func (f *fakeTemplateService) PresignUpload(ctx context.Context, userID, filename, contentType string, expires time.Duration) (string, string, error) {
	return f.presignFn(ctx, userID, filename, contentType, expires)
}

type fakeScenarioService struct {
	createFn  func(ctx context.Context, userID string, templateID uuid.UUID, req services.ScenarioCreateRequest) (*models.Scenario, error)
	listFn    func(ctx context.Context, userID string, templateID uuid.UUID, productKey string) ([]models.Scenario, error)
	deleteFn  func(ctx context.Context, userID string, templateID, scenarioID uuid.UUID) error
	restoreFn func(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error
}

func (f *fakeScenarioService) CreateScenario(ctx context.Context, userID string, templateID uuid.UUID, req services.ScenarioCreateRequest) (*models.Scenario, error) {
	return f.createFn(ctx, userID, templateID, req)
}

func (f *fakeScenarioService) ListScenarios(ctx context.Context, userID string, templateID uuid.UUID, productKey string) ([]models.Scenario, error) {
	return f.listFn(ctx, userID, templateID, productKey)
}

func (f *fakeScenarioService) DeleteScenario(ctx context.Context, userID string, templateID, scenarioID uuid.UUID) error {
	return f.deleteFn(ctx, userID, templateID, scenarioID)
}

func (f *fakeScenarioService) RestoreProduct(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error {
	return f.restoreFn(ctx, userID, templateID, productKey)
}

type fakeOverrideService struct {
	getFn         func(ctx context.Context, userID string, templateID uuid.UUID) (*models.OverrideDocument, error)
	upsertFn      func(ctx context.Context, userID string, templateID uuid.UUID, req services.ExportOverrideRequest) (*models.ExportOverride, error)
	deleteFn      func(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error
	deleteAllFn   func(ctx context.Context, userID string, templateID uuid.UUID) error
	descriptionFn func(ctx context.Context, userID string, templateID uuid.UUID, req services.DescriptionRequest) error
}

func (f *fakeOverrideService) GetOverrides(ctx context.Context, userID string, templateID uuid.UUID) (*models.OverrideDocument, error) {
	return f.getFn(ctx, userID, templateID)
}

func (f *fakeOverrideService) UpsertExportOverride(ctx context.Context, userID string, templateID uuid.UUID, req services.ExportOverrideRequest) (*models.ExportOverride, error) {
	return f.upsertFn(ctx, userID, templateID, req)
}

func (f *fakeOverrideService) DeleteExportOverride(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error {
	return f.deleteFn(ctx, userID, templateID, productKey)
}

func (f *fakeOverrideService) DeleteAllOverrides(ctx context.Context, userID string, templateID uuid.UUID) error {
	return f.deleteAllFn(ctx, userID, templateID)
}

func (f *fakeOverrideService) UpsertDescription(ctx context.Context, userID string, templateID uuid.UUID, req services.DescriptionRequest) error {
	return f.descriptionFn(ctx, userID, templateID, req)
}

type fakeExportService struct {
	buildFn func(ctx context.Context, userID string, templateID uuid.UUID, opts services.ExportOptions) (*services.ExportFile, error)
}

func (f *fakeExportService) BuildExport(ctx context.Context, userID string, templateID uuid.UUID, opts services.ExportOptions) (*services.ExportFile, error) {
	return f.buildFn(ctx, userID, templateID, opts)
}

// testRouter returns a router that injects a fixed caller identity, the way
// the auth middleware would after validating gateway headers.
func testRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if userID != "" {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.UserContextKey, userID)
			c.Next()
		})
	}
	return r
}
