package controllers

import (
	"context"
	"time"

	"template-service/models"
	"template-service/services"

	"github.com/google/uuid"
)

// DefaultContextTimeout bounds every request's downstream work.
const DefaultContextTimeout = 30 * time.Second

// TemplateServiceAPI defines the template operations the handlers need.
type TemplateServiceAPI interface {
	CreateTemplate(ctx context.Context, userID string, req services.TemplateCreateRequest, fileData []byte) (*models.SpreadsheetTemplate, error)
	GetTemplate(ctx context.Context, userID string, id uuid.UUID) (*models.SpreadsheetTemplate, error)
	ListTemplates(ctx context.Context, userID string) ([]models.SpreadsheetTemplate, error)
	DeleteTemplate(ctx context.Context, userID string, id uuid.UUID) error
	GetRows(ctx context.Context, userID string, id uuid.UUID) ([][]string, error)
	PresignUpload(ctx context.Context, userID, filename, contentType string, expires time.Duration) (string, string, error)
}

// ScenarioServiceAPI defines the scenario operations the handlers need.
type ScenarioServiceAPI interface {
	CreateScenario(ctx context.Context, userID string, templateID uuid.UUID, req services.ScenarioCreateRequest) (*models.Scenario, error)
	ListScenarios(ctx context.Context, userID string, templateID uuid.UUID, productKey string) ([]models.Scenario, error)
	DeleteScenario(ctx context.Context, userID string, templateID, scenarioID uuid.UUID) error
	RestoreProduct(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error
}

// OverrideServiceAPI defines the override operations the handlers need.
type OverrideServiceAPI interface {
	GetOverrides(ctx context.Context, userID string, templateID uuid.UUID) (*models.OverrideDocument, error)
	UpsertExportOverride(ctx context.Context, userID string, templateID uuid.UUID, req services.ExportOverrideRequest) (*models.ExportOverride, error)
	DeleteExportOverride(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error
	DeleteAllOverrides(ctx context.Context, userID string, templateID uuid.UUID) error
	UpsertDescription(ctx context.Context, userID string, templateID uuid.UUID, req services.DescriptionRequest) error
}

// ExportServiceAPI defines the export operations the handlers need.
type ExportServiceAPI interface {
	BuildExport(ctx context.Context, userID string, templateID uuid.UUID, opts services.ExportOptions) (*services.ExportFile, error)
}
