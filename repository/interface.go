package repository

import (
	"context"
	"errors"

	"template-service/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups when no document matches. Implementations
// map their driver's not-found error to this so callers stay driver-agnostic.
var ErrNotFound = errors.New("repository: not found")

// TemplateRepo defines the template collection operations used by the
// service layer. Interfaces use plain Go types (no mongo-driver types) so
// tests can swap in fakes.
type TemplateRepo interface {
	Create(ctx context.Context, tmpl *models.SpreadsheetTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.SpreadsheetTemplate, error)
	FindByUser(ctx context.Context, userID string) ([]models.SpreadsheetTemplate, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

// ScenarioRepo defines the scenario collection operations. Scenarios are
// append-only: there is no update.
type ScenarioRepo interface {
	Create(ctx context.Context, sc *models.Scenario) error
	FindByTemplate(ctx context.Context, templateID uuid.UUID) ([]models.Scenario, error)
	FindByProduct(ctx context.Context, templateID uuid.UUID, productKey string) ([]models.Scenario, error)
	DeleteByID(ctx context.Context, templateID, id uuid.UUID) (int64, error)
	DeleteByProduct(ctx context.Context, templateID uuid.UUID, productKey string) (int64, error)
	DeleteByTemplate(ctx context.Context, templateID uuid.UUID) (int64, error)
}

// OverrideRepo holds one override document per template. Get returns an
// empty document when none exists yet; Put replaces the whole document.
type OverrideRepo interface {
	Get(ctx context.Context, templateID uuid.UUID) (*models.OverrideDocument, error)
	Put(ctx context.Context, templateID uuid.UUID, doc *models.OverrideDocument) error
	Delete(ctx context.Context, templateID uuid.UUID) error
}
