package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"template-service/models"
	"template-service/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ScenarioCreateRequest is one save action from the image generation flow.
type ScenarioCreateRequest struct {
	ProductKey       string
	Mode             models.ScenarioMode
	ImageURLs        []string
	RowIndices       []int
	GenerationID     string
	SourceTemplateID string
}

// ScenarioService records image-set mutations and drives restores. Scenarios
// are append-only history; the export engine replays them in creation order.
type ScenarioService struct {
	templates repository.TemplateRepo
	scenarios repository.ScenarioRepo
	overrides repository.OverrideRepo
}

func NewScenarioService(
	templates repository.TemplateRepo,
	scenarios repository.ScenarioRepo,
	overrides repository.OverrideRepo,
) *ScenarioService {
	return &ScenarioService{
		templates: templates,
		scenarios: scenarios,
		overrides: overrides,
	}
}

func (s *ScenarioService) CreateScenario(ctx context.Context, userID string, templateID uuid.UUID, req ScenarioCreateRequest) (*models.Scenario, error) {
	tmpl, err := findOwnedTemplate(ctx, s.templates, userID, templateID)
	if err != nil {
		return nil, err
	}
	if err := validateScenarioRequest(tmpl, &req); err != nil {
		return nil, err
	}

	sc := &models.Scenario{
		ID:               uuid.New(),
		TemplateID:       templateID,
		ProductKey:       req.ProductKey,
		RowMode:          tmpl.RowMode,
		Mode:             req.Mode,
		ImageURLs:        req.ImageURLs,
		RowIndices:       req.RowIndices,
		GenerationID:     req.GenerationID,
		SourceTemplateID: req.SourceTemplateID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.scenarios.Create(ctx, sc); err != nil {
		return nil, fmt.Errorf("failed to persist scenario: %w", err)
	}
	return sc, nil
}

// ListScenarios returns scenarios in creation order, optionally narrowed to
// one product.
func (s *ScenarioService) ListScenarios(ctx context.Context, userID string, templateID uuid.UUID, productKey string) ([]models.Scenario, error) {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return nil, err
	}
	if productKey != "" {
		return s.scenarios.FindByProduct(ctx, templateID, productKey)
	}
	return s.scenarios.FindByTemplate(ctx, templateID)
}

func (s *ScenarioService) DeleteScenario(ctx context.Context, userID string, templateID, scenarioID uuid.UUID) error {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return err
	}
	count, err := s.scenarios.DeleteByID(ctx, templateID, scenarioID)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	if count == 0 {
		return ErrScenarioNotFound
	}
	return nil
}

// RestoreProduct returns one product to its original images: every scenario
// for the product is deleted and its export override entry removed. The
// description overrides stay; text edits survive an image restore.
func (s *ScenarioService) RestoreProduct(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return err
	}
	if strings.TrimSpace(productKey) == "" {
		return newValidationError("productKey", "product key is required")
	}

	deleted, err := s.scenarios.DeleteByProduct(ctx, templateID, productKey)
	if err != nil {
		return fmt.Errorf("failed to delete product scenarios: %w", err)
	}

	doc, err := s.overrides.Get(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load overrides: %w", err)
	}
	if _, ok := doc.ExportOverrides[productKey]; ok {
		delete(doc.ExportOverrides, productKey)
		if err := s.overrides.Put(ctx, templateID, doc); err != nil {
			return fmt.Errorf("failed to clear export override: %w", err)
		}
	}

	zap.L().Info("product restored to original",
		zap.String("template", templateID.String()),
		zap.String("product_key", productKey),
		zap.Int64("scenarios_deleted", deleted))
	return nil
}

func validateScenarioRequest(tmpl *models.SpreadsheetTemplate, req *ScenarioCreateRequest) error {
	req.ProductKey = strings.TrimSpace(req.ProductKey)
	if req.ProductKey == "" {
		return newValidationError("productKey", "product key is required")
	}
	if !req.Mode.IsValid() {
		return newValidationError("mode", "unknown scenario mode %q", req.Mode)
	}

	perImageMode := req.Mode == models.ModeReplaceAllRowsPerImage || req.Mode == models.ModeAppendRowsPerImage
	if perImageMode != (tmpl.RowMode == models.RowModePerImage) {
		return newValidationError("mode", "mode %q does not match template row mode %q", req.Mode, tmpl.RowMode)
	}

	// A replace with zero images is a valid way to clear a product.
	for i, u := range req.ImageURLs {
		if strings.TrimSpace(u) == "" {
			return newValidationError("imageUrls", "image URL at index %d is empty", i)
		}
	}
	return nil
}
