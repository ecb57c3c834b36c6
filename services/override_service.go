package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"template-service/models"
	"template-service/repository"

	"github.com/google/uuid"
)

// ExportOverrideRequest upserts the materialized image state for one product.
type ExportOverrideRequest struct {
	ProductKey             string
	Images                 []string
	Categories             []string
	SourceTemplateID       string
	IsNewProduct           bool
	ProductID              string
	SKU                    string
	AddPosition            models.AddPosition
	InsertBeforeProductKey string
}

// DescriptionRequest upserts one text field for one product.
type DescriptionRequest struct {
	ProductKey      string
	DescriptionType string
	Content         string
}

// OverrideService maintains the per-template override document. Every write
// is a read-modify-write of the whole document.
type OverrideService struct {
	templates repository.TemplateRepo
	overrides repository.OverrideRepo
}

func NewOverrideService(templates repository.TemplateRepo, overrides repository.OverrideRepo) *OverrideService {
	return &OverrideService{templates: templates, overrides: overrides}
}

func (s *OverrideService) GetOverrides(ctx context.Context, userID string, templateID uuid.UUID) (*models.OverrideDocument, error) {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return nil, err
	}
	return s.overrides.Get(ctx, templateID)
}

func (s *OverrideService) UpsertExportOverride(ctx context.Context, userID string, templateID uuid.UUID, req ExportOverrideRequest) (*models.ExportOverride, error) {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return nil, err
	}
	if err := validateOverrideRequest(&req); err != nil {
		return nil, err
	}

	doc, err := s.overrides.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	ov := models.ExportOverride{
		Images:                 req.Images,
		Categories:             req.Categories,
		UpdatedAt:              time.Now().UTC(),
		SourceTemplateID:       req.SourceTemplateID,
		IsNewProduct:           req.IsNewProduct,
		ProductID:              req.ProductID,
		SKU:                    req.SKU,
		AddPosition:            req.AddPosition,
		InsertBeforeProductKey: req.InsertBeforeProductKey,
	}
	doc.ExportOverrides[req.ProductKey] = ov

	if err := s.overrides.Put(ctx, templateID, doc); err != nil {
		return nil, fmt.Errorf("failed to save override: %w", err)
	}
	return &ov, nil
}

func (s *OverrideService) DeleteExportOverride(ctx context.Context, userID string, templateID uuid.UUID, productKey string) error {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return err
	}
	doc, err := s.overrides.Get(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load overrides: %w", err)
	}
	if _, ok := doc.ExportOverrides[productKey]; !ok {
		return ErrOverrideNotFound
	}
	delete(doc.ExportOverrides, productKey)
	if err := s.overrides.Put(ctx, templateID, doc); err != nil {
		return fmt.Errorf("failed to save overrides: %w", err)
	}
	return nil
}

// DeleteAllOverrides drops the whole override document, export and
// description overrides alike.
func (s *OverrideService) DeleteAllOverrides(ctx context.Context, userID string, templateID uuid.UUID) error {
	if _, err := findOwnedTemplate(ctx, s.templates, userID, templateID); err != nil {
		return err
	}
	if err := s.overrides.Delete(ctx, templateID); err != nil {
		return fmt.Errorf("failed to delete overrides: %w", err)
	}
	return nil
}

func (s *OverrideService) UpsertDescription(ctx context.Context, userID string, templateID uuid.UUID, req DescriptionRequest) error {
	tmpl, err := findOwnedTemplate(ctx, s.templates, userID, templateID)
	if err != nil {
		return err
	}

	req.ProductKey = strings.TrimSpace(req.ProductKey)
	req.DescriptionType = strings.TrimSpace(req.DescriptionType)
	if req.ProductKey == "" {
		return newValidationError("productKey", "product key is required")
	}
	if req.DescriptionType == "" {
		return newValidationError("descriptionType", "description type is required")
	}
	if firstColumnWithRole(tmpl.Columns, models.ColumnRole(req.DescriptionType)) < 0 {
		return newValidationError("descriptionType", "no column mapped to role %q", req.DescriptionType)
	}

	doc, err := s.overrides.Get(ctx, templateID)
	if err != nil {
		return fmt.Errorf("failed to load overrides: %w", err)
	}

	desc := doc.DescriptionOverrides[req.ProductKey]
	if desc.Fields == nil {
		desc.Fields = make(map[string]string)
	}
	desc.Fields[req.DescriptionType] = req.Content
	desc.UpdatedAt = time.Now().UTC()
	doc.DescriptionOverrides[req.ProductKey] = desc

	if err := s.overrides.Put(ctx, templateID, doc); err != nil {
		return fmt.Errorf("failed to save description: %w", err)
	}
	return nil
}

func validateOverrideRequest(req *ExportOverrideRequest) error {
	req.ProductKey = strings.TrimSpace(req.ProductKey)
	if req.ProductKey == "" {
		return newValidationError("productKey", "product key is required")
	}
	for i, u := range req.Images {
		if strings.TrimSpace(u) == "" {
			return newValidationError("images", "image URL at index %d is empty", i)
		}
	}
	if req.IsNewProduct {
		if req.ProductID == "" {
			return newValidationError("productId", "a new product needs a product id")
		}
		if req.SKU == "" {
			return newValidationError("sku", "a new product needs a SKU")
		}
		if req.AddPosition == "" {
			req.AddPosition = models.AddPositionLast
		}
		if req.AddPosition != models.AddPositionLast && req.AddPosition != models.AddPositionBefore {
			return newValidationError("addPosition", "must be %q or %q", models.AddPositionLast, models.AddPositionBefore)
		}
		if req.AddPosition == models.AddPositionBefore && req.InsertBeforeProductKey == "" {
			return newValidationError("insertBeforeProductKey", "required when addPosition is %q", models.AddPositionBefore)
		}
	}
	return nil
}

func firstColumnWithRole(cols []models.Column, role models.ColumnRole) int {
	for i, col := range cols {
		if col.Role == role {
			return i
		}
	}
	return -1
}
