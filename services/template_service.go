package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"template-service/models"
	"template-service/repository"
	"template-service/sheet"
	"template-service/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var supportedFileTypes = map[string]bool{
	"csv":  true,
	"txt":  true,
	"xlsx": true,
	"xls":  true,
}

// TemplateCreateRequest carries the validated template upload payload. The
// file bytes travel separately so the service owns storage placement.
type TemplateCreateRequest struct {
	FileName     string
	FileType     string
	Columns      []models.Column
	RowMode      models.RowMode
	GroupByField models.ColumnRole
}

// TemplateService owns the template lifecycle: upload, lookup, delete with
// cascade. The original file bytes are written once and never touched again.
type TemplateService struct {
	templates repository.TemplateRepo
	scenarios repository.ScenarioRepo
	overrides repository.OverrideRepo
	blob      storage.BlobStore
}

func NewTemplateService(
	templates repository.TemplateRepo,
	scenarios repository.ScenarioRepo,
	overrides repository.OverrideRepo,
	blob storage.BlobStore,
) *TemplateService {
	return &TemplateService{
		templates: templates,
		scenarios: scenarios,
		overrides: overrides,
		blob:      blob,
	}
}

// CreateTemplate validates the column mapping, stores the original file in
// blob storage and persists the template document.
func (s *TemplateService) CreateTemplate(ctx context.Context, userID string, req TemplateCreateRequest, fileData []byte) (*models.SpreadsheetTemplate, error) {
	if err := validateTemplateRequest(&req); err != nil {
		return nil, err
	}
	if len(fileData) == 0 {
		return nil, newValidationError("file", "file is empty")
	}

	// Parse up front so a broken file is rejected at upload time, not at
	// first export.
	rows, err := sheet.ParseRows(fileData, req.FileType)
	if err != nil {
		return nil, newValidationError("file", "unable to parse file: %v", err)
	}
	if len(rows) == 0 {
		return nil, newValidationError("file", "file has no header row")
	}
	if len(rows[0]) != len(req.Columns) {
		return nil, newValidationError("columns",
			"column mapping has %d entries but the file header has %d", len(req.Columns), len(rows[0]))
	}

	now := time.Now().UTC()
	tmpl := &models.SpreadsheetTemplate{
		ID:               uuid.New(),
		UserID:           userID,
		Columns:          req.Columns,
		RowMode:          req.RowMode,
		GroupByField:     req.GroupByField,
		OriginalFileName: req.FileName,
		FileType:         req.FileType,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	tmpl.StoragePath = fmt.Sprintf("templates/%s/%s", tmpl.ID, req.FileName)

	if err := s.blob.Upload(ctx, tmpl.StoragePath, fileData, contentTypeFor(req.FileType)); err != nil {
		return nil, fmt.Errorf("failed to store original file: %w", err)
	}
	if err := s.templates.Create(ctx, tmpl); err != nil {
		// Best-effort cleanup of the orphaned blob.
		if delErr := s.blob.Delete(ctx, tmpl.StoragePath); delErr != nil {
			zap.L().Warn("failed to clean up orphaned template file",
				zap.String("path", tmpl.StoragePath), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to persist template: %w", err)
	}

	return tmpl, nil
}

func (s *TemplateService) GetTemplate(ctx context.Context, userID string, id uuid.UUID) (*models.SpreadsheetTemplate, error) {
	return findOwnedTemplate(ctx, s.templates, userID, id)
}

func (s *TemplateService) ListTemplates(ctx context.Context, userID string) ([]models.SpreadsheetTemplate, error) {
	return s.templates.FindByUser(ctx, userID)
}

// DeleteTemplate removes the template and cascades to its scenarios, its
// override document and the stored original file.
func (s *TemplateService) DeleteTemplate(ctx context.Context, userID string, id uuid.UUID) error {
	tmpl, err := findOwnedTemplate(ctx, s.templates, userID, id)
	if err != nil {
		return err
	}

	count, err := s.templates.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if count == 0 {
		return ErrTemplateNotFound
	}

	if _, err := s.scenarios.DeleteByTemplate(ctx, id); err != nil {
		zap.L().Error("failed to cascade scenario delete", zap.String("template", id.String()), zap.Error(err))
	}
	if err := s.overrides.Delete(ctx, id); err != nil {
		zap.L().Error("failed to cascade override delete", zap.String("template", id.String()), zap.Error(err))
	}
	if err := s.blob.Delete(ctx, tmpl.StoragePath); err != nil {
		zap.L().Error("failed to delete original file", zap.String("path", tmpl.StoragePath), zap.Error(err))
	}

	return nil
}

// GetRows downloads the original file and returns its parsed 2-D rows,
// header first.
func (s *TemplateService) GetRows(ctx context.Context, userID string, id uuid.UUID) ([][]string, error) {
	tmpl, err := findOwnedTemplate(ctx, s.templates, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := s.blob.Download(ctx, tmpl.StoragePath)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSourceFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download original file: %w", err)
	}

	return sheet.ParseRows(data, tmpl.FileType)
}

// PresignUpload returns a presigned PUT URL so the browser can ship the
// original file straight to blob storage, plus the key to reference it by.
func (s *TemplateService) PresignUpload(ctx context.Context, userID, filename, contentType string, expires time.Duration) (string, string, error) {
	if strings.TrimSpace(filename) == "" {
		return "", "", newValidationError("filename", "filename is required")
	}

	key := fmt.Sprintf("uploads/%s/%s-%s", userID, uuid.New(), filename)
	url, err := s.blob.PresignPut(ctx, key, contentType, expires)
	if err != nil {
		return "", "", fmt.Errorf("failed to presign upload: %w", err)
	}
	return url, key, nil
}

// findOwnedTemplate loads a template and enforces ownership. A template
// belonging to another user is indistinguishable from a missing one.
func findOwnedTemplate(ctx context.Context, repo repository.TemplateRepo, userID string, id uuid.UUID) (*models.SpreadsheetTemplate, error) {
	tmpl, err := repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if tmpl.UserID != userID {
		return nil, ErrTemplateNotFound
	}
	return tmpl, nil
}

func validateTemplateRequest(req *TemplateCreateRequest) error {
	req.FileType = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.FileType), "."))
	if !supportedFileTypes[req.FileType] {
		return newValidationError("fileType", "unsupported file type %q", req.FileType)
	}
	if strings.TrimSpace(req.FileName) == "" {
		return newValidationError("fileName", "file name is required")
	}
	if len(req.Columns) == 0 {
		return newValidationError("columns", "at least one column is required")
	}

	if req.RowMode == "" {
		req.RowMode = models.RowModePerProduct
	}
	if req.RowMode != models.RowModePerProduct && req.RowMode != models.RowModePerImage {
		return newValidationError("rowMode", "unknown row mode %q", req.RowMode)
	}

	if req.RowMode == models.RowModePerImage {
		if req.GroupByField == "" {
			req.GroupByField = models.RoleProductID
		}
		if req.GroupByField != models.RoleProductID && req.GroupByField != models.RoleSKU {
			return newValidationError("groupByField", "must be product_id or sku")
		}
	}

	// image_url may repeat across columns; every other named role is unique.
	seen := make(map[models.ColumnRole]bool)
	hasImage := false
	for _, col := range req.Columns {
		if col.Role == models.RoleImageURL {
			hasImage = true
			continue
		}
		if col.Role == "" || col.Role == models.RoleIgnore {
			continue
		}
		if seen[col.Role] {
			return newValidationError("columns", "role %q mapped to more than one column", col.Role)
		}
		seen[col.Role] = true
	}
	if !hasImage {
		return newValidationError("columns", "at least one image_url column is required")
	}

	return nil
}

func contentTypeFor(fileType string) string {
	switch fileType {
	case "csv", "txt":
		return "text/csv"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "xls":
		return "application/vnd.ms-excel"
	}
	return "application/octet-stream"
}
