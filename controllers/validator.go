package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"template-service/models"
	"template-service/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Validation constants
const (
	MaxUploadSize = 50 * 1024 * 1024 // 50MB
)

var allowedSpreadsheetExtensions = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xls":  true,
	".xlsx": true,
}

// CreateTemplateForm is the multipart payload for a template upload. The
// column mapping arrives as a JSON string field next to the file.
type CreateTemplateForm struct {
	Columns      string `form:"columns" validate:"required"`
	RowMode      string `form:"row_mode"`
	GroupByField string `form:"group_by_field"`
}

// CreateScenarioRequest is the JSON payload for recording a save action.
type CreateScenarioRequest struct {
	ProductKey       string   `json:"product_key" validate:"required"`
	Mode             string   `json:"mode" validate:"required,oneof=REPLACE_ALL_IMAGES_PER_PRODUCT APPEND_IMAGES_PER_PRODUCT REPLACE_ALL_ROWS_PER_IMAGE APPEND_ROWS_PER_IMAGE"`
	ImageURLs        []string `json:"image_urls"`
	RowIndices       []int    `json:"row_indices"`
	GenerationID     string   `json:"generation_id"`
	SourceTemplateID string   `json:"source_template_id"`
}

// UpsertOverrideRequest is the JSON payload for an export-override upsert.
type UpsertOverrideRequest struct {
	ProductKey             string   `json:"product_key" validate:"required"`
	Images                 []string `json:"images"`
	Categories             []string `json:"categories"`
	SourceTemplateID       string   `json:"source_template_id"`
	IsNewProduct           bool     `json:"is_new_product"`
	ProductID              string   `json:"product_id"`
	SKU                    string   `json:"sku"`
	AddPosition            string   `json:"add_position" validate:"omitempty,oneof=last before"`
	InsertBeforeProductKey string   `json:"insert_before_product_key" validate:"required_if=AddPosition before"`
}

// ExportJobBody is the optional JSON payload for an async export. The
// override entries are request-scoped: merged over the stored document for
// this export only, never persisted.
type ExportJobBody struct {
	ExportOverrides map[string]ExportOverrideEntry `json:"export_overrides" validate:"omitempty,dive"`
}

// ExportOverrideEntry mirrors UpsertOverrideRequest minus the product key,
// which is the map key here.
type ExportOverrideEntry struct {
	Images                 []string `json:"images"`
	Categories             []string `json:"categories"`
	IsNewProduct           bool     `json:"is_new_product"`
	ProductID              string   `json:"product_id"`
	SKU                    string   `json:"sku"`
	AddPosition            string   `json:"add_position" validate:"omitempty,oneof=last before"`
	InsertBeforeProductKey string   `json:"insert_before_product_key" validate:"required_if=AddPosition before"`
}

// UpsertDescriptionRequest is the JSON payload for a text-field edit.
type UpsertDescriptionRequest struct {
	ProductKey      string `json:"product_key" validate:"required"`
	DescriptionType string `json:"description_type" validate:"required"`
	Content         string `json:"content"`
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// ParseCreateTemplateRequest validates the multipart upload and returns the
// service request plus the raw file bytes.
func (rv *RequestValidator) ParseCreateTemplateRequest(c *gin.Context) (services.TemplateCreateRequest, []byte, error) {
	var form CreateTemplateForm
	if err := c.ShouldBind(&form); err != nil {
		return services.TemplateCreateRequest{}, nil, fmt.Errorf("invalid form data: %w", err)
	}
	if err := rv.validate.Struct(&form); err != nil {
		return services.TemplateCreateRequest{}, nil, fmt.Errorf("validation failed: %w", err)
	}

	var columns []models.Column
	if err := json.Unmarshal([]byte(form.Columns), &columns); err != nil {
		return services.TemplateCreateRequest{}, nil, errors.New("invalid columns format, must be a JSON array")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return services.TemplateCreateRequest{}, nil, errors.New("file is required")
	}
	if !rv.IsValidSpreadsheetFile(file) {
		return services.TemplateCreateRequest{}, nil, errors.New("invalid file type. Only CSV, XLS and XLSX files are allowed")
	}
	if err := rv.ValidateFileSize(file); err != nil {
		return services.TemplateCreateRequest{}, nil, err
	}

	handle, err := file.Open()
	if err != nil {
		return services.TemplateCreateRequest{}, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer handle.Close()
	data, err := io.ReadAll(handle)
	if err != nil {
		return services.TemplateCreateRequest{}, nil, fmt.Errorf("failed to read file: %w", err)
	}

	req := services.TemplateCreateRequest{
		FileName:     filepath.Base(file.Filename),
		FileType:     strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), "."),
		Columns:      columns,
		RowMode:      models.RowMode(strings.ToUpper(strings.TrimSpace(form.RowMode))),
		GroupByField: models.ColumnRole(strings.TrimSpace(form.GroupByField)),
	}
	return req, data, nil
}

// ParseCreateScenarioRequest validates the scenario JSON payload.
func (rv *RequestValidator) ParseCreateScenarioRequest(c *gin.Context) (services.ScenarioCreateRequest, error) {
	var req CreateScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.ScenarioCreateRequest{}, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return services.ScenarioCreateRequest{}, fmt.Errorf("validation failed: %w", err)
	}

	return services.ScenarioCreateRequest{
		ProductKey:       req.ProductKey,
		Mode:             models.ScenarioMode(req.Mode),
		ImageURLs:        req.ImageURLs,
		RowIndices:       req.RowIndices,
		GenerationID:     req.GenerationID,
		SourceTemplateID: req.SourceTemplateID,
	}, nil
}

// ParseUpsertOverrideRequest validates the export-override JSON payload.
func (rv *RequestValidator) ParseUpsertOverrideRequest(c *gin.Context) (services.ExportOverrideRequest, error) {
	var req UpsertOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.ExportOverrideRequest{}, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return services.ExportOverrideRequest{}, fmt.Errorf("validation failed: %w", err)
	}

	return services.ExportOverrideRequest{
		ProductKey:             req.ProductKey,
		Images:                 req.Images,
		Categories:             req.Categories,
		SourceTemplateID:       req.SourceTemplateID,
		IsNewProduct:           req.IsNewProduct,
		ProductID:              req.ProductID,
		SKU:                    req.SKU,
		AddPosition:            models.AddPosition(req.AddPosition),
		InsertBeforeProductKey: req.InsertBeforeProductKey,
	}, nil
}

// ParseUpsertDescriptionRequest validates the description JSON payload.
func (rv *RequestValidator) ParseUpsertDescriptionRequest(c *gin.Context) (services.DescriptionRequest, error) {
	var req UpsertDescriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return services.DescriptionRequest{}, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if err := rv.validate.Struct(&req); err != nil {
		return services.DescriptionRequest{}, fmt.Errorf("validation failed: %w", err)
	}

	return services.DescriptionRequest{
		ProductKey:      req.ProductKey,
		DescriptionType: req.DescriptionType,
		Content:         req.Content,
	}, nil
}

// ParseExportOptions reads the export query flags.
func (rv *RequestValidator) ParseExportOptions(c *gin.Context) (services.ExportOptions, error) {
	opts := services.ExportOptions{}

	if v := strings.TrimSpace(c.Query("onlyUpdated")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid boolean value for 'onlyUpdated'")
		}
		opts.OnlyUpdated = b
	}
	if v := strings.TrimSpace(c.Query("dedupeImages")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid boolean value for 'dedupeImages'")
		}
		opts.DedupeImages = b
	}
	return opts, nil
}

// ParseExportJobRequest reads the export query flags plus the optional
// JSON body carrying request-scoped override entries.
func (rv *RequestValidator) ParseExportJobRequest(c *gin.Context) (services.ExportOptions, error) {
	opts, err := rv.ParseExportOptions(c)
	if err != nil {
		return opts, err
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return opts, nil
	}

	var body ExportJobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		return opts, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if err := rv.validate.Struct(&body); err != nil {
		return opts, fmt.Errorf("validation failed: %w", err)
	}
	if len(body.ExportOverrides) == 0 {
		return opts, nil
	}

	now := time.Now().UTC()
	opts.ExtraOverrides = make(map[string]models.ExportOverride, len(body.ExportOverrides))
	for key, entry := range body.ExportOverrides {
		opts.ExtraOverrides[key] = models.ExportOverride{
			Images:                 entry.Images,
			Categories:             entry.Categories,
			UpdatedAt:              now,
			IsNewProduct:           entry.IsNewProduct,
			ProductID:              entry.ProductID,
			SKU:                    entry.SKU,
			AddPosition:            models.AddPosition(entry.AddPosition),
			InsertBeforeProductKey: entry.InsertBeforeProductKey,
		}
	}
	return opts, nil
}

// IsValidSpreadsheetFile checks the upload's extension.
func (rv *RequestValidator) IsValidSpreadsheetFile(file *multipart.FileHeader) bool {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	return allowedSpreadsheetExtensions[ext]
}

// ValidateFileSize checks if file size is within limits
func (rv *RequestValidator) ValidateFileSize(file *multipart.FileHeader) error {
	if file.Size > MaxUploadSize {
		return fmt.Errorf("file too large (max %dMB)", MaxUploadSize/(1024*1024))
	}
	return nil
}
