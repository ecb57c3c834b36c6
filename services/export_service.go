package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"template-service/models"
	"template-service/repository"
	"template-service/sheet"
	"template-service/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportOptions are the per-request knobs of an export call.
type ExportOptions struct {
	OnlyUpdated  bool
	DedupeImages bool
	// ExtraOverrides are request-scoped overrides layered on top of the
	// stored document for this call only; they are never persisted.
	ExtraOverrides map[string]models.ExportOverride
}

// ExportFile is a finished export ready to stream to the caller.
type ExportFile struct {
	Data        []byte
	ContentType string
	Filename    string
}

// ExportService assembles everything one export needs, runs the engine and
// encodes the result in the original file's format.
type ExportService struct {
	templates   repository.TemplateRepo
	scenarios   repository.ScenarioRepo
	overrides   repository.OverrideRepo
	blob        storage.BlobStore
	encoderOpts sheet.EncoderOptions
}

func NewExportService(
	templates repository.TemplateRepo,
	scenarios repository.ScenarioRepo,
	overrides repository.OverrideRepo,
	blob storage.BlobStore,
	encoderOpts sheet.EncoderOptions,
) *ExportService {
	return &ExportService{
		templates:   templates,
		scenarios:   scenarios,
		overrides:   overrides,
		blob:        blob,
		encoderOpts: encoderOpts,
	}
}

func (s *ExportService) BuildExport(ctx context.Context, userID string, templateID uuid.UUID, opts ExportOptions) (*ExportFile, error) {
	tmpl, err := findOwnedTemplate(ctx, s.templates, userID, templateID)
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

	rows, err := sheet.ParseRows(data, tmpl.FileType)
	if err != nil {
		return nil, fmt.Errorf("failed to parse original file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("original file %s has no rows", tmpl.StoragePath)
	}

	scenarios, err := s.scenarios.FindByTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenarios: %w", err)
	}
	doc, err := s.overrides.Get(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load overrides: %w", err)
	}

	overrides := doc.ExportOverrides
	if len(opts.ExtraOverrides) > 0 {
		merged := make(map[string]models.ExportOverride, len(overrides)+len(opts.ExtraOverrides))
		for k, v := range overrides {
			merged[k] = v
		}
		for k, v := range opts.ExtraOverrides {
			merged[k] = v
		}
		overrides = merged
	}

	in := &sheet.ExportInput{
		Template:     tmpl,
		Header:       rows[0],
		Rows:         rows[1:],
		Scenarios:    groupScenarios(scenarios),
		Overrides:    overrides,
		Descriptions: doc.DescriptionOverrides,
		OnlyUpdated:  opts.OnlyUpdated,
		DedupeImages: opts.DedupeImages,
	}
	out, err := sheet.BuildExport(in)
	if err != nil {
		return nil, fmt.Errorf("failed to build export: %w", err)
	}

	enc, err := sheet.EncoderForFileType(tmpl.FileType, s.encoderOpts)
	if err != nil {
		return nil, err
	}
	encoded, err := enc.Encode(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	zap.L().Info("export built",
		zap.String("template", templateID.String()),
		zap.Int("rows", len(out)-1),
		zap.Bool("only_updated", opts.OnlyUpdated),
		zap.Bool("dedupe_images", opts.DedupeImages))

	return &ExportFile{
		Data:        encoded,
		ContentType: enc.ContentType(),
		Filename:    exportFilename(tmpl.OriginalFileName, enc.Ext()),
	}, nil
}

func groupScenarios(scenarios []models.Scenario) map[string][]models.Scenario {
	grouped := make(map[string][]models.Scenario)
	for _, sc := range scenarios {
		grouped[sc.ProductKey] = append(grouped[sc.ProductKey], sc)
	}
	return grouped
}

func exportFilename(original, ext string) string {
	base := strings.TrimSuffix(original, filepath.Ext(original))
	if base == "" {
		base = "export"
	}
	return fmt.Sprintf("%s-export-%d.%s", base, time.Now().UnixMilli(), ext)
}
