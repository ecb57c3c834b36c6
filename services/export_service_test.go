package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"template-service/models"
	"template-service/sheet"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportFixture(t *testing.T) (*ExportService, *fakeTemplateRepo, *fakeScenarioRepo, *fakeOverrideRepo, *models.SpreadsheetTemplate) {
	t.Helper()
	templates := newFakeTemplateRepo()
	scenarios := &fakeScenarioRepo{}
	overrides := newFakeOverrideRepo()
	blob := newFakeBlobStore()

	tmpl := seedTemplate(t, templates, models.RowModePerProduct)
	blob.objects[tmpl.StoragePath] = []byte(
		"Handle,Image Src,SEO\n" +
			"p1,https://cdn.example.com/a.jpg,desc one\n" +
			"p2,https://cdn.example.com/b.jpg,desc two\n")

	svc := NewExportService(templates, scenarios, overrides, blob, sheet.EncoderOptions{})
	return svc, templates, scenarios, overrides, tmpl
}

func TestBuildExportOriginalPassThrough(t *testing.T) {
	svc, _, _, _, tmpl := exportFixture(t)

	file, err := svc.BuildExport(context.Background(), "user-1", tmpl.ID, ExportOptions{})
	require.NoError(t, err)

	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(string(file.Data), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "p1,https://cdn.example.com/a.jpg,desc one", lines[1])
}

func TestBuildExportAppliesScenariosAndOverrides(t *testing.T) {
	svc, _, scenarios, overrides, tmpl := exportFixture(t)

	scenarios.scenarios = []models.Scenario{{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		ProductKey: "row-2",
		Mode:       models.ModeReplaceAllImagesPerProduct,
		ImageURLs:  []string{"https://cdn.example.com/gen-1.jpg"},
		CreatedAt:  time.Now().UTC(),
	}}
	doc := models.NewOverrideDocument()
	doc.ExportOverrides["row-3"] = models.ExportOverride{Images: []string{"https://cdn.example.com/ovr.jpg"}}
	require.NoError(t, overrides.Put(context.Background(), tmpl.ID, doc))

	file, err := svc.BuildExport(context.Background(), "user-1", tmpl.ID, ExportOptions{})
	require.NoError(t, err)

	lines := strings.Split(string(file.Data), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "gen-1.jpg", "scenario replay replaced row 2")
	assert.Contains(t, lines[2], "ovr.jpg", "override beat the original on row 3")
}

func TestBuildExportMergesRequestOverrides(t *testing.T) {
	svc, _, _, overrides, tmpl := exportFixture(t)

	file, err := svc.BuildExport(context.Background(), "user-1", tmpl.ID, ExportOptions{
		ExtraOverrides: map[string]models.ExportOverride{
			"row-2": {Images: []string{"https://cdn.example.com/adhoc.jpg"}},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, string(file.Data), "adhoc.jpg")

	// The ad-hoc override never reached the store.
	doc, err := overrides.Get(context.Background(), tmpl.ID)
	require.NoError(t, err)
	assert.Empty(t, doc.ExportOverrides)
}

func TestBuildExportOnlyUpdated(t *testing.T) {
	svc, _, scenarios, _, tmpl := exportFixture(t)

	scenarios.scenarios = []models.Scenario{{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		ProductKey: "row-3",
		Mode:       models.ModeAppendImagesPerProduct,
		ImageURLs:  []string{"https://cdn.example.com/extra.jpg"},
		CreatedAt:  time.Now().UTC(),
	}}

	file, err := svc.BuildExport(context.Background(), "user-1", tmpl.ID, ExportOptions{OnlyUpdated: true})
	require.NoError(t, err)

	lines := strings.Split(string(file.Data), "\n")
	require.Len(t, lines, 2, "header plus the one edited row")
	assert.Contains(t, lines[1], "extra.jpg")
}

func TestBuildExportFilename(t *testing.T) {
	svc, templates, _, _, tmpl := exportFixture(t)
	stored := templates.templates[tmpl.ID]
	stored.OriginalFileName = "spring-catalog.csv"

	file, err := svc.BuildExport(context.Background(), "user-1", tmpl.ID, ExportOptions{})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(file.Filename, "spring-catalog-export-"), file.Filename)
	assert.True(t, strings.HasSuffix(file.Filename, ".csv"), file.Filename)
}

func TestBuildExportMissingSourceFile(t *testing.T) {
	templates := newFakeTemplateRepo()
	blob := newFakeBlobStore()
	svc := NewExportService(templates, &fakeScenarioRepo{}, newFakeOverrideRepo(), blob, sheet.EncoderOptions{})
	tmpl := seedTemplate(t, templates, models.RowModePerProduct)

	_, err := svc.BuildExport(context.Background(), "user-1", tmpl.ID, ExportOptions{})
	assert.ErrorIs(t, err, ErrSourceFileNotFound)
}
