package sheet

import (
	"testing"
	"time"

	"template-service/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perImageTemplate(groupBy models.ColumnRole) *models.SpreadsheetTemplate {
	return &models.SpreadsheetTemplate{
		ID:           uuid.New(),
		RowMode:      models.RowModePerImage,
		GroupByField: groupBy,
		Columns: []models.Column{
			{Name: "Product ID", Role: models.RoleProductID},
			{Name: "SKU", Role: models.RoleSKU},
			{Name: "Image Src", Role: models.RoleImageURL},
			{Name: "Image Position", Role: models.RoleImagePosition},
			{Name: "Title", Role: "title"},
		},
	}
}

func perImageInput(groupBy models.ColumnRole) *ExportInput {
	return &ExportInput{
		Template: perImageTemplate(groupBy),
		Header:   []string{"Product ID", "SKU", "Image Src", "Image Position", "Title"},
		Rows: [][]string{
			{"p1", "SKU1", "A.jpg", "1", "Widget"},
			{"p1", "SKU1", "B.jpg", "2", "Widget"},
			{"p2", "SKU2", "C.jpg", "1", "Gadget"},
		},
		Scenarios:    map[string][]models.Scenario{},
		Overrides:    map[string]models.ExportOverride{},
		Descriptions: map[string]models.DescriptionOverride{},
	}
}

func TestPerImageUntouchedGroupsUnchanged(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	out, err := BuildExport(in)
	require.NoError(t, err)

	require.Len(t, out, 4)
	assert.Equal(t, in.Rows[0], out[1])
	assert.Equal(t, in.Rows[1], out[2])
	assert.Equal(t, in.Rows[2], out[3])
}

func TestPerImageShrinkKeepsBlankRows(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	in.Scenarios["p1"] = []models.Scenario{
		scenarioAt(time.Now(), models.ModeReplaceAllRowsPerImage, "D.jpg"),
	}

	out, err := BuildExport(in)
	require.NoError(t, err)

	// Row count per group stays max(originalRowCount, finalImageCount).
	require.Len(t, out, 4)
	assert.Equal(t, []string{"p1", "SKU1", "D.jpg", "1", "Widget"}, out[1])
	assert.Equal(t, []string{"p1", "SKU1", "", "", "Widget"}, out[2], "surplus row survives with blanked image fields")
}

func TestPerImageGrowthClonesFirstRow(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	in.Overrides["p2"] = models.ExportOverride{Images: []string{"C.jpg", "X.jpg", "Y.jpg"}}

	out, err := BuildExport(in)
	require.NoError(t, err)

	require.Len(t, out, 6)
	assert.Equal(t, []string{"p2", "SKU2", "C.jpg", "1", "Gadget"}, out[3])
	assert.Equal(t, []string{"p2", "SKU2", "X.jpg", "2", "Gadget"}, out[4], "new rows inherit the group's non-image fields")
	assert.Equal(t, []string{"p2", "SKU2", "Y.jpg", "3", "Gadget"}, out[5])
}

func TestPerImageGroupBySKUKey(t *testing.T) {
	in := perImageInput(models.RoleSKU)
	strat := &PerImageStrategy{}

	assert.Equal(t, "p1::SKU1", strat.ProductKey(in, in.Rows[0], 0))
	assert.Equal(t, "SKU9", strat.ProductKey(in, []string{"", "SKU9", "x.jpg", "", ""}, 0))
	assert.Equal(t, "p9", strat.ProductKey(in, []string{"p9", "", "x.jpg", "", ""}, 0))
}

func TestPerImageGroupByProductIDFallsBackToSKU(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	strat := &PerImageStrategy{}
	assert.Equal(t, "SKU9", strat.ProductKey(in, []string{"", "SKU9", "x.jpg", "", ""}, 0))
}

func TestPerImageUnkeyedRowsPassThrough(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	in.Rows = append(in.Rows, []string{"", "", "orphan.jpg", "9", "No key"})

	out, err := BuildExport(in)
	require.NoError(t, err)
	require.Len(t, out, 5)
	assert.Equal(t, []string{"", "", "orphan.jpg", "9", "No key"}, out[4])
}

func TestPerImageOnlyUpdated(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	in.Rows = append(in.Rows, []string{"", "", "orphan.jpg", "9", "No key"})
	in.OnlyUpdated = true
	in.Overrides["p1"] = models.ExportOverride{Images: []string{"Z.jpg"}}

	out, err := BuildExport(in)
	require.NoError(t, err)

	// Only p1's rows survive; p2 and the unkeyed row are dropped.
	require.Len(t, out, 3)
	assert.Equal(t, "Z.jpg", out[1][2])
	assert.Equal(t, "", out[2][2])
}

func TestPerImageDedupAcrossProducts(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	in.Rows[2][2] = "A.jpg" // p2 reuses p1's image
	in.DedupeImages = true

	out, err := BuildExport(in)
	require.NoError(t, err)

	require.Len(t, out, 4)
	assert.Equal(t, "A.jpg", out[1][2])
	assert.Equal(t, "", out[3][2], "second product loses the shared URL")
	assert.Equal(t, "", out[3][3])
}

func TestPerImageBlankCellsOmittedFromOriginals(t *testing.T) {
	in := perImageInput(models.RoleProductID)
	in.Rows = [][]string{
		{"p1", "SKU1", "A.jpg", "1", "Widget"},
		{"p1", "SKU1", "", "", "Widget"},
	}
	in.Scenarios["p1"] = []models.Scenario{
		scenarioAt(time.Now(), models.ModeAppendRowsPerImage, "B.jpg"),
	}

	out, err := BuildExport(in)
	require.NoError(t, err)

	// originalURLs was [A.jpg]; append yields [A.jpg B.jpg] over 2 rows.
	require.Len(t, out, 3)
	assert.Equal(t, "A.jpg", out[1][2])
	assert.Equal(t, "B.jpg", out[2][2])
	assert.Equal(t, "2", out[2][3])
}
