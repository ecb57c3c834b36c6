package sheet

import (
	"fmt"
	"strings"

	"template-service/models"
)

// ExportInput carries everything one export call needs: the parsed rows, the
// template's column schema, and the full scenario/override state read at call
// start. The engine holds no state of its own between calls.
type ExportInput struct {
	Template *models.SpreadsheetTemplate
	Header   []string
	// Rows are the data rows only; Header is row 0 of the parsed file.
	Rows [][]string

	Scenarios    map[string][]models.Scenario
	Overrides    map[string]models.ExportOverride
	Descriptions map[string]models.DescriptionOverride

	OnlyUpdated  bool
	DedupeImages bool
}

// builtRow pairs an emitted row with the product key it was built for, so
// the new-product inserter can resolve "insert before" targets against the
// already-emitted sequence.
type builtRow struct {
	key   string
	cells []string
}

// RowModeStrategy is the single branch point between the two row layouts.
// Implementations orchestrate resolution, distribution and row emission for
// their layout; everything downstream (dedup, insertion, encoding) is shared.
type RowModeStrategy interface {
	// BuildRows emits the final data rows in order, applying the
	// override-then-scenario-then-original priority per product and the
	// shared dedup filter.
	BuildRows(in *ExportInput, dedup *URLSet) ([]builtRow, error)
	// ProductKey computes the key correlating a data row to its scenarios
	// and overrides. rowIdx is the 0-based data-row index.
	ProductKey(in *ExportInput, row []string, rowIdx int) string
	// NewProductRows materializes rows for a brand-new product override.
	NewProductRows(in *ExportInput, key string, ov models.ExportOverride, dedup *URLSet) []builtRow
}

// StrategyFor returns the strategy for a row mode, defaulting to PER_PRODUCT.
func StrategyFor(mode models.RowMode) RowModeStrategy {
	if mode == models.RowModePerImage {
		return &PerImageStrategy{}
	}
	return &PerProductStrategy{}
}

// resolveImages applies the priority chain for one product: a non-empty
// export override wins outright, otherwise scenario replay, otherwise the
// original list stands.
func resolveImages(in *ExportInput, key, fallbackKey string, originalURLs []string) Resolution {
	if ov, ok := lookupOverride(in, key, fallbackKey); ok {
		return Resolution{
			Source:     FromOverride,
			URLs:       cloneStrings(ov.Images),
			Categories: cloneStrings(ov.Categories),
		}
	}
	if scs := lookupScenarios(in, key, fallbackKey); len(scs) > 0 {
		return Resolution{Source: FromScenarios, URLs: Resolve(originalURLs, scs)}
	}
	return Resolution{Source: FromOriginal, URLs: cloneStrings(originalURLs)}
}

// lookupOverride finds a usable (non-empty, not new-product) override under
// the primary key, then the legacy fallback key.
func lookupOverride(in *ExportInput, key, fallbackKey string) (models.ExportOverride, bool) {
	for _, k := range []string{key, fallbackKey} {
		if k == "" {
			continue
		}
		if ov, ok := in.Overrides[k]; ok && !ov.IsNewProduct && len(ov.Images) > 0 {
			return ov, true
		}
	}
	return models.ExportOverride{}, false
}

func lookupScenarios(in *ExportInput, key, fallbackKey string) []models.Scenario {
	for _, k := range []string{key, fallbackKey} {
		if k == "" {
			continue
		}
		if scs := in.Scenarios[k]; len(scs) > 0 {
			return scs
		}
	}
	return nil
}

func lookupDescription(in *ExportInput, key, fallbackKey string) (models.DescriptionOverride, bool) {
	for _, k := range []string{key, fallbackKey} {
		if k == "" {
			continue
		}
		if d, ok := in.Descriptions[k]; ok && len(d.Fields) > 0 {
			return d, true
		}
	}
	return models.DescriptionOverride{}, false
}

// applyDescriptions writes description-override fields onto their mapped
// columns. Fields whose role maps to no column are skipped.
func applyDescriptions(in *ExportInput, row []string, key, fallbackKey string) {
	desc, ok := lookupDescription(in, key, fallbackKey)
	if !ok {
		return
	}
	for role, content := range desc.Fields {
		idx := firstIndexByRole(in.Template.Columns, models.ColumnRole(role))
		if idx < 0 || idx >= len(row) {
			continue
		}
		row[idx] = content
	}
}

// imageColumns builds the export view of every image_url column, counting
// the URLs each held in the given original row (nil row means counts of 0).
func imageColumns(cols []models.Column, originalRow []string) []ImageColumn {
	var out []ImageColumn
	for i, col := range cols {
		if col.Role != models.RoleImageURL {
			continue
		}
		ic := ImageColumn{Index: i, Name: col.Name, Separator: col.Sep()}
		if originalRow != nil {
			ic.OriginalCount = len(splitCell(cellAt(originalRow, i), col))
		}
		out = append(out, ic)
	}
	return out
}

// splitCell expands one cell into its URL list, honoring the column's
// multi-value separator. Blank entries are dropped.
func splitCell(value string, col models.Column) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if !col.MultiValue {
		return []string{value}
	}
	parts := strings.Split(value, col.Sep())
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func firstIndexByRole(cols []models.Column, role models.ColumnRole) int {
	for i, col := range cols {
		if col.Role == role {
			return i
		}
	}
	return -1
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func cloneRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// perProductKey is the row-position identity used for PER_PRODUCT templates:
// row 0 of the file is the header, so the first data row is "row-2".
func perProductKey(dataRowIdx int) string {
	return fmt.Sprintf("row-%d", dataRowIdx+2)
}
