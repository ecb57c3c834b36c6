package sheet

import "template-service/models"

// PerProductStrategy handles templates with one row per product. Final URLs
// are distributed back across the template's image columns, either by saved
// category tokens or positionally against each column's original counts.
type PerProductStrategy struct{}

func (s *PerProductStrategy) ProductKey(in *ExportInput, row []string, rowIdx int) string {
	return perProductKey(rowIdx)
}

func (s *PerProductStrategy) BuildRows(in *ExportInput, dedup *URLSet) ([]builtRow, error) {
	cols := in.Template.Columns
	skuIdx := firstIndexByRole(cols, models.RoleSKU)
	width := len(in.Header)

	var out []builtRow
	for i, row := range in.Rows {
		key := perProductKey(i)
		// Legacy saves keyed edits by SKU; those must still resolve even
		// though new writes always use the row-position key.
		skuKey := ""
		if skuIdx >= 0 {
			skuKey = cellAt(row, skuIdx)
		}

		imgCols := imageColumns(cols, row)
		var originalURLs []string
		for _, ic := range imgCols {
			originalURLs = append(originalURLs, splitCell(cellAt(row, ic.Index), cols[ic.Index])...)
		}

		res := resolveImages(in, key, skuKey, originalURLs)
		if res.Source == FromOriginal && in.OnlyUpdated {
			continue
		}

		cells := cloneRow(row, width)
		if res.Source != FromOriginal || dedup.Enabled() {
			urls, cats := dedup.Filter(res.URLs, res.Categories)
			writeImageCells(cells, urls, cats, imgCols)
		}
		applyDescriptions(in, cells, key, skuKey)
		out = append(out, builtRow{key: key, cells: cells})
	}
	return out, nil
}

func (s *PerProductStrategy) NewProductRows(in *ExportInput, key string, ov models.ExportOverride, dedup *URLSet) []builtRow {
	cols := in.Template.Columns
	cells := make([]string, len(in.Header))
	if idx := firstIndexByRole(cols, models.RoleProductID); idx >= 0 && idx < len(cells) {
		cells[idx] = ov.ProductID
	}
	if idx := firstIndexByRole(cols, models.RoleSKU); idx >= 0 && idx < len(cells) {
		cells[idx] = ov.SKU
	}

	urls, cats := dedup.Filter(ov.Images, ov.Categories)
	writeImageCells(cells, urls, cats, imageColumns(cols, nil))
	applyDescriptions(in, cells, key, "")
	return []builtRow{{key: key, cells: cells}}
}

// writeImageCells distributes urls across the image columns and serializes
// each group into its cell. Empty groups write empty strings so stale image
// data never survives a shrink.
func writeImageCells(cells []string, urls, categories []string, imgCols []ImageColumn) {
	groups := DistributeCategories(urls, categories, imgCols)
	for gi, ic := range imgCols {
		if ic.Index < len(cells) {
			cells[ic.Index] = JoinGroup(groups[gi], ic.Separator)
		}
	}
}
