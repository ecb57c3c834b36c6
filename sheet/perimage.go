package sheet

import (
	"strconv"

	"template-service/models"
)

// PerImageStrategy handles templates with one row per image. Rows are
// grouped by product key, the group's image list is resolved as a unit, and
// the group is re-emitted with one row per final image. When the final list
// is shorter than the original row count, surplus rows survive with blanked
// image fields so per-product row counts stay stable for downstream imports.
type PerImageStrategy struct{}

func (s *PerImageStrategy) ProductKey(in *ExportInput, row []string, rowIdx int) string {
	cols := in.Template.Columns
	pid := cellAt(row, firstIndexByRole(cols, models.RoleProductID))
	sku := cellAt(row, firstIndexByRole(cols, models.RoleSKU))

	if in.Template.GroupByField == models.RoleSKU {
		switch {
		case pid != "" && sku != "":
			return pid + "::" + sku
		case sku != "":
			return sku
		default:
			return pid
		}
	}
	if pid != "" {
		return pid
	}
	return sku
}

func (s *PerImageStrategy) BuildRows(in *ExportInput, dedup *URLSet) ([]builtRow, error) {
	groups := make(map[string][]int)
	order := make([]string, 0)
	keys := make([]string, len(in.Rows))
	for i, row := range in.Rows {
		key := s.ProductKey(in, row, i)
		keys[i] = key
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], i)
	}

	emitted := make(map[string]bool)
	var out []builtRow
	for i, row := range in.Rows {
		key := keys[i]
		if key == "" {
			// Ungroupable rows pass through unchanged; they cannot carry
			// edits, so onlyUpdated drops them.
			if !in.OnlyUpdated {
				out = append(out, builtRow{cells: cloneRow(row, len(in.Header))})
			}
			continue
		}
		if emitted[key] {
			continue
		}
		emitted[key] = true
		out = append(out, s.buildGroup(in, key, groups[key], dedup)...)
	}
	return out, nil
}

func (s *PerImageStrategy) buildGroup(in *ExportInput, key string, rowIdxs []int, dedup *URLSet) []builtRow {
	cols := in.Template.Columns
	imgIdx := firstIndexByRole(cols, models.RoleImageURL)
	posIdx := firstIndexByRole(cols, models.RoleImagePosition)
	width := len(in.Header)

	// One URL per row, taken from the first image column; blank cells are
	// omitted from the list but their rows still count.
	var originalURLs []string
	for _, ri := range rowIdxs {
		if url := cellAt(in.Rows[ri], imgIdx); url != "" {
			originalURLs = append(originalURLs, url)
		}
	}

	res := resolveImages(in, key, "", originalURLs)
	if res.Source == FromOriginal {
		if in.OnlyUpdated {
			return nil
		}
		if !dedup.Enabled() {
			// Untouched group: keep the original rows byte for byte,
			// descriptions aside.
			out := make([]builtRow, 0, len(rowIdxs))
			for _, ri := range rowIdxs {
				cells := cloneRow(in.Rows[ri], width)
				applyDescriptions(in, cells, key, "")
				out = append(out, builtRow{key: key, cells: cells})
			}
			return out
		}
	}

	finalURLs, _ := dedup.Filter(res.URLs, nil)

	count := len(rowIdxs)
	if len(finalURLs) > count {
		count = len(finalURLs)
	}
	out := make([]builtRow, 0, count)
	for i := 0; i < count; i++ {
		var cells []string
		if i < len(rowIdxs) {
			cells = cloneRow(in.Rows[rowIdxs[i]], width)
		} else {
			// Brand-new row for a grown image list: clone the group's
			// first row to preserve the product's non-image fields.
			cells = cloneRow(in.Rows[rowIdxs[0]], width)
		}
		setImageCells(cells, finalURLs, i, imgIdx, posIdx)
		applyDescriptions(in, cells, key, "")
		out = append(out, builtRow{key: key, cells: cells})
	}
	return out
}

func (s *PerImageStrategy) NewProductRows(in *ExportInput, key string, ov models.ExportOverride, dedup *URLSet) []builtRow {
	cols := in.Template.Columns
	imgIdx := firstIndexByRole(cols, models.RoleImageURL)
	posIdx := firstIndexByRole(cols, models.RoleImagePosition)
	pidIdx := firstIndexByRole(cols, models.RoleProductID)
	skuIdx := firstIndexByRole(cols, models.RoleSKU)

	urls, _ := dedup.Filter(ov.Images, nil)
	out := make([]builtRow, 0, len(urls))
	for i := range urls {
		cells := make([]string, len(in.Header))
		if pidIdx >= 0 && pidIdx < len(cells) {
			cells[pidIdx] = ov.ProductID
		}
		if skuIdx >= 0 && skuIdx < len(cells) {
			cells[skuIdx] = ov.SKU
		}
		setImageCells(cells, urls, i, imgIdx, posIdx)
		applyDescriptions(in, cells, key, "")
		out = append(out, builtRow{key: key, cells: cells})
	}
	return out
}

// setImageCells writes the i-th URL and its 1-based position, or clears both
// fields when the final list has run out.
func setImageCells(cells, urls []string, i, imgIdx, posIdx int) {
	value, pos := "", ""
	if i < len(urls) {
		value = urls[i]
		pos = strconv.Itoa(i + 1)
	}
	if imgIdx >= 0 && imgIdx < len(cells) {
		cells[imgIdx] = value
	}
	if posIdx >= 0 && posIdx < len(cells) {
		cells[posIdx] = pos
	}
}
