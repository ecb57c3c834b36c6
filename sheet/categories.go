package sheet

import "strings"

// categoryPrefix marks a saved category token as a column reference.
// Legacy data stored the bare column name with no prefix; both forms must
// resolve to the same column.
const categoryPrefix = "col:"

// ImageColumn describes one image_url column of a template during export:
// its position in the row, its original header name, and how many URLs that
// column held for the current product before any edits.
type ImageColumn struct {
	Index         int
	Name          string
	Separator     string
	OriginalCount int
}

// ResolveCategoryToken strips the "col:" prefix if present, otherwise
// returns the token verbatim.
func ResolveCategoryToken(token string) string {
	return strings.TrimPrefix(token, categoryPrefix)
}

// DistributeCategories places a flat, ordered URL list back onto per-column
// slots. When savedCategories is usable (same length as urls), each URL goes
// to the column named by its resolved token, falling back to the first image
// column for unknown tokens. Otherwise distribution is positional: each
// column claims its original URL count from the front of the list and any
// remainder lands in the last column. Encounter order is preserved within
// every column.
func DistributeCategories(urls, savedCategories []string, cols []ImageColumn) [][]string {
	groups := make([][]string, len(cols))
	if len(cols) == 0 {
		return groups
	}

	if len(savedCategories) > 0 && len(savedCategories) == len(urls) {
		byName := make(map[string]int, len(cols))
		for i, col := range cols {
			if _, ok := byName[col.Name]; !ok {
				byName[col.Name] = i
			}
		}
		for i, url := range urls {
			target := 0
			if idx, ok := byName[ResolveCategoryToken(savedCategories[i])]; ok {
				target = idx
			}
			groups[target] = append(groups[target], url)
		}
		return groups
	}

	remaining := urls
	for i, col := range cols {
		n := col.OriginalCount
		if n > len(remaining) {
			n = len(remaining)
		}
		groups[i] = append(groups[i], remaining[:n]...)
		remaining = remaining[n:]
	}
	if len(remaining) > 0 {
		last := len(cols) - 1
		groups[last] = append(groups[last], remaining...)
	}
	return groups
}

// JoinGroup serializes one column's URL group with the column separator.
// An empty group yields an empty string.
func JoinGroup(group []string, separator string) string {
	if len(group) == 0 {
		return ""
	}
	return strings.Join(group, separator)
}
