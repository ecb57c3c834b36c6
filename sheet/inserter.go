package sheet

import (
	"sort"

	"template-service/models"
)

// newProductEntry is one isNewProduct override pulled out of the override
// map, keyed for deterministic ordering.
type newProductEntry struct {
	key string
	ov  models.ExportOverride
}

// insertNewProducts materializes rows for brand-new products and splices
// them into the emitted sequence. "before" entries resolve their target
// among the already-emitted rows (after onlyUpdated filtering); entries
// whose target cannot be found, and all "last" entries, append at the end
// in ascending UpdatedAt order.
func insertNewProducts(in *ExportInput, strat RowModeStrategy, emitted []builtRow, dedup *URLSet) []builtRow {
	var before, last []newProductEntry
	for key, ov := range in.Overrides {
		if !ov.IsNewProduct {
			continue
		}
		if ov.ProductID == "" || ov.SKU == "" {
			continue
		}
		if ov.AddPosition == models.AddPositionBefore && ov.InsertBeforeProductKey != "" {
			before = append(before, newProductEntry{key: key, ov: ov})
		} else {
			last = append(last, newProductEntry{key: key, ov: ov})
		}
	}
	if len(before) == 0 && len(last) == 0 {
		return emitted
	}

	sortByUpdatedAt(before)
	sortByUpdatedAt(last)

	type splice struct {
		index int
		rows  []builtRow
	}
	var splices []splice
	for _, e := range before {
		idx := indexOfKey(emitted, e.ov.InsertBeforeProductKey)
		if idx < 0 {
			// Unresolvable target: degrade to end-of-list.
			last = append(last, e)
			continue
		}
		splices = append(splices, splice{index: idx, rows: strat.NewProductRows(in, e.key, e.ov, dedup)})
	}

	// Splice in descending index order so earlier insertions do not shift
	// later indices. The sort is stable, so walking backwards also keeps
	// creation order among entries targeting the same row.
	sort.SliceStable(splices, func(i, j int) bool { return splices[i].index < splices[j].index })
	for i := len(splices) - 1; i >= 0; i-- {
		sp := splices[i]
		tail := make([]builtRow, len(emitted[sp.index:]))
		copy(tail, emitted[sp.index:])
		emitted = append(emitted[:sp.index], append(sp.rows, tail...)...)
	}

	for _, e := range last {
		emitted = append(emitted, strat.NewProductRows(in, e.key, e.ov, dedup)...)
	}
	return emitted
}

func sortByUpdatedAt(entries []newProductEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ov.UpdatedAt.Equal(entries[j].ov.UpdatedAt) {
			return entries[i].key < entries[j].key
		}
		return entries[i].ov.UpdatedAt.Before(entries[j].ov.UpdatedAt)
	})
}

func indexOfKey(rows []builtRow, key string) int {
	for i, r := range rows {
		if r.key == key {
			return i
		}
	}
	return -1
}
