package sheet

import "errors"

// ErrNoTemplate is returned when BuildExport is called without a template.
var ErrNoTemplate = errors.New("sheet: export input has no template")

// BuildExport turns the original rows plus accumulated edits into the final
// 2-D array, header first. The whole computation is in memory and pure with
// respect to the input: every emitted row is a fresh slice.
func BuildExport(in *ExportInput) ([][]string, error) {
	if in == nil || in.Template == nil {
		return nil, ErrNoTemplate
	}

	strat := StrategyFor(in.Template.RowMode)
	dedup := NewURLSet(in.DedupeImages)

	rows, err := strat.BuildRows(in, dedup)
	if err != nil {
		return nil, err
	}
	rows = insertNewProducts(in, strat, rows, dedup)

	out := make([][]string, 0, len(rows)+1)
	out = append(out, cloneStrings(in.Header))
	for _, r := range rows {
		out = append(out, r.cells)
	}
	return out, nil
}
