package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// ParseRows turns raw file bytes into a 2-D array of cells. Row 0 is the
// header. Rows are padded to the header width so downstream indexing never
// runs off a short row. fileType is the lowercase extension without dot.
func ParseRows(data []byte, fileType string) ([][]string, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(strings.TrimPrefix(fileType, ".")) {
	case "csv", "txt":
		rows, err = parseCSV(data)
	case "xlsx":
		rows, err = parseXLSX(data)
	case "xls":
		rows, err = parseXLS(data)
	default:
		return nil, fmt.Errorf("unsupported file type %q", fileType)
	}
	if err != nil {
		return nil, err
	}
	return normalizeWidths(rows), nil
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.LazyQuotes = true // tolerate the malformed quoting some marketplaces export
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], "\ufeff")
	}
	return records, nil
}

func parseXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return rows, nil
}

func parseXLS(data []byte) ([][]string, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open xls: %w", err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("xls has no sheets")
	}

	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, []string{})
			continue
		}
		rows = append(rows, xlsRowCells(row))
	}
	return rows, nil
}

// biffRow is the slice of xls.Row the cell extraction needs. LastCol is an
// exclusive bound: the BIFF ROW record stores the last defined column plus
// one, so the valid range is [FirstCol, LastCol).
type biffRow interface {
	FirstCol() int
	LastCol() int
	Col(int) string
}

func xlsRowCells(row biffRow) []string {
	last := row.LastCol()
	if last < 0 {
		return []string{}
	}
	cells := make([]string, last)
	for j := row.FirstCol(); j < last; j++ {
		if j >= 0 {
			cells[j] = row.Col(j)
		}
	}
	return cells
}

func normalizeWidths(rows [][]string) [][]string {
	if len(rows) == 0 {
		return rows
	}
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		}
	}
	return rows
}
