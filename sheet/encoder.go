package sheet

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Encoder serializes the final 2-D array into one of the supported formats.
// The encoder is chosen by the original file's extension, never by caller
// configuration.
type Encoder interface {
	Encode(rows [][]string) ([]byte, error)
	ContentType() string
	Ext() string
}

// EncoderOptions configures format-specific behavior, currently only the
// external BIFF8 writer used for legacy .xls output.
type EncoderOptions struct {
	// XlsBinaryPath is the external BIFF8 encoder binary; empty means go
	// straight to the truncating fallback.
	XlsBinaryPath string
	// TempDir for the subprocess hand-off files; empty uses os.TempDir.
	TempDir string
}

// EncoderForFileType picks the encoder matching the source file's extension.
func EncoderForFileType(fileType string, opts EncoderOptions) (Encoder, error) {
	switch strings.ToLower(strings.TrimPrefix(fileType, ".")) {
	case "csv", "txt":
		return &CSVEncoder{}, nil
	case "xlsx":
		return &XLSXEncoder{}, nil
	case "xls":
		return NewFallbackXlsEncoder(opts.XlsBinaryPath, opts.TempDir), nil
	default:
		return nil, fmt.Errorf("no encoder for file type %q", fileType)
	}
}

// CSVEncoder writes RFC-4180-style CSV text. A field is quoted when it
// contains a comma, a double quote, or any newline; embedded quotes double.
type CSVEncoder struct{}

func (e *CSVEncoder) ContentType() string { return "text/csv" }
func (e *CSVEncoder) Ext() string         { return "csv" }

func (e *CSVEncoder) Encode(rows [][]string) ([]byte, error) {
	var b strings.Builder
	for i, row := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, field := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeCSVField(field))
		}
	}
	return []byte(b.String()), nil
}

func escapeCSVField(field string) string {
	if !strings.ContainsAny(field, ",\"\n\r") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// XLSXEncoder writes an OOXML workbook with a single sheet.
type XLSXEncoder struct{}

func (e *XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (e *XLSXEncoder) Ext() string { return "xlsx" }

func (e *XLSXEncoder) Encode(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
