package sheet

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCSVEscaping(t *testing.T) {
	e := &CSVEncoder{}
	out, err := e.Encode([][]string{{`a,"b"` + "\nc", "plain"}})
	require.NoError(t, err)
	assert.Equal(t, "\"a,\"\"b\"\"\nc\",plain", string(out))
}

func TestCSVRoundTrip(t *testing.T) {
	tricky := "a,\"b\"\nc"
	e := &CSVEncoder{}
	out, err := e.Encode([][]string{{"header"}, {tricky}})
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, tricky, records[1][0])
}

func TestCSVEncoderMetadata(t *testing.T) {
	e := &CSVEncoder{}
	assert.Equal(t, "text/csv", e.ContentType())
	assert.Equal(t, "csv", e.Ext())
}

func TestXLSXRoundTrip(t *testing.T) {
	rows := [][]string{
		{"Handle", "Image Src"},
		{"p1", "https://cdn.example.com/a.jpg"},
		{"p2", ""},
	}
	e := &XLSXEncoder{}
	data, err := e.Encode(rows)
	require.NoError(t, err)

	got, err := ParseRows(data, "xlsx")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, rows[0], got[0])
	assert.Equal(t, rows[1], got[1])
	assert.Equal(t, "p2", got[2][0])
}

func TestEncoderForFileType(t *testing.T) {
	enc, err := EncoderForFileType("csv", EncoderOptions{})
	require.NoError(t, err)
	assert.IsType(t, &CSVEncoder{}, enc)

	enc, err = EncoderForFileType(".xlsx", EncoderOptions{})
	require.NoError(t, err)
	assert.IsType(t, &XLSXEncoder{}, enc)

	enc, err = EncoderForFileType("XLS", EncoderOptions{})
	require.NoError(t, err)
	assert.IsType(t, &FallbackXlsEncoder{}, enc)

	_, err = EncoderForFileType("pdf", EncoderOptions{})
	assert.Error(t, err)
}

func TestExternalEncoderMissingBinary(t *testing.T) {
	e := &ExternalBiff8Encoder{BinaryPath: "/nonexistent/xlswriter"}
	_, err := e.EncodeXls([][]string{{"a"}})
	assert.Error(t, err)
}

func TestFallbackXlsEncoderDegradesSilently(t *testing.T) {
	long := strings.Repeat("x", 300)
	enc := NewFallbackXlsEncoder("/nonexistent/xlswriter", t.TempDir())

	data, err := enc.Encode([][]string{{"Header"}, {long}})
	require.NoError(t, err, "fallback must absorb the external encoder failure")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	cell, err := f.GetCellValue(f.GetSheetName(0), "A2")
	require.NoError(t, err)
	assert.Len(t, cell, fallbackCellLimit, "fallback truncates cells at the legacy limit")
}

func TestParseCSVRaggedRowsNormalized(t *testing.T) {
	data := []byte("\ufeffHandle,Image Src,Tags\np1,a.jpg\np2,b.jpg,featured")
	rows, err := ParseRows(data, "csv")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "Handle", rows[0][0], "BOM stripped from the first header cell")
	require.Len(t, rows[1], 3, "short rows padded to header width")
	assert.Equal(t, "", rows[1][2])
}

func TestParseRowsUnsupportedType(t *testing.T) {
	_, err := ParseRows([]byte("x"), "pdf")
	assert.Error(t, err)
}
