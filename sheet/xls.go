package sheet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// fallbackCellLimit is the legacy workbook writer's cell capacity; anything
// longer is cut, which is why the external encoder is tried first.
const fallbackCellLimit = 255

// defaultXlsTimeout bounds the external encoder's wall-clock runtime.
const defaultXlsTimeout = 30 * time.Second

// XlsEncoder produces legacy .xls bytes from the final row set.
type XlsEncoder interface {
	EncodeXls(rows [][]string) ([]byte, error)
}

// ExternalBiff8Encoder delegates to an external process that writes true
// BIFF8/OLE workbooks without the in-process 255-character cell limit. The
// row set is handed over as JSON in a uniquely named temp file; both temp
// files are removed on every exit path.
type ExternalBiff8Encoder struct {
	BinaryPath string
	TempDir    string
	Timeout    time.Duration
}

func (e *ExternalBiff8Encoder) EncodeXls(rows [][]string) ([]byte, error) {
	if e.BinaryPath == "" {
		return nil, fmt.Errorf("no external xls encoder configured")
	}
	if _, err := os.Stat(e.BinaryPath); err != nil {
		return nil, fmt.Errorf("external xls encoder missing: %w", err)
	}

	dir := e.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultXlsTimeout
	}

	// Unique per call so concurrent exports sharing a temp dir never collide.
	token := fmt.Sprintf("%d-%d", time.Now().UnixNano(), os.Getpid())
	inPath := filepath.Join(dir, fmt.Sprintf("xls-encode-%s.json", token))
	outPath := filepath.Join(dir, fmt.Sprintf("xls-encode-%s.xls", token))
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	payload, err := json.Marshal(struct {
		Rows [][]string `json:"rows"`
	}{Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal encoder payload: %w", err)
	}
	if err := os.WriteFile(inPath, payload, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write encoder payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, e.BinaryPath, inPath, outPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("external xls encoder timed out after %s", timeout)
		}
		return nil, fmt.Errorf("external xls encoder failed: %w (output: %s)", err, string(out))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read encoder output: %w", err)
	}
	return data, nil
}

// TruncatingFallbackEncoder is the in-process degradation path: it writes a
// workbook Excel accepts under the .xls name but cuts any cell beyond 255
// characters, so it only runs when the external encoder is unavailable.
type TruncatingFallbackEncoder struct{}

func (e *TruncatingFallbackEncoder) EncodeXls(rows [][]string) ([]byte, error) {
	truncated := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			if runes := []rune(cell); len(runes) > fallbackCellLimit {
				cell = string(runes[:fallbackCellLimit])
			}
			cells[j] = cell
		}
		truncated[i] = cells
	}
	return (&XLSXEncoder{}).Encode(truncated)
}

// FallbackXlsEncoder tries the external encoder and degrades to the
// truncating fallback on any failure. The degradation is silent to the
// caller but logged; only a fallback failure surfaces as an error.
type FallbackXlsEncoder struct {
	primary  XlsEncoder
	fallback XlsEncoder
}

// NewFallbackXlsEncoder composes the external BIFF8 encoder with the
// truncating in-process fallback.
func NewFallbackXlsEncoder(binaryPath, tempDir string) *FallbackXlsEncoder {
	return &FallbackXlsEncoder{
		primary:  &ExternalBiff8Encoder{BinaryPath: binaryPath, TempDir: tempDir},
		fallback: &TruncatingFallbackEncoder{},
	}
}

func (e *FallbackXlsEncoder) ContentType() string { return "application/vnd.ms-excel" }
func (e *FallbackXlsEncoder) Ext() string         { return "xls" }

func (e *FallbackXlsEncoder) Encode(rows [][]string) ([]byte, error) {
	data, err := e.primary.EncodeXls(rows)
	if err == nil {
		return data, nil
	}
	zap.L().Warn("external xls encoder unavailable, using truncating fallback",
		zap.Error(err))
	return e.fallback.EncodeXls(rows)
}
