package postprocess

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kacper-wojtaszczyk/copernicus-ingest/internal/storage"
)

// Processor normalizes a committed artifact and saves the result under a
// derived key. Processors run after commit and never affect the scheduling
// core's idempotency state.
type Processor func(ctx context.Context, store storage.Storage, tmpDir, key string) error

var processors = map[string]Processor{
	"normalize_cams_solar_radiation": NormalizeSolarRadiation,
}

// Lookup resolves a processor by its configured name.
func Lookup(name string) (Processor, bool) {
	p, ok := processors[name]
	return p, ok
}

// NormalizeSolarRadiation rewrites a CAMS Radiation Service CSV: the `#`
// metadata header is dropped (its last line carries the real column names),
// and the semicolon-separated "Observation period" interval column is split
// into separate start/end UTC timestamp columns. The result is saved as
// <key base>_normalized.csv next to the original.
func NormalizeSolarRadiation(ctx context.Context, store storage.Storage, tmpDir, key string) error {
	local, err := store.GetLocalPath(ctx, key)
	if err != nil {
		return err
	}

	headers, rows, err := parseSolarCSV(local)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", key, err)
	}
	if len(rows) == 0 {
		return nil
	}

	outPath := filepath.Join(tmpDir, strings.TrimSuffix(filepath.Base(local), filepath.Ext(local))+"_normalized.csv")
	if err := writeNormalized(outPath, headers, rows); err != nil {
		return fmt.Errorf("failed to write normalized csv: %w", err)
	}

	outKey := strings.TrimSuffix(key, filepath.Ext(key)) + "_normalized.csv"
	return store.Save(ctx, outPath, outKey)
}

// parseSolarCSV returns the output column order and the normalized rows.
func parseSolarCSV(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	var lastComment string
	var firstDataLine string
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, nil, err
		}
		trimmed := strings.TrimRight(line, "\n")
		if strings.HasPrefix(trimmed, "#") {
			lastComment = trimmed
		} else {
			firstDataLine = trimmed
			break
		}
		if err == io.EOF {
			return nil, nil, nil
		}
	}
	if lastComment == "" {
		return nil, nil, fmt.Errorf("no header comment found")
	}

	// Last comment line before data = real header
	columns := strings.Split(strings.TrimLeft(lastComment, "# "), ";")

	cr := csv.NewReader(io.MultiReader(strings.NewReader(firstDataLine+"\n"), reader))
	cr.Comma = ';'
	cr.FieldsPerRecord = len(columns)

	var rows []map[string]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make(map[string]string, len(record)+1)
		for i, col := range columns {
			row[col] = record[i]
		}
		if obs, ok := row["Observation period"]; ok && strings.Contains(obs, "/") {
			delete(row, "Observation period")
			start, end, _ := strings.Cut(obs, "/")
			row["start"] = normalizeTimestamp(start)
			row["end"] = normalizeTimestamp(end)
		}
		rows = append(rows, row)
	}

	out := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		if col == "Observation period" {
			continue
		}
		out = append(out, col)
	}
	out = append(out, "start", "end")

	return out, rows, nil
}

func normalizeTimestamp(s string) string {
	s = strings.ReplaceAll(s, ".0", "")
	return strings.TrimSuffix(s, "Z") + "Z"
}

func writeNormalized(path string, headers []string, rows []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'

	if err := w.Write(headers); err != nil {
		return err
	}
	record := make([]string, len(headers))
	for _, row := range rows {
		for i, col := range headers {
			record[i] = row[col]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
