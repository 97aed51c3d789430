package catalog

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tavola/pkg/errors"
)

// Metadata is one row of the metadata table: column name to cell value.
type Metadata map[string]string

// Value returns the trimmed cell for column and whether it is non-empty.
func (m Metadata) Value(column string) (string, bool) {
	v, ok := m[column]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" || v == "None" {
		return "", false
	}
	return v, true
}

// Table maps image filenames to metadata rows. Columns keeps the column
// order of the source file (the filename column excluded).
type Table struct {
	Columns []string
	Rows    map[string]Metadata
}

// NewTable creates an empty table with the given columns.
func NewTable(columns ...string) *Table {
	return &Table{Columns: columns, Rows: make(map[string]Metadata)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Lookup returns the row for an image name. Rows keyed by the bare stem
// (spreadsheets often omit the extension) match as well.
func (t *Table) Lookup(name string) (Metadata, bool) {
	if t == nil {
		return nil, false
	}
	if m, ok := t.Rows[name]; ok {
		return m, true
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m, ok := t.Rows[stem]
	return m, ok
}

// Apply attaches each item's metadata row, returning new items.
func (t *Table) Apply(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		if m, ok := t.Lookup(it.Name); ok {
			it = it.WithMeta(m)
		}
		out[i] = it
	}
	return out
}

// HasColumn reports whether column exists in the table.
func (t *Table) HasColumn(column string) bool {
	return t != nil && slices.Contains(t.Columns, column)
}

// =============================================================================
// Loading
// =============================================================================

// LoadTable reads a metadata table. The format is chosen by extension:
//   - .csv: header row, first column holds the filename
//   - .json: an object of objects keyed by filename, or an array of objects
//     carrying a "filename" field
//   - .toml: one table per filename
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "metadata file %q not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "read %s", path)
	}

	var t *Table
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		t, err = ReadCSV(bytes.NewReader(data))
	case ".json":
		t, err = ReadJSON(data)
	case ".toml":
		t, err = ReadTOML(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported metadata format %q (use .csv, .json or .toml)", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMetadata, err, "parse %s", path)
	}
	return t, nil
}

// Headers returns the column names of a metadata file, for front ends that
// offer sort-key and caption-field choices.
func Headers(path string) ([]string, error) {
	t, err := LoadTable(path)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// ReadCSV parses a CSV table whose first column is the filename.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return NewTable(), nil
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	t := NewTable(trimAll(header[min(1, len(header)):])...)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		row := make(Metadata, len(t.Columns))
		for i, col := range t.Columns {
			if i+1 < len(rec) {
				row[col] = strings.TrimSpace(rec[i+1])
			}
		}
		t.Rows[strings.TrimSpace(rec[0])] = row
	}
	return t, nil
}

// ReadJSON parses a JSON table.
func ReadJSON(data []byte) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	rows := make(map[string]map[string]any)
	switch v := raw.(type) {
	case map[string]any:
		for name, row := range v {
			obj, ok := row.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("row %q is not an object", name)
			}
			rows[name] = obj
		}
	case []any:
		for i, row := range v {
			obj, ok := row.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("row %d is not an object", i)
			}
			name, _ := obj["filename"].(string)
			if name == "" {
				continue
			}
			delete(obj, "filename")
			rows[name] = obj
		}
	default:
		return nil, fmt.Errorf("expected object or array at top level")
	}
	return tableFromMaps(rows, nil), nil
}

// ReadTOML parses a TOML table. Column order follows first definition.
func ReadTOML(data []byte) (*Table, error) {
	var rows map[string]map[string]any
	md, err := toml.Decode(string(data), &rows)
	if err != nil {
		return nil, err
	}

	var order []string
	seen := make(map[string]bool)
	for _, key := range md.Keys() {
		if len(key) != 2 || seen[key[1]] {
			continue
		}
		seen[key[1]] = true
		order = append(order, key[1])
	}
	return tableFromMaps(rows, order), nil
}

// tableFromMaps converts decoded rows. Without an explicit order, columns are
// sorted by name because decoded maps carry none.
func tableFromMaps(rows map[string]map[string]any, order []string) *Table {
	if order == nil {
		seen := make(map[string]bool)
		for _, row := range rows {
			for col := range row {
				if !seen[col] {
					seen[col] = true
					order = append(order, col)
				}
			}
		}
		slices.Sort(order)
	}

	t := NewTable(order...)
	for name, row := range rows {
		m := make(Metadata, len(row))
		for col, v := range row {
			m[col] = formatCell(v)
		}
		t.Rows[name] = m
	}
	return t
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
