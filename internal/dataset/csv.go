// Package dataset reads product tables from CSV and writes evaluated tables back.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Veraticus/nutrisort/internal/common"
	"github.com/Veraticus/nutrisort/internal/model"
)

// Record is one CSV row keyed by column name.
type Record map[string]string

// File is a parsed CSV file with its header order.
type File struct {
	Header  []string
	Records []Record
}

// LoadCSV reads a CSV file. The first row is treated as headers.
func LoadCSV(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s is empty (no header row)", path)
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	seen := make(map[string]bool, len(header))
	for _, h := range header {
		if seen[h] {
			return nil, fmt.Errorf("csv: %s has duplicate column %q", path, h)
		}
		seen[h] = true
	}

	out := &File{Header: header, Records: make([]Record, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make(Record, len(header))
		for j, h := range header {
			row[h] = record[j]
		}
		out.Records = append(out.Records, row)
	}

	return out, nil
}

// Schema tells ToTable which columns hold what.
type Schema struct {
	// IDColumn identifies rows; when empty or absent the 1-based row number is used.
	IDColumn        string
	ReferenceColumn string
	Criteria        []string
}

// ToTable converts CSV records into a table. Every criterion cell must
// parse as a number; other columns are carried along as string columns.
func ToTable(file *File, schema Schema) (*model.Table, error) {
	columns := make(map[string]bool, len(file.Header))
	for _, h := range file.Header {
		columns[h] = true
	}
	for _, c := range schema.Criteria {
		if !columns[c] {
			return nil, fmt.Errorf("%w: column %q not found", common.ErrInvalidData, c)
		}
	}
	if !columns[schema.ReferenceColumn] {
		return nil, fmt.Errorf("%w: reference column %q not found", common.ErrInvalidData, schema.ReferenceColumn)
	}
	useID := schema.IDColumn != "" && columns[schema.IDColumn]

	rows := make([]model.Row, len(file.Records))
	for i, rec := range file.Records {
		id := strconv.Itoa(i + 1)
		if useID {
			id = rec[schema.IDColumn]
		}

		values := make(model.Alternative, len(schema.Criteria))
		for _, c := range schema.Criteria {
			raw := strings.TrimSpace(rec[c])
			if raw == "" {
				return nil, common.NewDataError(id, c, "", fmt.Errorf("empty cell"))
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, common.NewDataError(id, c, raw, fmt.Errorf("not a number"))
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, common.NewDataError(id, c, raw, fmt.Errorf("value is not finite"))
			}
			values[c] = v
		}

		rows[i] = model.Row{
			ID:        id,
			Values:    values,
			Reference: strings.TrimSpace(rec[schema.ReferenceColumn]),
		}
	}

	table := model.NewTable(rows)
	for _, h := range file.Header {
		if h == schema.ReferenceColumn || (useID && h == schema.IDColumn) || slices.Contains(schema.Criteria, h) {
			continue
		}
		cells := make([]string, len(file.Records))
		for i, rec := range file.Records {
			cells[i] = rec[h]
		}
		table.AddColumn(h, cells)
	}

	return table, nil
}

// Load reads a CSV file and converts it with schema.
func Load(path string, schema Schema) (*model.Table, error) {
	file, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	table, err := ToTable(file, schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// WriteCSV writes the id, criteria, reference and every string column of
// the table, in that order.
func WriteCSV(path string, table *model.Table, schema Schema) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create %s: %w", path, err)
	}

	idColumn := schema.IDColumn
	if idColumn == "" {
		idColumn = "id"
	}
	names := table.ColumnNames()
	header := make([]string, 0, 2+len(schema.Criteria)+len(names))
	header = append(header, idColumn)
	header = append(header, schema.Criteria...)
	header = append(header, schema.ReferenceColumn)
	header = append(header, names...)

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write %s: %w", path, err)
	}

	columns := make([][]string, len(names))
	for j, name := range names {
		columns[j], _ = table.Column(name)
	}

	record := make([]string, len(header))
	for i, row := range table.Rows {
		record = record[:0]
		record = append(record, row.ID)
		for _, c := range schema.Criteria {
			record = append(record, strconv.FormatFloat(row.Values[c], 'f', -1, 64))
		}
		record = append(record, row.Reference)
		for j := range names {
			record = append(record, columns[j][i])
		}
		if err := w.Write(record); err != nil {
			_ = f.Close()
			return fmt.Errorf("csv: write %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: flush %s: %w", path, err)
	}
	return f.Close()
}
