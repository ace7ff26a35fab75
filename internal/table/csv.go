package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column aliases accepted in the CSV header, per the historical data
// contract (Rep1/Rep2/Rep3 name the option and terminal columns in older
// exports of the same sheet).
var headerAliases = map[string]string{
	"key":      "key",
	"option1":  "option1",
	"rep1":     "option1",
	"option2":  "option2",
	"rep2":     "option2",
	"terminal": "terminal",
	"rep3":     "terminal",
}

// CSVSource reads the dataset from a local CSV file.
type CSVSource struct {
	Path string
}

// NewCSVSource returns a source reading from path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads and validates the CSV file. Missing cells normalize to the
// empty string.
func (s *CSVSource) Load() ([]Row, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", ErrLoad, s.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may omit trailing cells
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty file %s", ErrFormat, s.Path)
		}
		return nil, fmt.Errorf("%w: read header: %v", ErrLoad, err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrLoad, err)
		}
		rows = append(rows, Row{
			Key:      cell(record, cols["key"]),
			Option1:  cell(record, cols["option1"]),
			Option2:  cell(record, cols["option2"]),
			Terminal: cell(record, cols["terminal"]),
		})
	}
	return rows, nil
}

func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, 4)
	for i, raw := range header {
		name, ok := headerAliases[strings.ToLower(strings.TrimSpace(raw))]
		if !ok {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, required := range []string{"key", "option1", "option2", "terminal"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrFormat, required)
		}
	}
	return cols, nil
}

func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
