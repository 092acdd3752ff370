package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/lotleads/enrich-cli/internal/model"
)

// Dataset is a parsed lead file: the raw grid plus the records built from it.
type Dataset struct {
	Path    string
	Headers []string
	Rows    [][]string
	Records []model.Record
	Fields  map[FieldType]int
}

// Read parses a CSV or XLSX lead file and builds records using the mapping.
func Read(path string, m *Mapping) (*Dataset, error) {
	if m == nil {
		m = &Mapping{}
	}

	var headers []string
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		headers, rows, err = readCSV(path)
	case ".xlsx":
		headers, rows, err = readXLSX(path)
	default:
		return nil, eris.Errorf("dataset: unsupported file type %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, eris.Errorf("dataset: %s has no header row", path)
	}

	fields := m.Resolve(headers)

	ds := &Dataset{
		Path:    path,
		Headers: headers,
		Rows:    rows,
		Fields:  fields,
		Records: make([]model.Record, 0, len(rows)),
	}
	for i, row := range rows {
		ds.Records = append(ds.Records, buildRecord(headers, row, fields, i))
	}
	return ds, nil
}

func readCSV(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var headers []string
	var rows [][]string
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, eris.Wrapf(err, "dataset: read %s", path)
		}
		if first {
			headers = record
			first = false
			continue
		}
		rows = append(rows, record)
	}
	return headers, rows, nil
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "dataset: open %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.Errorf("dataset: %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	var headers []string
	var rows [][]string
	for i, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		if i == 0 {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}
	return headers, rows, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func buildRecord(headers, row []string, fields map[FieldType]int, rowIdx int) model.Record {
	get := func(f FieldType) string {
		idx, ok := fields[f]
		if !ok {
			return ""
		}
		return cellAt(row, idx)
	}

	rec := model.Record{
		ID:          uuid.New().String(),
		CompanyName: get(FieldCompanyName),
		Address:     get(FieldAddress),
		City:        get(FieldCity),
		State:       get(FieldState),
		ZipCode:     get(FieldZipCode),
		Phone:       get(FieldPhone),
		Email:       get(FieldEmail),
		Website:     get(FieldWebsite),
		Row:         rowIdx,
	}

	mapped := make(map[int]bool, len(fields))
	for _, idx := range fields {
		mapped[idx] = true
	}
	for i, h := range headers {
		if mapped[i] {
			continue
		}
		if v := cellAt(row, i); v != "" {
			if rec.Extra == nil {
				rec.Extra = make(map[string]string)
			}
			rec.Extra[h] = v
		}
	}
	return rec
}
