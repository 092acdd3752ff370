// Package dataset reads lead files (CSV or XLSX), maps their columns onto
// the record fields the pipeline expects, and writes the enriched output.
package dataset

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FieldType names a record field a spreadsheet column can map to.
type FieldType string

const (
	FieldCompanyName FieldType = "company_name"
	FieldAddress     FieldType = "address"
	FieldCity        FieldType = "city"
	FieldState       FieldType = "state"
	FieldZipCode     FieldType = "zip_code"
	FieldPhone       FieldType = "phone"
	FieldEmail       FieldType = "email"
	FieldWebsite     FieldType = "website"
	FieldContactName FieldType = "contact_name"
)

// Mapping is an optional user-supplied column mapping. Columns not listed
// are auto-detected by header keywords; anything still unmatched is carried
// through untouched as an extra field.
type Mapping struct {
	Columns map[string]FieldType `yaml:"columns"` // header name -> field type
}

// LoadMapping reads a YAML mapping file. An empty path returns an empty
// mapping, leaving everything to auto-detection.
func LoadMapping(path string) (*Mapping, error) {
	if path == "" {
		return &Mapping{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "dataset: read mapping %s", path)
	}

	var m Mapping
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "dataset: parse mapping %s", path)
	}
	return &m, nil
}

// detectPatterns are header keywords tried in order for each field type when
// no explicit mapping covers it.
var detectPatterns = map[FieldType][]string{
	FieldCompanyName: {"company", "dealer", "business", "name"},
	FieldAddress:     {"address", "location", "street"},
	FieldPhone:       {"phone", "tel", "mobile"},
	FieldEmail:       {"email", "e-mail"},
	FieldCity:        {"city"},
	FieldState:       {"state"},
	FieldZipCode:     {"zip", "postal"},
	FieldWebsite:     {"website", "url", "web"},
	FieldContactName: {"contact", "person"},
}

// detectOrder fixes the resolution order so greedier patterns (company_name
// matches "name") cannot steal a column from a more specific field.
var detectOrder = []FieldType{
	FieldWebsite, FieldEmail, FieldPhone, FieldZipCode, FieldCity, FieldState,
	FieldAddress, FieldContactName, FieldCompanyName,
}

// Resolve maps each field type to a column index in headers, combining the
// explicit mapping with keyword auto-detection. Each column is claimed at
// most once.
func (m *Mapping) Resolve(headers []string) map[FieldType]int {
	resolved := make(map[FieldType]int)
	claimed := make(map[int]bool)

	lower := make([]string, len(headers))
	for i, h := range headers {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	// Explicit mappings first.
	for header, field := range m.Columns {
		want := strings.ToLower(strings.TrimSpace(header))
		for i, h := range lower {
			if h == want && !claimed[i] {
				resolved[field] = i
				claimed[i] = true
				break
			}
		}
	}

	// Auto-detect the rest.
	for _, field := range detectOrder {
		if _, ok := resolved[field]; ok {
			continue
		}
		for _, pattern := range detectPatterns[field] {
			found := -1
			for i, h := range lower {
				if !claimed[i] && strings.Contains(h, pattern) {
					found = i
					break
				}
			}
			if found >= 0 {
				resolved[field] = found
				claimed[found] = true
				break
			}
		}
	}

	return resolved
}
