package schema

import (
	"fmt"
	"os"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Export files arrive in a few shapes: a bare array of table records, an API
// envelope {"result": [...]}, or a bundle holding tables, references and
// relationships side by side. Selectors are tried in order.
var (
	tableSelectors = []string{"$.tables", "$.result", "$"}
	refSelectors   = []string{"$.references", "$.reference_fields"}
	relSelectors   = []string{"$.relationships"}
)

// ParseDataset parses a raw JSON export into a normalized Dataset.
func ParseDataset(data []byte) (*Dataset, []Diagnostic, error) {
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing export: %w", err)
	}

	rawTables := firstArray(doc, tableSelectors)
	if rawTables == nil {
		return nil, nil, fmt.Errorf("export contains no table records")
	}
	tables, diags := NormalizeTables(rawTables)

	ds := &Dataset{
		Tables:        tables,
		References:    NormalizeReferences(firstArray(doc, refSelectors)),
		Relationships: NormalizeRelationships(firstArray(doc, relSelectors)),
	}
	return ds, diags, nil
}

// LoadJSON reads and parses an export file.
func LoadJSON(path string) (*Dataset, []Diagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading export: %w", err)
	}
	return ParseDataset(data)
}

// firstArray returns the first selector that lands on a non-empty array.
func firstArray(doc any, selectors []string) []any {
	for _, sel := range selectors {
		x, err := jp.ParseString(sel)
		if err != nil {
			continue
		}
		for _, got := range x.Get(doc) {
			if arr, ok := got.([]any); ok && len(arr) > 0 {
				return arr
			}
		}
	}
	return nil
}
