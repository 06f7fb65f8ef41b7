package schema

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Export timestamps look like "2019-07-08 17:05:45" (instance-local, treated
// as UTC). Numeric millis are accepted as-is.
const exportTimeLayout = "2006-01-02 15:04:05"

// NormalizeTables converts raw table-definition records into canonical
// TableRecords. Fields may be plain scalars or {value, display_value} pairs;
// the value half is used for identity and the parent link, the display half
// for labels. Records without a sys_id are dropped and reported.
func NormalizeTables(raws []any) ([]TableRecord, []Diagnostic) {
	var (
		records []TableRecord
		diags   []Diagnostic
	)
	for i, raw := range raws {
		rec, ok := raw.(map[string]any)
		if !ok {
			diags = append(diags, Diagnostic{
				Code:   DiagMissingID,
				Detail: fmt.Sprintf("record %d is not an object", i),
			})
			continue
		}

		id, _ := fieldPair(rec, "sys_id")
		name, nameDisplay := fieldPair(rec, "name")
		if id == "" {
			label := name
			if label == "" {
				label = fmt.Sprintf("record %d", i)
			}
			diags = append(diags, Diagnostic{
				Code:   DiagMissingID,
				Table:  name,
				Detail: fmt.Sprintf("dropped %s: no sys_id", label),
			})
			continue
		}

		parentValue, parentDisplay := fieldPair(rec, "super_class")
		_, label := fieldPair(rec, "label")
		if label == "" {
			label = nameDisplay
		}
		if label == "" {
			label = name
		}

		r := TableRecord{
			ID:               id,
			Name:             name,
			Label:            label,
			ParentID:         parentValue,
			ParentName:       parentDisplay,
			CreatedBy:        fieldString(rec, "sys_created_by"),
			CreatedAt:        fieldTime(rec, "sys_created_on"),
			RecordCount:      fieldInt(rec, "record_count"),
			CustomFieldCount: fieldInt(rec, "custom_field_count"),
		}
		parent := parentValue
		if parent == "" {
			parent = parentDisplay
		}
		if cat := fieldString(rec, "category"); cat != "" {
			r.Category = Category(cat)
		} else {
			r.Category = DeriveCategory(r.Name, parent)
		}
		records = append(records, r)
	}
	return records, diags
}

// NormalizeReferences converts raw reference-field records. Rows missing a
// sys_id or either table name are dropped silently; they carry no linkage.
func NormalizeReferences(raws []any) []ReferenceField {
	var refs []ReferenceField
	for _, raw := range raws {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := fieldPair(rec, "sys_id")
		source, _ := fieldPair(rec, "source_table")
		if source == "" {
			source, _ = fieldPair(rec, "name") // dictionary export shape
		}
		target, _ := fieldPair(rec, "target_table")
		if target == "" {
			target, _ = fieldPair(rec, "reference")
		}
		if id == "" || source == "" || target == "" {
			continue
		}
		column, _ := fieldPair(rec, "column")
		if column == "" {
			column, _ = fieldPair(rec, "element")
		}
		refs = append(refs, ReferenceField{
			ID:          id,
			SourceTable: source,
			Column:      column,
			TargetTable: target,
		})
	}
	return refs
}

// NormalizeRelationships converts raw relationship aggregates.
func NormalizeRelationships(raws []any) []Relationship {
	var rels []Relationship
	for _, raw := range raws {
		rec, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, _ := fieldPair(rec, "sys_id")
		parent, _ := fieldPair(rec, "parent_table")
		child, _ := fieldPair(rec, "child_table")
		if id == "" || parent == "" || child == "" {
			continue
		}
		relType, _ := fieldPair(rec, "type")
		if relType == "" {
			relType = "related_to"
		}
		rels = append(rels, Relationship{
			ID:          id,
			ParentTable: parent,
			ChildTable:  child,
			Type:        relType,
			Count:       fieldInt(rec, "count"),
		})
	}
	return rels
}

// fieldPair extracts one field's (value, display) halves. Wrapped pairs
// yield both; plain scalars stand in for both halves.
func fieldPair(rec map[string]any, key string) (value, display string) {
	raw, ok := rec[key]
	if !ok || raw == nil {
		return "", ""
	}
	switch v := raw.(type) {
	case map[string]any:
		value = scalarString(v["value"])
		display = scalarString(v["display_value"])
		if display == "" {
			display = scalarString(v["display"])
		}
		return value, display
	default:
		s := scalarString(raw)
		return s, s
	}
}

func fieldString(rec map[string]any, key string) string {
	v, d := fieldPair(rec, key)
	if v != "" {
		return v
	}
	return d
}

func fieldInt(rec map[string]any, key string) int {
	v, d := fieldPair(rec, key)
	if v == "" {
		v = d
	}
	if v == "" {
		return 0
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && !math.IsNaN(n) {
		return int(n)
	}
	return 0
}

func fieldTime(rec map[string]any, key string) int64 {
	v := fieldString(rec, key)
	if v == "" {
		return 0
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return ms
	}
	if t, err := time.Parse(exportTimeLayout, v); err == nil {
		return t.UnixMilli()
	}
	return 0
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
