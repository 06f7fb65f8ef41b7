package schema

import "strings"

// Category classifies how a table came to exist in the instance.
type Category string

const (
	CategoryBase     Category = "base"     // shipped root tables
	CategoryExtended Category = "extended" // extends another table
	CategoryCustom   Category = "custom"   // created in-instance
)

// TableRecord is the canonical form of one table-definition record.
// Normalization flattens wrapped export fields into these columns; value
// halves feed identity and linkage, display halves feed labels.
type TableRecord struct {
	ID               string   `json:"sys_id"`
	Name             string   `json:"name"`
	Label            string   `json:"label"`
	ParentID         string   `json:"parent_id,omitempty"`
	ParentName       string   `json:"parent_name,omitempty"`
	Category         Category `json:"category"`
	CreatedBy        string   `json:"created_by,omitempty"`
	CreatedAt        int64    `json:"created_at,omitempty"` // Unix millis
	RecordCount      int      `json:"record_count"`
	CustomFieldCount int      `json:"custom_field_count"`
}

// ReferenceField is a column on one table pointing at rows of another.
type ReferenceField struct {
	ID          string `json:"sys_id"`
	SourceTable string `json:"source_table"`
	Column      string `json:"column"`
	TargetTable string `json:"target_table"`
}

// Relationship is an instance-data relationship aggregated per table pair.
type Relationship struct {
	ID          string `json:"sys_id"`
	ParentTable string `json:"parent_table"`
	ChildTable  string `json:"child_table"`
	Type        string `json:"type"`
	Count       int    `json:"count"`
}

// Dataset bundles everything one snapshot of an instance's schema contains.
type Dataset struct {
	Tables        []TableRecord    `json:"tables"`
	References    []ReferenceField `json:"references"`
	Relationships []Relationship   `json:"relationships"`
}

// DeriveCategory applies the fallback classification for records whose
// export carries no explicit category. An explicit value always wins over
// this heuristic.
func DeriveCategory(name, parent string) Category {
	if strings.HasPrefix(name, "u_") || strings.HasPrefix(name, "x_") {
		return CategoryCustom
	}
	if parent == "" {
		return CategoryBase
	}
	return CategoryExtended
}

// IsCustom reports whether the record is an in-instance creation.
func (r *TableRecord) IsCustom() bool {
	return r.Category == CategoryCustom
}
