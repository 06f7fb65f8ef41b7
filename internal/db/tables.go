package db

import (
	"database/sql"
	"errors"
	"fmt"

	"snaudit/prism/internal/schema"
)

const tableColumns = `sys_id, name, label, parent_id, parent_name, category,
       created_by, created_at, record_count, custom_field_count`

// scanTable scans a row into a TableRecord. The row must carry all table
// columns in standard order.
func scanTable(scanner interface{ Scan(dest ...any) error }) (schema.TableRecord, error) {
	var r schema.TableRecord
	err := scanner.Scan(
		&r.ID, &r.Name, &r.Label, &r.ParentID, &r.ParentName, &r.Category,
		&r.CreatedBy, &r.CreatedAt, &r.RecordCount, &r.CustomFieldCount,
	)
	return r, err
}

// AllTables returns every stored table record ordered by name.
func (d *DB) AllTables() ([]schema.TableRecord, error) {
	rows, err := d.conn.Query(`SELECT ` + tableColumns + ` FROM tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []schema.TableRecord
	for rows.Next() {
		r, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// GetTable returns a single table by exact name, or nil when absent.
func (d *DB) GetTable(name string) (*schema.TableRecord, error) {
	row := d.conn.QueryRow(`SELECT `+tableColumns+` FROM tables WHERE name = ?`, name)
	r, err := scanTable(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// TablesByPrefix finds tables whose name starts with the given prefix.
func (d *DB) TablesByPrefix(prefix string, limit int) ([]schema.TableRecord, error) {
	rows, err := d.conn.Query(
		`SELECT `+tableColumns+` FROM tables WHERE name LIKE ? || '%' ORDER BY name LIMIT ?`,
		prefix, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []schema.TableRecord
	for rows.Next() {
		r, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SearchTables matches a term against names and labels, case-insensitively.
func (d *DB) SearchTables(term string, limit int) ([]schema.TableRecord, error) {
	rows, err := d.conn.Query(
		`SELECT `+tableColumns+` FROM tables
		 WHERE name LIKE '%' || ? || '%' OR label LIKE '%' || ? || '%'
		 ORDER BY name LIMIT ?`,
		term, term, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []schema.TableRecord
	for rows.Next() {
		r, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// AllReferences returns every stored reference field.
func (d *DB) AllReferences() ([]schema.ReferenceField, error) {
	rows, err := d.conn.Query(
		`SELECT sys_id, source_table, column_name, target_table
		 FROM reference_fields ORDER BY source_table, column_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []schema.ReferenceField
	for rows.Next() {
		var f schema.ReferenceField
		if err := rows.Scan(&f.ID, &f.SourceTable, &f.Column, &f.TargetTable); err != nil {
			return nil, err
		}
		refs = append(refs, f)
	}
	return refs, rows.Err()
}

// AllRelationships returns every stored relationship row.
func (d *DB) AllRelationships() ([]schema.Relationship, error) {
	rows, err := d.conn.Query(
		`SELECT sys_id, parent_table, child_table, rel_type, rel_count
		 FROM relationships ORDER BY parent_table, child_table`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []schema.Relationship
	for rows.Next() {
		var r schema.Relationship
		if err := rows.Scan(&r.ID, &r.ParentTable, &r.ChildTable, &r.Type, &r.Count); err != nil {
			return nil, err
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// LoadDataset assembles the full stored snapshot.
func (d *DB) LoadDataset() (*schema.Dataset, error) {
	tables, err := d.AllTables()
	if err != nil {
		return nil, fmt.Errorf("loading tables: %w", err)
	}
	refs, err := d.AllReferences()
	if err != nil {
		return nil, fmt.Errorf("loading reference fields: %w", err)
	}
	rels, err := d.AllRelationships()
	if err != nil {
		return nil, fmt.Errorf("loading relationships: %w", err)
	}
	return &schema.Dataset{Tables: tables, References: refs, Relationships: rels}, nil
}

// CountTables reports how many table records the snapshot holds.
func (d *DB) CountTables() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM tables`).Scan(&n)
	return n, err
}
