package db

import (
	"fmt"

	"snaudit/prism/internal/schema"
)

// SaveDataset replaces the stored snapshot with the given one in a single
// transaction. A failed import leaves the previous snapshot intact.
func (d *DB) SaveDataset(ds *schema.Dataset) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM tables`,
		`DELETE FROM reference_fields`,
		`DELETE FROM relationships`,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("clearing snapshot: %w", err)
		}
	}

	insTable, err := tx.Prepare(`
		INSERT INTO tables (sys_id, name, label, parent_id, parent_name, category,
		                    created_by, created_at, record_count, custom_field_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insTable.Close()
	for i := range ds.Tables {
		t := &ds.Tables[i]
		if _, err := insTable.Exec(
			t.ID, t.Name, t.Label, t.ParentID, t.ParentName, string(t.Category),
			t.CreatedBy, t.CreatedAt, t.RecordCount, t.CustomFieldCount,
		); err != nil {
			return fmt.Errorf("inserting table %s: %w", t.Name, err)
		}
	}

	insRef, err := tx.Prepare(`
		INSERT INTO reference_fields (sys_id, source_table, column_name, target_table)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insRef.Close()
	for i := range ds.References {
		f := &ds.References[i]
		if _, err := insRef.Exec(f.ID, f.SourceTable, f.Column, f.TargetTable); err != nil {
			return fmt.Errorf("inserting reference %s.%s: %w", f.SourceTable, f.Column, err)
		}
	}

	insRel, err := tx.Prepare(`
		INSERT INTO relationships (sys_id, parent_table, child_table, rel_type, rel_count)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insRel.Close()
	for i := range ds.Relationships {
		r := &ds.Relationships[i]
		if _, err := insRel.Exec(r.ID, r.ParentTable, r.ChildTable, r.Type, r.Count); err != nil {
			return fmt.Errorf("inserting relationship %s->%s: %w", r.ParentTable, r.ChildTable, err)
		}
	}

	return tx.Commit()
}
