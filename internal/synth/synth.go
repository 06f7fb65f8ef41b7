package synth

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"snaudit/prism/internal/schema"
)

// Options controls synthetic schema generation. Zero values fall back to
// defaults.
type Options struct {
	Tables      int // total table count, backbone included
	CustomEvery int // every nth filler table is an in-instance creation
	RefEvery    int // every nth filler table gets a reference field
	RelEvery    int // every nth filler table gets an instance relationship
}

func (o Options) withDefaults() Options {
	d := Options{Tables: 300, CustomEvery: 4, RefEvery: 3, RelEvery: 5}
	if o.Tables > 0 {
		d.Tables = o.Tables
	}
	if o.CustomEvery > 0 {
		d.CustomEvery = o.CustomEvery
	}
	if o.RefEvery > 0 {
		d.RefEvery = o.RefEvery
	}
	if o.RelEvery > 0 {
		d.RelEvery = o.RelEvery
	}
	return d
}

// backbone is the fixed CI class skeleton every generated schema starts
// from. Order matters: parents precede children.
var backbone = []struct{ name, parent, label string }{
	{"cmdb_ci", "", "Configuration Item"},
	{"cmdb_ci_hardware", "cmdb_ci", "Hardware"},
	{"cmdb_ci_computer", "cmdb_ci_hardware", "Computer"},
	{"cmdb_ci_server", "cmdb_ci_computer", "Server"},
	{"cmdb_ci_linux_server", "cmdb_ci_server", "Linux Server"},
	{"cmdb_ci_win_server", "cmdb_ci_server", "Windows Server"},
	{"cmdb_ci_netgear", "cmdb_ci_hardware", "Network Gear"},
	{"cmdb_ci_storage_device", "cmdb_ci_hardware", "Storage Device"},
	{"cmdb_ci_service", "cmdb_ci", "Business Service"},
	{"cmdb_ci_service_technical", "cmdb_ci_service", "Technical Service"},
	{"cmdb_ci_appl", "cmdb_ci", "Application"},
	{"cmdb_ci_database", "cmdb_ci_appl", "Database"},
	{"cmdb_ci_db_mysql_instance", "cmdb_ci_database", "MySQL Instance"},
	{"cmdb_ci_db_ora_instance", "cmdb_ci_database", "Oracle Instance"},
	{"cmdb_ci_web_server", "cmdb_ci_appl", "Web Server"},
	{"cmdb_ci_endpoint", "cmdb_ci", "Endpoint"},
}

// attachPoints are the families filler tables extend, cycled in order.
var attachPoints = []string{
	"cmdb_ci_server",
	"cmdb_ci_appl",
	"cmdb_ci_service_technical",
	"cmdb_ci_netgear",
	"cmdb_ci_database",
	"cmdb_ci_endpoint",
	"cmdb_ci_storage_device",
}

var refColumns = []string{"managed_by", "assigned_to", "located_in", "depends_on_ci"}
var refTargets = []string{"cmdb_ci_server", "cmdb_ci_service", "cmdb_ci"}
var relTypes = []string{"depends_on", "runs_on", "connected_to"}

const dayMillis = 24 * 60 * 60 * 1000
const epochBase = int64(1577836800000) // 2020-01-01

// sysID derives a stable 32-char id from a record's identity, so repeated
// generations of the same schema are byte-identical.
func sysID(kind, name string) string {
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("prism:"+kind+":"+name))
	return strings.ReplaceAll(id.String(), "-", "")
}

func labelFor(name string) string {
	trimmed := strings.TrimPrefix(name, "u_")
	words := strings.Split(trimmed, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Generate produces a deterministic synthetic schema snapshot: the fixed
// backbone plus filler tables spread across its families, with a share of
// custom tables, reference fields into the hubs, and instance
// relationships. No randomness anywhere; same options, same dataset.
func Generate(opts Options) *schema.Dataset {
	o := opts.withDefaults()
	ds := &schema.Dataset{}

	idOf := make(map[string]string, o.Tables)
	add := func(rec schema.TableRecord) {
		idOf[rec.Name] = rec.ID
		ds.Tables = append(ds.Tables, rec)
	}

	for i, b := range backbone {
		if len(ds.Tables) >= o.Tables {
			break
		}
		rec := schema.TableRecord{
			ID:          sysID("table", b.name),
			Name:        b.name,
			Label:       b.label,
			Category:    schema.DeriveCategory(b.name, b.parent),
			CreatedBy:   "system",
			CreatedAt:   epochBase + int64(i)*dayMillis,
			RecordCount: 900*(len(backbone)-i) + 50,
		}
		if b.parent != "" {
			rec.ParentID = idOf[b.parent]
			rec.ParentName = b.parent
		}
		add(rec)
	}

	for i := len(ds.Tables); i < o.Tables; i++ {
		family := attachPoints[i%len(attachPoints)]
		name := fmt.Sprintf("%s_type_%03d", family, i)
		custom := i%o.CustomEvery == 0
		if custom {
			base := strings.TrimPrefix(family, "cmdb_ci_")
			name = fmt.Sprintf("u_%s_ext_%03d", base, i)
		}

		rec := schema.TableRecord{
			ID:          sysID("table", name),
			Name:        name,
			Label:       labelFor(name),
			Category:    schema.DeriveCategory(name, family),
			CreatedAt:   epochBase + int64(i)*dayMillis,
			RecordCount: (i * 37) % 5000,
		}
		if custom {
			rec.CreatedBy = []string{"admin", "jdoe", "integration.user"}[i%3]
			rec.CustomFieldCount = 3 + i%9
		} else {
			rec.CreatedBy = "system"
		}
		// Tables alternate between id and name parent linkage, the two
		// shapes real exports mix.
		if i%2 == 0 {
			rec.ParentID = idOf[family]
		} else {
			rec.ParentName = family
		}
		add(rec)

		if i%o.RefEvery == 0 {
			col := refColumns[i%len(refColumns)]
			ds.References = append(ds.References, schema.ReferenceField{
				ID:          sysID("ref", name+"."+col),
				SourceTable: name,
				Column:      col,
				TargetTable: refTargets[i%len(refTargets)],
			})
		}
		if i%o.RelEvery == 0 {
			ds.Relationships = append(ds.Relationships, schema.Relationship{
				ID:          sysID("rel", name),
				ParentTable: family,
				ChildTable:  name,
				Type:        relTypes[i%len(relTypes)],
				Count:       (i % 40) + 1,
			})
		}
	}

	return ds
}
