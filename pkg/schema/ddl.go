package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// generateDDL creates a CREATE TABLE statement from struct tags.
// Embedded structs contribute their columns in place.
func generateDDL(model any, tableName string) string {
	v := reflect.ValueOf(model)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	columns := ddlColumns(v.Type())
	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		tableName,
		strings.Join(columns, ",\n"))

	return ddl
}

func ddlColumns(t reflect.Type) []string {
	var res []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			res = append(res, ddlColumns(field.Type)...)
			continue
		}
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			res = append(res, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}
	return res
}

// Node DDL methods
func (n Node) TableDDL() string {
	return generateDDL(n, n.TableName())
}

func (n Node) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_nodes_lineage ON nodes(rank, " +
			strings.Join(LineageColumns, ", ") + ");",
		"CREATE INDEX idx_nodes_parent_id ON nodes(parent_id);",
		"CREATE INDEX idx_nodes_rank_name ON nodes(rank, name);",
		"CREATE INDEX idx_nodes_species_id ON nodes(species_id);",
		"CREATE INDEX idx_nodes_lft ON nodes(lft);",
	}
}

func (n Node) TableName() string {
	return "nodes"
}

// Species DDL methods
func (s Species) TableDDL() string {
	return generateDDL(s, s.TableName())
}

func (s Species) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_species_canonical_name ON species(canonical_name);",
	}
}

func (s Species) TableName() string {
	return "species"
}

// Synonym DDL methods
func (s Synonym) TableDDL() string {
	return generateDDL(s, s.TableName())
}

func (s Synonym) IndexDDL() []string {
	return []string{
		"CREATE UNIQUE INDEX idx_synonyms_name_species ON synonyms(name, species_id);",
	}
}

func (s Synonym) TableName() string {
	return "synonyms"
}

// SchemaVersion DDL methods
func (sv SchemaVersion) TableDDL() string {
	return generateDDL(sv, sv.TableName())
}

func (sv SchemaVersion) IndexDDL() []string {
	return []string{}
}

func (sv SchemaVersion) TableName() string {
	return "schema_versions"
}

// AllDDL returns CREATE TABLE and CREATE INDEX statements of all models.
func AllDDL() []string {
	var res []string
	for _, v := range Generators() {
		res = append(res, v.TableDDL())
		res = append(res, v.IndexDDL()...)
	}
	return res
}

// Generators returns DDL generators of all tables.
func Generators() []DDLGenerator {
	return []DDLGenerator{
		Node{},
		Species{},
		Synonym{},
		SchemaVersion{},
	}
}
