package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all schema models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Node{},
		&Species{},
		&Synonym{},
		&SchemaVersion{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// TableNames returns names of all tables managed by gnbackbone.
func TableNames() []string {
	gens := Generators()
	res := make([]string, len(gens))
	for i, v := range gens {
		res[i] = v.TableName()
	}
	return res
}
