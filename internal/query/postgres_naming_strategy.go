package query

import (
	"gorm.io/gorm/schema"
)

// PostgreSQLNamingStrategy keeps Pascal-case table and column names instead
// of GORM's default snake_case, matching the identifiers the translator
// quotes.
type PostgreSQLNamingStrategy struct {
	schema.NamingStrategy
}

func NewPostgreSQLNamingStrategy() *PostgreSQLNamingStrategy {
	return &PostgreSQLNamingStrategy{}
}

// TableName returns the table name unchanged.
func (ns *PostgreSQLNamingStrategy) TableName(table string) string {
	return table
}

// ColumnName returns the column name unchanged.
func (ns *PostgreSQLNamingStrategy) ColumnName(table, column string) string {
	return column
}

func (ns *PostgreSQLNamingStrategy) JoinTableName(joinTable string) string {
	return joinTable
}

func (ns *PostgreSQLNamingStrategy) RelationshipFKName(rel schema.Relationship) string {
	return rel.Name + "ID"
}

func (ns *PostgreSQLNamingStrategy) IndexName(table, column string) string {
	return "idx_" + table + "_" + column
}

func (ns *PostgreSQLNamingStrategy) CheckerName(table, column string) string {
	return "chk_" + table + "_" + column
}
