package query

import (
	"regexp"
	"sort"
	"strings"
)

// PostgreSQLQueryTranslator rewrites Pascal-case field names in SQL
// fragments into quoted PostgreSQL identifiers, so callers can write
// conditions against Go field names.
type PostgreSQLQueryTranslator struct {
	entityFieldMap map[string][]string // entity/table name -> field names
}

func NewPostgreSQLQueryTranslator() *PostgreSQLQueryTranslator {
	return &PostgreSQLQueryTranslator{
		entityFieldMap: make(map[string][]string),
	}
}

// RegisterEntityFields records the field names of an entity so they can be
// recognized inside conditions.
func (t *PostgreSQLQueryTranslator) RegisterEntityFields(entityName string, fieldNames []string) {
	t.entityFieldMap[entityName] = fieldNames
}

// TranslateQuery quotes known field names inside a condition fragment.
func (t *PostgreSQLQueryTranslator) TranslateQuery(entityName, condition string) string {
	fieldNames, exists := t.entityFieldMap[entityName]
	if !exists {
		return condition
	}
	return t.translateCondition(condition, fieldNames)
}

func (t *PostgreSQLQueryTranslator) translateCondition(condition string, fieldNames []string) string {
	result := condition

	// Longer names first, so "Name" cannot clip "Username".
	sortedFields := make([]string, len(fieldNames))
	copy(sortedFields, fieldNames)
	sort.Slice(sortedFields, func(i, j int) bool {
		return len(sortedFields[i]) > len(sortedFields[j])
	})

	for _, fieldName := range sortedFields {
		if strings.Contains(result, `"`+fieldName+`"`) {
			continue
		}

		patterns := []string{
			// Comparisons: fieldName = ?, fieldName >= ? ...
			`\b` + regexp.QuoteMeta(fieldName) + `\s*(=|!=|<>|<|>|<=|>=)\s*`,
			`\b` + regexp.QuoteMeta(fieldName) + `\s+(LIKE|ILIKE)\s+`,
			`\b` + regexp.QuoteMeta(fieldName) + `\s+(IN|NOT\s+IN)\s+`,
			`\b` + regexp.QuoteMeta(fieldName) + `(\s+IS\s+(NOT\s+)?NULL)`,
			`\b` + regexp.QuoteMeta(fieldName) + `(\s+BETWEEN\s)`,
			`(ORDER\s+BY\s+)` + regexp.QuoteMeta(fieldName) + `(\s|$)`,
		}

		for _, pattern := range patterns {
			re := regexp.MustCompile(`(?i)` + pattern)
			result = re.ReplaceAllStringFunc(result, func(match string) string {
				return strings.ReplaceAll(match, fieldName, `"`+fieldName+`"`)
			})
		}
	}

	return result
}

// GetQuotedFieldName returns a field name as a quoted identifier.
func (t *PostgreSQLQueryTranslator) GetQuotedFieldName(fieldName string) string {
	return `"` + fieldName + `"`
}

// QuoteColumns quotes a pushed-down column list for a partial select.
func (t *PostgreSQLQueryTranslator) QuoteColumns(columns []string) []string {
	quoted := make([]string, len(columns))
	for i, column := range columns {
		quoted[i] = t.GetQuotedFieldName(column)
	}
	return quoted
}
