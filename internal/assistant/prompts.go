package assistant

import (
	"fmt"
	"strings"

	"github.com/GoogleCloudPlatform/db-query-assistant/internal/genai"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/query"
	"github.com/GoogleCloudPlatform/db-query-assistant/internal/schema"
)

var validationSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"isValid": {
			Type:        genai.TypeBoolean,
			Description: "Whether the information provided is sufficient to generate the query.",
		},
		"clarificationNeeded": {
			Type:        genai.TypeString,
			Description: "If the information is insufficient, the question to ask for clarification.",
			Nullable:    true,
		},
	},
	Required: []string{"isValid"},
}

func translationSchema() *genai.Schema {
	ops := make([]string, len(query.Operators))
	for i, op := range query.Operators {
		ops[i] = string(op)
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"tableName": {
				Type:        genai.TypeString,
				Description: "The name of the table to query.",
				Nullable:    true,
			},
			"whereClauses": {
				Type:        genai.TypeArray,
				Description: "WHERE conditions, combined with AND.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"column":   {Type: genai.TypeString, Description: "The column to filter on."},
						"operator": {Type: genai.TypeString, Description: "The comparison operator.", Enum: ops},
						"value":    {Type: genai.TypeString, Description: "The value to compare against."},
					},
					Required: []string{"column", "operator", "value"},
				},
			},
			"sqlQuery": {
				Type:        genai.TypeString,
				Description: "The SQL query for display purposes.",
			},
			"missingDataExplanation": {
				Type:        genai.TypeString,
				Description: "An explanation of any missing or insufficient data.",
				Nullable:    true,
			},
		},
		Required: []string{"sqlQuery"},
	}
}

func knowledgeSection(additionalContext string) string {
	if strings.TrimSpace(additionalContext) == "" {
		return ""
	}
	return fmt.Sprintf(`
	********** Knowledge Context **********
	%s
	********** End Knowledge Context **********
`, strings.TrimSpace(additionalContext))
}

func validationPrompt(snap *schema.Snapshot, request, expectedOutput, additionalContext string) genai.StructuredPrompt {
	if strings.TrimSpace(expectedOutput) == "" {
		expectedOutput = "(not specified)"
	}
	text := fmt.Sprintf(`
	You validate whether the provided information is sufficient to generate a single-table SQL query from a natural language request.

	Tables available in the database: %s

	Tables and columns (table.column: type - description):
%s%s
	Natural language request: %s

	Expected output: %s

	**Instructions:**
	1. The request is sufficient when it resolves to exactly one table and a small set of equality or comparison filters on that table's columns.
	2. If it is sufficient, return isValid as true and omit clarificationNeeded.
	3. If it is not (ambiguous table, missing filter value, a column that does not exist, or data spread over several tables), return isValid as false and a clarificationNeeded question to ask the user.
	`, schema.JoinTableNames(snap.Tables), snap.Describe(), knowledgeSection(additionalContext), request, expectedOutput)

	return genai.StructuredPrompt{Name: "validate", Text: text, Schema: validationSchema, Temperature: 0.1}
}

func translationPrompt(snap *schema.Snapshot, request, additionalContext string) genai.StructuredPrompt {
	ops := make([]string, len(query.Operators))
	for i, op := range query.Operators {
		ops[i] = "'" + string(op) + "'"
	}
	text := fmt.Sprintf(`
	You are an expert SQL translator. Translate a natural language request into a structured query object and a corresponding SQL query string for display.

	The database contains the following tables: %s

	Here is table and column information (table.column: type - description):
%s%s
	**Instructions:**
	1. Choose the single table that best matches the request. 'tableName' must be one of the available tables.
	2. 'whereClauses' is an array of objects with 'column', 'operator' and 'value', using only columns of that table.
	3. 'operator' must be one of: %s. Use 'LIKE' for partial text matches; 'value' is then the plain substring, without wildcards.
	4. 'sqlQuery' is a SQL query string reflecting the structured query. It is for display only.
	5. If the request needs data from more than one table (for example a JOIN), or no table matches, set 'missingDataExplanation' to explain what is missing or why the request is too complex, and do not return 'tableName' or 'whereClauses'.

	Natural language request: %s
	`, schema.JoinTableNames(snap.Tables), snap.Describe(), knowledgeSection(additionalContext), strings.Join(ops, ", "), request)

	return genai.StructuredPrompt{Name: "translate", Text: text, Schema: translationSchema(), Temperature: 0.1}
}
