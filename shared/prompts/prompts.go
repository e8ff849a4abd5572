// Package prompts builds the instructions sent to the model at each wizard
// stage. Every template spells out the exact JSON shape of the reply because
// extraction trusts the model to honor it.
package prompts

import (
	"fmt"
	"strings"

	"github.com/kacperborowieckb/schema-wizard/shared/session"
)

type Version string

const (
	V1 Version = "v1"

	Current = V1
)

// Answer is one question id with the option the user picked.
type Answer struct {
	QuestionID string
	Value      string
}

// CodeInput carries everything the code generation stage embeds.
type CodeInput struct {
	Language            string
	Framework           string
	ProjectDescription  string
	Tables              []session.Table
	Schemas             map[string]session.TableSchema
	IncludeModels       bool
	IncludeMigrations   bool
	IncludeRepositories bool
}

// Builder renders the templates of one prompt version.
type Builder struct {
	version Version
}

func NewBuilder(version Version) (*Builder, error) {
	switch version {
	case V1:
		return &Builder{version: version}, nil
	default:
		return nil, fmt.Errorf("unsupported prompt version: %s", version)
	}
}

func (b *Builder) Version() Version {
	return b.version
}

func (b *Builder) Questions(description string) string {
	return fmt.Sprintf(`You are an expert database requirements analyst.

Based on the following project description, generate 5-7 multiple-choice questions
to understand the database requirements better. Each question must have 3-5 options.
Do NOT ask for free-text answers.

Project Description:
%s

The questions should cover:
1. Project complexity level
2. Expected scale/number of users
3. Data relationships complexity
4. Performance requirements
5. Security level
6. Any other domain-specific considerations

Return the response strictly in the following JSON format:
{
  "questions": [
    {
      "id": "q1",
      "question": "What is the complexity level of the project?",
      "options": ["Simple", "Moderate", "Complex", "Enterprise"]
    },
    {
      "id": "q2",
      "question": "What is the expected scale/number of users?",
      "options": ["Small (<1K)", "Medium (1K-100K)", "Large (100K-1M)", "Enterprise (>1M)"]
    }
  ]
}

Important:
- Every question must have a unique "id".
- All possible answers must be listed under "options".
- The JSON must be valid and parseable.
`, strings.TrimSpace(description))
}

func (b *Builder) DesignPlan(description string, answers []Answer) string {
	return fmt.Sprintf(`You are a senior database architect. Based on the project description and the
answers provided, create a comprehensive database design plan.

Project Description:
%s

User Requirements:
%s

Create a detailed database design that includes:
1. All necessary tables with clear descriptions
2. Table relationships and dependencies
3. Proper sequencing for table creation (considering foreign key dependencies)
4. Data type considerations
5. Indexing recommendations
6. Constraints and validations

Return the response in the following JSON format:
{
  "design_overview": "Overall database design explanation",
  "tables": [
    {
      "table_name": "users",
      "sequence_order": 1,
      "description": "Detailed description including columns, primary keys, foreign keys, indexes, and relationships with other tables",
      "dependencies": []
    },
    {
      "table_name": "orders",
      "sequence_order": 2,
      "description": "Detailed description including columns, primary keys, foreign keys, indexes, and relationships with other tables",
      "dependencies": ["users"]
    }
  ]
}

Order the tables by dependency: tables with no foreign keys come first, and every
table must have a larger sequence_order than each table it depends on.
Give enough detail for each table that its SQL schema can be generated from the
description alone.
`, strings.TrimSpace(description), FormatAnswers(answers))
}

func (b *Builder) TableSchema(table session.Table, allTables []string) string {
	return fmt.Sprintf(`Generate a complete SQL CREATE TABLE statement for the following table.

Table Information:
%s

Available tables in database: %s

Requirements:
1. Use PostgreSQL syntax (but keep it compatible with most SQL databases)
2. Include all appropriate columns with proper data types
3. Define a PRIMARY KEY constraint
4. Define FOREIGN KEY constraints where applicable
5. Add NOT NULL constraints where appropriate
6. Include CHECK constraints for validation
7. Add indexes for performance (as separate CREATE INDEX statements)
8. Add comments explaining the purpose of the table

Return the response in the following JSON format:
{
  "sql_schema": "Complete SQL CREATE TABLE statement with all constraints",
  "indexes": ["CREATE INDEX statements"],
  "relationships": ["Description of relationships with other tables"],
  "notes": "Additional implementation notes"
}

Ensure the SQL is production-ready and follows best practices.
`, table.Description, strings.Join(allTables, ", "))
}

func (b *Builder) Code(in CodeInput) string {
	var p strings.Builder

	fmt.Fprintf(&p, `You are an expert backend developer. Generate production-ready database setup code.

LANGUAGE: %s
FRAMEWORK: %s
PROJECT: %s

DATABASE SCHEMA (SQL):
%s

REQUIREMENTS:
1. Generate complete, production-ready code
2. Include proper error handling and validation
3. Follow best practices for %s
4. Include all necessary imports and dependencies
`, in.Language, in.Framework, strings.TrimSpace(in.ProjectDescription), ConcatSchemas(in.Tables, in.Schemas), in.Framework)

	n := 5
	if in.IncludeModels {
		fmt.Fprintf(&p, "%d. Generate model/entity definitions for all tables with proper relationships\n", n)
		n++
	}
	if in.IncludeMigrations {
		fmt.Fprintf(&p, "%d. Generate migration files for database schema creation\n", n)
		n++
	}
	if in.IncludeRepositories {
		fmt.Fprintf(&p, "%d. Generate repository pattern implementation with CRUD operations\n", n)
	}

	p.WriteString(`
Return the response in the following JSON format:
{
  "files": [
    {
      "filename": "path/to/file.ext",
      "content": "complete file content with all code",
      "description": "brief description of the file purpose"
    }
  ],
  "setup_instructions": "Step-by-step instructions to set up and run the database code"
}
`)

	return p.String()
}

// FormatAnswers renders answers as "- id: answer" lines.
func FormatAnswers(answers []Answer) string {
	lines := make([]string, len(answers))
	for i, a := range answers {
		lines[i] = fmt.Sprintf("- %s: %s", a.QuestionID, a.Value)
	}

	return strings.Join(lines, "\n")
}

// ConcatSchemas joins the SQL of every table that has a schema. tables must
// already be in creation order.
func ConcatSchemas(tables []session.Table, schemas map[string]session.TableSchema) string {
	parts := make([]string, 0, len(schemas))
	for _, t := range tables {
		schema, ok := schemas[t.Name]
		if !ok {
			continue
		}
		parts = append(parts, fmt.Sprintf("-- %s\n%s", t.Name, schema.SQL))
	}

	return strings.Join(parts, "\n\n")
}
