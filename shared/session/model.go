package session

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/kacperborowieckb/schema-wizard/shared/secret"
)

type Stage string

const (
	StageCreated        Stage = "created"
	StageQuestionsReady Stage = "questions_ready"
	StagePlanReady      Stage = "plan_ready"
	StageSchemaReady    Stage = "schema_ready"
	StageCodeReady      Stage = "code_ready"
)

// Session is the accumulated state of one schema design workflow.
type Session struct {
	ID                 string                    `json:"session_id"`
	ProjectDescription string                    `json:"project_description"`
	Model              string                    `json:"model_name"`
	Credential         secret.Credential         `json:"-"`
	Questions          []Question                `json:"questions"`
	Answers            map[string]string         `json:"answers,omitempty"`
	Plan               *DesignPlan               `json:"detailed_design,omitempty"`
	// PlanRevision counts committed plans. Work derived from a plan records
	// the revision it started from.
	PlanRevision       int                       `json:"plan_revision"`
	Schemas            map[string]TableSchema    `json:"table_schemas,omitempty"`
	Code               map[CodeTarget]CodeBundle `json:"generated_code,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

type Question struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type DesignPlan struct {
	Overview string  `json:"design_overview"`
	Tables   []Table `json:"tables"`
}

type Table struct {
	Name          string   `json:"table_name"`
	SequenceOrder int      `json:"sequence_order"`
	Description   string   `json:"description"`
	Dependencies  []string `json:"dependencies"`
}

type TableSchema struct {
	TableName     string   `json:"table_name"`
	SQL           string   `json:"sql_schema"`
	Relationships []string `json:"relationships"`
}

type CodeFile struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	Description string `json:"description"`
}

type CodeBundle struct {
	Language          string     `json:"language"`
	Framework         string     `json:"framework"`
	Files             []CodeFile `json:"files"`
	SetupInstructions string     `json:"setup_instructions"`
}

// CodeTarget keys generated code. Its text form is "language/framework" so it
// can be used as a JSON object key.
type CodeTarget struct {
	Language  string
	Framework string
}

func (t CodeTarget) String() string {
	return t.Language + "/" + t.Framework
}

func (t CodeTarget) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *CodeTarget) UnmarshalText(text []byte) error {
	language, framework, ok := strings.Cut(string(text), "/")
	if !ok {
		return fmt.Errorf("invalid code target %q", text)
	}

	t.Language, t.Framework = language, framework
	return nil
}

// Stage reports the furthest stage the session has reached.
func (s *Session) Stage() Stage {
	switch {
	case len(s.Code) > 0:
		return StageCodeReady
	case len(s.Schemas) > 0:
		return StageSchemaReady
	case s.Plan != nil:
		return StagePlanReady
	case len(s.Questions) > 0:
		return StageQuestionsReady
	default:
		return StageCreated
	}
}

func (s *Session) HasQuestion(id string) bool {
	return slices.ContainsFunc(s.Questions, func(q Question) bool { return q.ID == id })
}

// Clone returns a deep copy so callers never share maps or slices with the
// store.
func (s *Session) Clone() Session {
	out := *s
	out.Questions = cloneQuestions(s.Questions)
	out.Answers = cloneMap(s.Answers)

	if s.Plan != nil {
		plan := s.Plan.Clone()
		out.Plan = &plan
	}

	if s.Schemas != nil {
		out.Schemas = make(map[string]TableSchema, len(s.Schemas))
		for name, schema := range s.Schemas {
			schema.Relationships = slices.Clone(schema.Relationships)
			out.Schemas[name] = schema
		}
	}

	if s.Code != nil {
		out.Code = make(map[CodeTarget]CodeBundle, len(s.Code))
		for target, bundle := range s.Code {
			bundle.Files = slices.Clone(bundle.Files)
			out.Code[target] = bundle
		}
	}

	return out
}

func (p *DesignPlan) Clone() DesignPlan {
	out := DesignPlan{Overview: p.Overview, Tables: make([]Table, len(p.Tables))}
	for i, t := range p.Tables {
		t.Dependencies = slices.Clone(t.Dependencies)
		out.Tables[i] = t
	}

	return out
}

// Ordered returns the tables by ascending sequence order. Ties keep the order
// the plan declared them in.
func (p *DesignPlan) Ordered() []Table {
	tables := slices.Clone(p.Tables)
	sort.SliceStable(tables, func(i, j int) bool {
		return tables[i].SequenceOrder < tables[j].SequenceOrder
	})

	return tables
}

func (p *DesignPlan) Table(name string) (Table, bool) {
	for _, t := range p.Tables {
		if t.Name == name {
			return t, true
		}
	}

	return Table{}, false
}

func (p *DesignPlan) TableNames() []string {
	names := make([]string, len(p.Tables))
	for i, t := range p.Tables {
		names[i] = t.Name
	}

	return names
}

// Render produces the human readable plan: the overview followed by one
// numbered line per table in creation order.
func (p *DesignPlan) Render() string {
	var b strings.Builder

	b.WriteString(p.Overview)
	b.WriteString("\n\nTables:\n")

	for _, t := range p.Ordered() {
		fmt.Fprintf(&b, "\n%d. %s: %s\n", t.SequenceOrder, t.Name, t.Description)
	}

	return b.String()
}

// OrderingIssues lists dependencies that are unknown to the plan or not
// created strictly before their dependent. The plan is not rejected for them.
func (p *DesignPlan) OrderingIssues() []string {
	order := make(map[string]int, len(p.Tables))
	for _, t := range p.Tables {
		order[t.Name] = t.SequenceOrder
	}

	var issues []string
	for _, t := range p.Tables {
		for _, dep := range t.Dependencies {
			depOrder, ok := order[dep]
			switch {
			case !ok:
				issues = append(issues, fmt.Sprintf("%s depends on unknown table %s", t.Name, dep))
			case depOrder >= t.SequenceOrder:
				issues = append(issues, fmt.Sprintf("%s (order %d) depends on %s (order %d)", t.Name, t.SequenceOrder, dep, depOrder))
			}
		}
	}

	return issues
}

func cloneQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}

	out := make([]Question, len(in))
	for i, q := range in {
		q.Options = slices.Clone(q.Options)
		out[i] = q
	}

	return out
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}

	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
