// Package pipeline sequences the wizard stages: questions, design plan,
// per-table schema and code generation. Each stage reads the session, builds a
// prompt, makes one completion call, extracts the reply and commits it back.
//
// A failed stage leaves the session as it was. Nothing is retried here.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kacperborowieckb/schema-wizard/shared/completion"
	"github.com/kacperborowieckb/schema-wizard/shared/extract"
	"github.com/kacperborowieckb/schema-wizard/shared/messaging"
	"github.com/kacperborowieckb/schema-wizard/shared/prompts"
	"github.com/kacperborowieckb/schema-wizard/shared/secret"
	"github.com/kacperborowieckb/schema-wizard/shared/session"
)

const publishTimeout = 5 * time.Second

// EventPublisher receives an event after every committed stage.
type EventPublisher interface {
	Publish(ctx context.Context, event messaging.StageEvent) error
}

type Config struct {
	// DefaultModel is used when a caller does not pick one.
	DefaultModel string
	// Prompts defaults to the current prompt version.
	Prompts *prompts.Builder
	// Events is optional.
	Events EventPublisher
}

type Pipeline struct {
	store        *session.Store
	gateway      completion.Gateway
	prompts      *prompts.Builder
	events       EventPublisher
	defaultModel string
	now          func() time.Time
}

func New(store *session.Store, gateway completion.Gateway, cfg Config) (*Pipeline, error) {
	if store == nil || gateway == nil {
		return nil, errors.New("pipeline requires a session store and a completion gateway")
	}

	builder := cfg.Prompts
	if builder == nil {
		var err error
		if builder, err = prompts.NewBuilder(prompts.Current); err != nil {
			return nil, err
		}
	}

	model := cfg.DefaultModel
	if model == "" {
		model = completion.DefaultModel
	}

	return &Pipeline{
		store:        store,
		gateway:      gateway,
		prompts:      builder,
		events:       cfg.Events,
		defaultModel: model,
		now:          time.Now,
	}, nil
}

type QuestionsInput struct {
	Description string
	Model       string
	Credential  secret.Credential
}

type CodeRequest struct {
	Language            string
	Framework           string
	IncludeModels       bool
	IncludeMigrations   bool
	IncludeRepositories bool
}

// GenerateQuestions starts a workflow. The session only exists once the
// questions were generated successfully.
func (p *Pipeline) GenerateQuestions(ctx context.Context, in QuestionsInput) (session.Session, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return session.Session{}, fmt.Errorf("%w: project description is required", ErrInvalidInput)
	}

	model := strings.TrimSpace(in.Model)
	if model == "" {
		model = p.defaultModel
	}

	raw, err := p.gateway.Complete(ctx, model, in.Credential, p.prompts.Questions(description))
	if err != nil {
		return session.Session{}, generationFailed(StageQuestions, "", err)
	}

	var reply struct {
		Questions []session.Question `json:"questions"`
	}
	if err := extract.Decode(raw, &reply); err != nil {
		return session.Session{}, generationFailed(StageQuestions, "", err)
	}
	if err := validateQuestions(reply.Questions); err != nil {
		return session.Session{}, generationFailed(StageQuestions, "", err)
	}

	token := p.store.Create(session.Session{
		ProjectDescription: description,
		Model:              model,
		Credential:         in.Credential,
		Questions:          reply.Questions,
	})

	created, err := p.store.Get(token)
	if err != nil {
		return session.Session{}, err
	}

	log.Printf("Generated %d questions for session %s using %s", len(reply.Questions), token, model)

	p.publish(ctx, messaging.StageEvent{SessionID: token, Stage: messaging.StageQuestions, Model: model})

	return redact(created), nil
}

// GeneratePlan accepts any non-empty subset of the session's questions as
// answers. Regenerating the plan discards schemas and code derived from the
// previous one.
func (p *Pipeline) GeneratePlan(ctx context.Context, token string, answers map[string]string) (session.DesignPlan, error) {
	s, err := p.store.Get(token)
	if err != nil {
		return session.DesignPlan{}, err
	}

	ordered, err := orderAnswers(&s, answers)
	if err != nil {
		return session.DesignPlan{}, err
	}

	raw, err := p.gateway.Complete(ctx, s.Model, s.Credential, p.prompts.DesignPlan(s.ProjectDescription, ordered))
	if err != nil {
		return session.DesignPlan{}, generationFailed(StagePlan, "", err)
	}

	var plan session.DesignPlan
	if err := extract.Decode(raw, &plan); err != nil {
		return session.DesignPlan{}, generationFailed(StagePlan, "", err)
	}
	if err := validatePlan(&plan); err != nil {
		return session.DesignPlan{}, generationFailed(StagePlan, "", err)
	}

	for _, issue := range plan.OrderingIssues() {
		log.Printf("Plan ordering warning for session %s: %s", token, issue)
	}

	err = p.store.Update(token, func(sess *session.Session) error {
		sess.Answers = make(map[string]string, len(ordered))
		for _, a := range ordered {
			sess.Answers[a.QuestionID] = a.Value
		}
		committed := session.DesignPlan{Overview: plan.Overview, Tables: plan.Ordered()}
		sess.Plan = &committed
		sess.PlanRevision++
		sess.Schemas = nil
		sess.Code = nil
		return nil
	})
	if err != nil {
		return session.DesignPlan{}, err
	}

	log.Printf("Generated design plan with %d tables for session %s", len(plan.Tables), token)

	tables := plan.Ordered()

	p.publish(ctx, messaging.StageEvent{SessionID: token, Stage: messaging.StagePlan, Model: s.Model, Tables: tableNames(tables)})

	return session.DesignPlan{Overview: plan.Overview, Tables: tables}, nil
}

// GenerateTableSchema generates, or regenerates, the SQL of one planned table.
// Other tables' schemas are left alone.
func (p *Pipeline) GenerateTableSchema(ctx context.Context, token, tableName string) (session.TableSchema, error) {
	s, err := p.store.Get(token)
	if err != nil {
		return session.TableSchema{}, err
	}
	if s.Plan == nil {
		return session.TableSchema{}, ErrPlanNotReady
	}

	table, ok := s.Plan.Table(tableName)
	if !ok {
		return session.TableSchema{}, fmt.Errorf("%w: %s", ErrTableNotFound, tableName)
	}

	prompt := p.prompts.TableSchema(table, s.Plan.TableNames())

	raw, err := p.gateway.Complete(ctx, s.Model, s.Credential, prompt)
	if err != nil {
		return session.TableSchema{}, generationFailed(StageSchema, tableName, err)
	}

	var reply struct {
		SQL           string   `json:"sql_schema"`
		Indexes       []string `json:"indexes"`
		Relationships []string `json:"relationships"`
		Notes         string   `json:"notes"`
	}
	if err := extract.Decode(raw, &reply); err != nil {
		return session.TableSchema{}, generationFailed(StageSchema, tableName, err)
	}
	if strings.TrimSpace(reply.SQL) == "" {
		return session.TableSchema{}, generationFailed(StageSchema, tableName, malformed("sql_schema is empty"))
	}

	schema := session.TableSchema{
		TableName:     tableName,
		SQL:           combineSQL(reply.SQL, reply.Indexes, reply.Notes),
		Relationships: reply.Relationships,
	}
	if schema.Relationships == nil {
		schema.Relationships = []string{}
	}

	err = p.store.Update(token, func(sess *session.Session) error {
		if err := samePlan(sess, s.PlanRevision); err != nil {
			return err
		}
		if sess.Schemas == nil {
			sess.Schemas = make(map[string]session.TableSchema)
		}
		sess.Schemas[tableName] = schema
		return nil
	})
	if err != nil {
		return session.TableSchema{}, err
	}

	log.Printf("Generated schema for table %s in session %s", tableName, token)

	p.publish(ctx, messaging.StageEvent{SessionID: token, Stage: messaging.StageSchema, Model: s.Model, Tables: []string{tableName}})

	return schema, nil
}

// GenerateAllSchemas generates every planned table that has no schema yet, one
// at a time in creation order. It stops at the first failure; schemas
// generated before it stay committed and are returned with the error.
func (p *Pipeline) GenerateAllSchemas(ctx context.Context, token string) ([]session.TableSchema, error) {
	s, err := p.store.Get(token)
	if err != nil {
		return nil, err
	}
	if s.Plan == nil {
		return nil, ErrPlanNotReady
	}

	var generated []session.TableSchema
	for _, table := range s.Plan.Ordered() {
		if _, done := s.Schemas[table.Name]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			return generated, err
		}

		schema, err := p.GenerateTableSchema(ctx, token, table.Name)
		if err != nil {
			return generated, err
		}
		generated = append(generated, schema)
	}

	return generated, nil
}

// GenerateCode turns every generated table schema into client code for one
// language and framework.
func (p *Pipeline) GenerateCode(ctx context.Context, token string, req CodeRequest) (session.CodeBundle, error) {
	s, err := p.store.Get(token)
	if err != nil {
		return session.CodeBundle{}, err
	}

	if s.Plan == nil || len(s.Schemas) == 0 {
		return session.CodeBundle{}, ErrNoSchemasYet
	}

	target := session.CodeTarget{
		Language:  strings.ToLower(strings.TrimSpace(req.Language)),
		Framework: strings.ToLower(strings.TrimSpace(req.Framework)),
	}
	if !supported(target.Language, target.Framework) {
		return session.CodeBundle{}, fmt.Errorf("%w: %s", ErrUnsupportedTarget, target)
	}

	prompt := p.prompts.Code(prompts.CodeInput{
		Language:            target.Language,
		Framework:           target.Framework,
		ProjectDescription:  s.ProjectDescription,
		Tables:              s.Plan.Ordered(),
		Schemas:             s.Schemas,
		IncludeModels:       req.IncludeModels,
		IncludeMigrations:   req.IncludeMigrations,
		IncludeRepositories: req.IncludeRepositories,
	})

	raw, err := p.gateway.Complete(ctx, s.Model, s.Credential, prompt)
	if err != nil {
		return session.CodeBundle{}, generationFailed(StageCode, target.String(), err)
	}

	var reply struct {
		Files             []session.CodeFile `json:"files"`
		SetupInstructions string             `json:"setup_instructions"`
	}
	if err := extract.Decode(raw, &reply); err != nil {
		return session.CodeBundle{}, generationFailed(StageCode, target.String(), err)
	}
	if err := validateFiles(reply.Files); err != nil {
		return session.CodeBundle{}, generationFailed(StageCode, target.String(), err)
	}

	bundle := session.CodeBundle{
		Language:          target.Language,
		Framework:         target.Framework,
		Files:             reply.Files,
		SetupInstructions: reply.SetupInstructions,
	}

	err = p.store.Update(token, func(sess *session.Session) error {
		if err := samePlan(sess, s.PlanRevision); err != nil {
			return err
		}
		if len(sess.Schemas) == 0 {
			return ErrNoSchemasYet
		}
		if sess.Code == nil {
			sess.Code = make(map[session.CodeTarget]session.CodeBundle)
		}
		sess.Code[target] = bundle
		return nil
	})
	if err != nil {
		return session.CodeBundle{}, err
	}

	log.Printf("Generated %d %s files for session %s", len(bundle.Files), target, token)

	p.publish(ctx, messaging.StageEvent{
		SessionID: token,
		Stage:     messaging.StageCode,
		Model:     s.Model,
		Language:  target.Language,
		Framework: target.Framework,
	})

	return bundle, nil
}

// Session returns a snapshot of the session without its credential.
func (p *Pipeline) Session(token string) (session.Session, error) {
	s, err := p.store.Get(token)
	if err != nil {
		return session.Session{}, err
	}

	return redact(s), nil
}

func (p *Pipeline) DeleteSession(token string) error {
	if err := p.store.Delete(token); err != nil {
		return err
	}

	log.Printf("Deleted session %s", token)

	return nil
}

func (p *Pipeline) Sessions() []string {
	return p.store.List()
}

func (p *Pipeline) DefaultModel() string {
	return p.defaultModel
}

func (p *Pipeline) publish(ctx context.Context, event messaging.StageEvent) {
	if p.events == nil {
		return
	}

	event.OccurredAt = p.now().UTC()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.events.Publish(ctx, event); err != nil {
		log.Printf("Failed to publish %s event for session %s: %v", event.Stage, event.SessionID, err)
	}
}

// samePlan rejects a commit whose input was read from an earlier plan. The
// plan can be regenerated while the model is busy.
func samePlan(sess *session.Session, revision int) error {
	if sess.Plan == nil {
		return ErrPlanNotReady
	}
	if sess.PlanRevision != revision {
		return fmt.Errorf("%w: design plan was regenerated", ErrPlanNotReady)
	}

	return nil
}

func redact(s session.Session) session.Session {
	s.Credential = secret.Credential{}
	return s
}

func orderAnswers(s *session.Session, answers map[string]string) ([]prompts.Answer, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("%w: at least one answer is required", ErrInvalidAnswers)
	}

	for id := range answers {
		if !s.HasQuestion(id) {
			return nil, fmt.Errorf("%w: unknown question id %q", ErrInvalidAnswers, id)
		}
	}

	ordered := make([]prompts.Answer, 0, len(answers))
	for _, q := range s.Questions {
		if value, ok := answers[q.ID]; ok {
			ordered = append(ordered, prompts.Answer{QuestionID: q.ID, Value: value})
		}
	}

	return ordered, nil
}

// combineSQL folds index statements and notes into one SQL artifact.
func combineSQL(sql string, indexes []string, notes string) string {
	full := strings.TrimSpace(sql)

	if len(indexes) > 0 {
		full += "\n\n-- Indexes\n" + strings.Join(indexes, "\n")
	}

	if notes = strings.TrimSpace(notes); notes != "" {
		full += "\n\n-- Notes: " + notes
	}

	return full
}

func tableNames(tables []session.Table) []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Name
	}

	return names
}

func malformed(reason string) error {
	return fmt.Errorf("%w: %s", extract.ErrMalformedResponse, reason)
}

func validateQuestions(questions []session.Question) error {
	if len(questions) == 0 {
		return malformed("no questions returned")
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		switch {
		case strings.TrimSpace(q.ID) == "":
			return malformed(fmt.Sprintf("question %d has no id", i+1))
		case seen[q.ID]:
			return malformed(fmt.Sprintf("duplicate question id %q", q.ID))
		case strings.TrimSpace(q.Question) == "":
			return malformed(fmt.Sprintf("question %q has no text", q.ID))
		case len(q.Options) == 0:
			return malformed(fmt.Sprintf("question %q has no options", q.ID))
		}
		seen[q.ID] = true
	}

	return nil
}

func validatePlan(plan *session.DesignPlan) error {
	if len(plan.Tables) == 0 {
		return malformed("design plan has no tables")
	}

	seen := make(map[string]bool, len(plan.Tables))
	for i := range plan.Tables {
		t := &plan.Tables[i]
		t.Name = strings.TrimSpace(t.Name)

		switch {
		case t.Name == "":
			return malformed(fmt.Sprintf("table %d has no name", i+1))
		case seen[t.Name]:
			return malformed(fmt.Sprintf("duplicate table %q", t.Name))
		}
		seen[t.Name] = true

		if t.Dependencies == nil {
			t.Dependencies = []string{}
		}
	}

	return nil
}

func validateFiles(files []session.CodeFile) error {
	if len(files) == 0 {
		return malformed("no files returned")
	}

	for i, f := range files {
		if strings.TrimSpace(f.Filename) == "" {
			return malformed(fmt.Sprintf("file %d has no filename", i+1))
		}
	}

	return nil
}
