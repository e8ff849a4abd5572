// Package wizardpb is the wire contract of the wizard.v1.Wizard gRPC service.
//
// Messages travel as google.protobuf.Struct values whose fields follow the JSON
// shapes below, so the HTTP API can pass them through unchanged.
package wizardpb

import (
	"github.com/kacperborowieckb/schema-wizard/shared/completion"
	"github.com/kacperborowieckb/schema-wizard/shared/pipeline"
	"github.com/kacperborowieckb/schema-wizard/shared/session"
)

type Empty struct{}

type QuestionsRequest struct {
	Description string `json:"description" validate:"required"`
	APIKey      string `json:"api_key,omitempty"`
	Model       string `json:"model_name,omitempty"`
}

type QuestionsResponse struct {
	SessionID          string             `json:"session_id"`
	Questions          []session.Question `json:"questions"`
	ProjectDescription string             `json:"project_description"`
}

type PlanRequest struct {
	SessionID string            `json:"session_id" validate:"required"`
	Answers   map[string]string `json:"answers" validate:"required,min=1,dive,keys,required,endkeys,required"`
}

type PlanResponse struct {
	SessionID      string          `json:"session_id"`
	DetailedPrompt string          `json:"detailed_prompt"`
	DesignOverview string          `json:"design_overview"`
	Tables         []session.Table `json:"tables"`
}

type TableSchemaRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	TableName string `json:"table_name" validate:"required"`
}

type TableSchemaResponse struct {
	session.TableSchema
}

type AllSchemasRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type AllSchemasResponse struct {
	SessionID string                `json:"session_id"`
	Schemas   []session.TableSchema `json:"schemas"`
}

// CodeRequest leaves models and migrations on unless the caller turns them off.
type CodeRequest struct {
	SessionID           string `json:"session_id" validate:"required"`
	Language            string `json:"language" validate:"required"`
	Framework           string `json:"framework" validate:"required"`
	IncludeModels       *bool  `json:"include_models,omitempty"`
	IncludeMigrations   *bool  `json:"include_migrations,omitempty"`
	IncludeRepositories bool   `json:"include_repositories"`
}

func (r *CodeRequest) Models() bool {
	return r.IncludeModels == nil || *r.IncludeModels
}

func (r *CodeRequest) Migrations() bool {
	return r.IncludeMigrations == nil || *r.IncludeMigrations
}

type CodeResponse struct {
	SessionID         string             `json:"session_id"`
	Language          string             `json:"language"`
	Framework         string             `json:"framework"`
	Files             []session.CodeFile `json:"files"`
	SetupInstructions string             `json:"setup_instructions"`
}

type SessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// SessionResponse is a session snapshot. The credential never leaves the
// designer.
type SessionResponse struct {
	session.Session
	Stage session.Stage `json:"stage"`
}

type DeleteSessionResponse struct {
	Message string `json:"message"`
}

type ListSessionsResponse struct {
	Sessions []string `json:"sessions"`
	Count    int      `json:"count"`
}

type LanguagesResponse struct {
	Languages []pipeline.Language `json:"languages"`
}

type ModelsResponse struct {
	Models  []completion.Model `json:"models"`
	Default string             `json:"default"`
}
