package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kacperborowieckb/schema-wizard/shared/completion"
	"github.com/kacperborowieckb/schema-wizard/shared/session"
	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
)

// fakeDesigner answers the calls the tests make. Other methods panic through
// the nil embedded client.
type fakeDesigner struct {
	pb.WizardClient

	questionsReq *pb.QuestionsRequest
	codeReq      *pb.CodeRequest
	deletedID    string
	snapshot     *pb.SessionResponse
	allDeadline  time.Time
	err          error
}

func (f *fakeDesigner) GenerateQuestions(ctx context.Context, in *pb.QuestionsRequest, opts ...grpc.CallOption) (*pb.QuestionsResponse, error) {
	f.questionsReq = in
	if f.err != nil {
		return nil, f.err
	}

	return &pb.QuestionsResponse{
		SessionID:          "abc",
		ProjectDescription: in.Description,
		Questions:          []session.Question{{ID: "q1", Question: "Scale?", Options: []string{"Small"}}},
	}, nil
}

func (f *fakeDesigner) GeneratePlan(ctx context.Context, in *pb.PlanRequest, opts ...grpc.CallOption) (*pb.PlanResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &pb.PlanResponse{SessionID: in.SessionID, DesignOverview: "o", Tables: []session.Table{{Name: "users", SequenceOrder: 1}}}, nil
}

func (f *fakeDesigner) GenerateTableSchema(ctx context.Context, in *pb.TableSchemaRequest, opts ...grpc.CallOption) (*pb.TableSchemaResponse, error) {
	if f.err != nil {
		return nil, f.err
	}

	return &pb.TableSchemaResponse{TableSchema: session.TableSchema{TableName: in.TableName, SQL: "CREATE TABLE users ();", Relationships: []string{}}}, nil
}

func (f *fakeDesigner) GenerateAllSchemas(ctx context.Context, in *pb.AllSchemasRequest, opts ...grpc.CallOption) (*pb.AllSchemasResponse, error) {
	f.allDeadline, _ = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}

	return &pb.AllSchemasResponse{SessionID: in.SessionID, Schemas: []session.TableSchema{}}, nil
}

func (f *fakeDesigner) GenerateCode(ctx context.Context, in *pb.CodeRequest, opts ...grpc.CallOption) (*pb.CodeResponse, error) {
	f.codeReq = in
	if f.err != nil {
		return nil, f.err
	}

	return &pb.CodeResponse{SessionID: in.SessionID, Language: in.Language, Framework: in.Framework}, nil
}

func (f *fakeDesigner) GetSession(ctx context.Context, in *pb.SessionRequest, opts ...grpc.CallOption) (*pb.SessionResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.snapshot != nil {
		return f.snapshot, nil
	}

	return &pb.SessionResponse{Session: session.Session{ID: in.SessionID}, Stage: session.StageQuestionsReady}, nil
}

func (f *fakeDesigner) DeleteSession(ctx context.Context, in *pb.SessionRequest, opts ...grpc.CallOption) (*pb.DeleteSessionResponse, error) {
	f.deletedID = in.SessionID
	if f.err != nil {
		return nil, f.err
	}

	return &pb.DeleteSessionResponse{Message: "Session deleted successfully"}, nil
}

func (f *fakeDesigner) ListSessions(ctx context.Context, in *pb.Empty, opts ...grpc.CallOption) (*pb.ListSessionsResponse, error) {
	return &pb.ListSessionsResponse{Sessions: []string{"abc"}, Count: 1}, f.err
}

func (f *fakeDesigner) ListModels(ctx context.Context, in *pb.Empty, opts ...grpc.CallOption) (*pb.ModelsResponse, error) {
	return &pb.ModelsResponse{Models: completion.Models(), Default: completion.DefaultModel}, f.err
}

func serve(t *testing.T, designer pb.WizardClient, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	handler := newAPIServer(designer, time.Minute).routes()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestGenerateQuestions(t *testing.T) {
	designer := &fakeDesigner{}

	rec := serve(t, designer, http.MethodPost, "/api/v1/generate-questions",
		`{"description": "A shop", "api_key": "AIzaSyCallerKey12345", "model_name": "gemini-1.5-pro"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "abc", body["session_id"])
	assert.Equal(t, "A shop", body["project_description"])
	assert.Equal(t, "AIzaSyCallerKey12345", designer.questionsReq.APIKey)
	assert.Equal(t, "gemini-1.5-pro", designer.questionsReq.Model)
}

func TestGenerateQuestions_Validation(t *testing.T) {
	designer := &fakeDesigner{}

	rec := serve(t, designer, http.MethodPost, "/api/v1/generate-questions", `{"api_key": "k"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, pb.ReasonInvalidArgument, decodeBody(t, rec)["reason"])
	assert.Nil(t, designer.questionsReq)
}

func TestGenerateQuestions_MalformedBody(t *testing.T) {
	rec := serve(t, &fakeDesigner{}, http.MethodPost, "/api/v1/generate-questions", `{"description":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlan_RequiresAnswers(t *testing.T) {
	rec := serve(t, &fakeDesigner{}, http.MethodPost, "/api/v1/generate-detailed-prompt", `{"session_id": "abc", "answers": {}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePlan(t *testing.T) {
	rec := serve(t, &fakeDesigner{}, http.MethodPost, "/api/v1/generate-detailed-prompt", `{"session_id": "abc", "answers": {"q1": "Small"}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "o", decodeBody(t, rec)["design_overview"])
}

func TestGenerateTableSchema(t *testing.T) {
	rec := serve(t, &fakeDesigner{}, http.MethodPost, "/api/v1/generate-table-schema", `{"session_id": "abc", "table_name": "users"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "users", body["table_name"])
	assert.Equal(t, "CREATE TABLE users ();", body["sql_schema"])
}

func TestGenerateCode_DefaultToggles(t *testing.T) {
	designer := &fakeDesigner{}

	rec := serve(t, designer, http.MethodPost, "/api/v1/generate-database-code",
		`{"session_id": "abc", "language": "go", "framework": "gorm", "include_migrations": false}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, designer.codeReq.Models())
	assert.False(t, designer.codeReq.Migrations())
	assert.False(t, designer.codeReq.IncludeRepositories)
}

func TestGenerateAllSchemas_DeadlineScalesWithPendingTables(t *testing.T) {
	designer := &fakeDesigner{snapshot: &pb.SessionResponse{
		Session: session.Session{
			ID: "abc",
			Plan: &session.DesignPlan{Tables: []session.Table{
				{Name: "users", SequenceOrder: 1},
				{Name: "orders", SequenceOrder: 2},
				{Name: "order_items", SequenceOrder: 3},
			}},
			Schemas: map[string]session.TableSchema{"users": {TableName: "users"}},
		},
		Stage: session.StageSchemaReady,
	}}

	start := time.Now()
	rec := serve(t, designer, http.MethodPost, "/api/v1/generate-all-schemas", `{"session_id": "abc"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.False(t, designer.allDeadline.IsZero())
	// two pending tables plus one slot, each a full request timeout
	budget := designer.allDeadline.Sub(start)
	assert.Greater(t, budget, 2*time.Minute+30*time.Second)
	assert.LessOrEqual(t, budget, 3*time.Minute+time.Second)
}

func TestGenerateAllSchemas_UnknownSession(t *testing.T) {
	designer := &fakeDesigner{err: pb.Error(codes.NotFound, pb.ReasonSessionNotFound, "session not found")}

	rec := serve(t, designer, http.MethodPost, "/api/v1/generate-all-schemas", `{"session_id": "nope"}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, designer.allDeadline.IsZero())
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   int
		reason string
	}{
		{"not found", pb.Error(codes.NotFound, pb.ReasonSessionNotFound, "session not found"), http.StatusNotFound, pb.ReasonSessionNotFound},
		{"plan not ready", pb.Error(codes.FailedPrecondition, pb.ReasonPlanNotReady, "design plan not generated yet"), http.StatusConflict, pb.ReasonPlanNotReady},
		{"invalid answers", pb.Error(codes.InvalidArgument, pb.ReasonInvalidAnswers, "invalid answers"), http.StatusBadRequest, pb.ReasonInvalidAnswers},
		{"generation failed", pb.Error(codes.Unavailable, pb.ReasonGenerationFailed, "generation failed"), http.StatusBadGateway, pb.ReasonGenerationFailed},
		{"designer down", status.Error(codes.Unavailable, "connection refused"), http.StatusBadGateway, "DESIGNER_UNAVAILABLE"},
		{"deadline", status.Error(codes.DeadlineExceeded, "deadline exceeded"), http.StatusGatewayTimeout, ""},
		{"internal", status.Error(codes.Internal, "boom"), http.StatusInternalServerError, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, &fakeDesigner{err: tc.err}, http.MethodPost, "/api/v1/generate-table-schema",
				`{"session_id": "abc", "table_name": "users"}`)

			require.Equal(t, tc.code, rec.Code)
			body := decodeBody(t, rec)
			assert.NotEmpty(t, body["error"])
			if tc.reason != "" {
				assert.Equal(t, tc.reason, body["reason"])
			}
		})
	}
}

func TestSessionRoutes(t *testing.T) {
	designer := &fakeDesigner{}

	rec := serve(t, designer, http.MethodGet, "/api/v1/session/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "abc", body["session_id"])
	assert.Equal(t, "questions_ready", body["stage"])

	rec = serve(t, designer, http.MethodDelete, "/api/v1/session/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", designer.deletedID)

	rec = serve(t, designer, http.MethodGet, "/api/v1/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])
}

func TestListModels(t *testing.T) {
	rec := serve(t, &fakeDesigner{}, http.MethodGet, "/api/v1/models", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, completion.DefaultModel, decodeBody(t, rec)["default"])
}

func TestHealth(t *testing.T) {
	rec := serve(t, &fakeDesigner{}, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody(t, rec)["status"])
}
