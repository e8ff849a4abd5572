package wizardpb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kacperborowieckb/schema-wizard/shared/secret"
	"github.com/kacperborowieckb/schema-wizard/shared/session"
)

func TestEncode_UsesWireFieldNames(t *testing.T) {
	s, err := Encode(&QuestionsRequest{Description: "shop", APIKey: "k", Model: "gemini-1.5-pro"})
	require.NoError(t, err)

	fields := s.GetFields()
	assert.Equal(t, "shop", fields["description"].GetStringValue())
	assert.Equal(t, "k", fields["api_key"].GetStringValue())
	assert.Equal(t, "gemini-1.5-pro", fields["model_name"].GetStringValue())
}

func TestEncode_RejectsNonObjects(t *testing.T) {
	_, err := Encode([]string{"a"})
	assert.Error(t, err)
}

func TestDecode_SessionSnapshot(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	in := SessionResponse{
		Session: session.Session{
			ID:                 "abc",
			ProjectDescription: "shop",
			Credential:         secret.NewCredential("AIzaSySecretKeyValue"),
			Questions:          []session.Question{{ID: "q1", Question: "Scale?", Options: []string{"Small", "Large"}}},
			Plan: &session.DesignPlan{Overview: "o", Tables: []session.Table{
				{Name: "users", SequenceOrder: 1, Dependencies: []string{}},
			}},
			Code: map[session.CodeTarget]session.CodeBundle{
				{Language: "go", Framework: "gorm"}: {Language: "go", Framework: "gorm", Files: []session.CodeFile{{Filename: "a.go"}}},
			},
			CreatedAt: created,
		},
		Stage: session.StageCodeReady,
	}

	s, err := Encode(&in)
	require.NoError(t, err)
	assert.NotContains(t, s.String(), "AIzaSySecretKeyValue")

	var out SessionResponse
	require.NoError(t, Decode(s, &out))

	assert.Equal(t, "abc", out.ID)
	assert.True(t, out.Credential.IsZero())
	assert.Equal(t, 1, out.Plan.Tables[0].SequenceOrder)
	assert.Equal(t, in.Questions, out.Questions)
	assert.Contains(t, out.Code, session.CodeTarget{Language: "go", Framework: "gorm"})
	assert.True(t, created.Equal(out.CreatedAt))
	assert.Equal(t, session.StageCodeReady, out.Stage)
}

func TestDecode_NilStruct(t *testing.T) {
	var out ListSessionsResponse
	require.NoError(t, Decode(nil, &out))
	assert.Empty(t, out.Sessions)
}

func TestCodeRequest_Defaults(t *testing.T) {
	var req CodeRequest
	assert.True(t, req.Models())
	assert.True(t, req.Migrations())
	assert.False(t, req.IncludeRepositories)

	off := false
	req.IncludeModels = &off
	assert.False(t, req.Models())
}

func TestReasonOf(t *testing.T) {
	err := Error(codes.FailedPrecondition, ReasonPlanNotReady, "design plan not generated yet")

	assert.Equal(t, ReasonPlanNotReady, ReasonOf(err))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
	assert.Empty(t, ReasonOf(status.Error(codes.Internal, "boom")))
	assert.Empty(t, ReasonOf(assert.AnError))
}
