package main

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"

	"github.com/kacperborowieckb/schema-wizard/shared/contracts"
	"github.com/kacperborowieckb/schema-wizard/shared/messaging"
	"github.com/kacperborowieckb/schema-wizard/shared/session"
	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
)

type fakeDesigner struct {
	calls    []string
	deadline bool
	err      error
}

func (f *fakeDesigner) GenerateAllSchemas(ctx context.Context, in *pb.AllSchemasRequest, opts ...grpc.CallOption) (*pb.AllSchemasResponse, error) {
	f.calls = append(f.calls, in.SessionID)
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}

	return &pb.AllSchemasResponse{SessionID: in.SessionID, Schemas: []session.TableSchema{{TableName: "users"}}}, nil
}

func delivery(t *testing.T, event messaging.StageEvent) amqp.Delivery {
	t.Helper()

	data, err := json.Marshal(event)
	require.NoError(t, err)
	body, err := json.Marshal(contracts.AmqpMessage{OwnerId: event.SessionID, Data: data})
	require.NoError(t, err)

	return amqp.Delivery{RoutingKey: contracts.PlanReadyRoutingKey, Body: body}
}

func TestHandlePlanReady_GeneratesSchemas(t *testing.T) {
	designer := &fakeDesigner{}
	s := &generatorServer{designer: designer, autoSchemas: true, perTable: time.Minute}

	err := s.handlePlanReady(context.Background(), delivery(t, messaging.StageEvent{
		SessionID: "abc", Stage: messaging.StagePlan, Tables: []string{"users", "orders"},
	}))

	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, designer.calls)
	assert.True(t, designer.deadline)
}

func TestHandlePlanReady_Disabled(t *testing.T) {
	designer := &fakeDesigner{}
	s := &generatorServer{designer: designer, perTable: time.Minute}

	err := s.handlePlanReady(context.Background(), delivery(t, messaging.StageEvent{SessionID: "abc", Stage: messaging.StagePlan}))

	require.NoError(t, err)
	assert.Empty(t, designer.calls)
}

func TestHandlePlanReady_IgnoresOtherStages(t *testing.T) {
	designer := &fakeDesigner{}
	s := &generatorServer{designer: designer, autoSchemas: true, perTable: time.Minute}

	err := s.handlePlanReady(context.Background(), delivery(t, messaging.StageEvent{SessionID: "abc", Stage: messaging.StageSchema}))

	require.NoError(t, err)
	assert.Empty(t, designer.calls)
}

func TestHandlePlanReady_StaleSessionAcked(t *testing.T) {
	designer := &fakeDesigner{err: pb.Error(codes.NotFound, pb.ReasonSessionNotFound, "session not found")}
	s := &generatorServer{designer: designer, autoSchemas: true, perTable: time.Minute}

	err := s.handlePlanReady(context.Background(), delivery(t, messaging.StageEvent{SessionID: "gone", Stage: messaging.StagePlan}))

	assert.NoError(t, err)
	assert.Len(t, designer.calls, 1)
}

func TestHandlePlanReady_GenerationFailureNacked(t *testing.T) {
	designer := &fakeDesigner{err: pb.Error(codes.Unavailable, pb.ReasonGenerationFailed, "upstream unavailable")}
	s := &generatorServer{designer: designer, autoSchemas: true, perTable: time.Minute}

	err := s.handlePlanReady(context.Background(), delivery(t, messaging.StageEvent{SessionID: "abc", Stage: messaging.StagePlan}))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unavailable")
	assert.Contains(t, err.Error(), "abc")
}

func TestHandlePlanReady_BadBody(t *testing.T) {
	s := &generatorServer{designer: &fakeDesigner{}, autoSchemas: true, perTable: time.Minute}

	err := s.handlePlanReady(context.Background(), amqp.Delivery{Body: []byte("not json")})

	assert.ErrorContains(t, err, "outer AmqpMessage")
}
