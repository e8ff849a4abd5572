package main

import (
	"context"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/kacperborowieckb/schema-wizard/shared/messaging"
	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
)

// SchemaDesigner is the part of the designer client the worker calls.
type SchemaDesigner interface {
	GenerateAllSchemas(ctx context.Context, in *pb.AllSchemasRequest, opts ...grpc.CallOption) (*pb.AllSchemasResponse, error)
}

type generatorServer struct {
	designer    SchemaDesigner
	autoSchemas bool
	// perTable bounds the designer call per planned table.
	perTable time.Duration
}

// handlePlanReady generates the schemas of every table of a freshly planned
// session. Returning an error Nacks the delivery.
func (s *generatorServer) handlePlanReady(ctx context.Context, d amqp.Delivery) error {
	event, err := messaging.DecodeStageEvent(d)
	if err != nil {
		log.Printf("Failed to decode stage event: %v. Body: %s", err, string(d.Body))
		return err
	}

	if event.Stage != messaging.StagePlan {
		log.Printf("Ignoring %s event for session %s", event.Stage, event.SessionID)
		return nil
	}

	if !s.autoSchemas {
		log.Printf("Automatic schema generation disabled, skipping session %s", event.SessionID)
		return nil
	}

	timeout := time.Duration(len(event.Tables)+1) * s.perTable

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Printf("Generating schemas for %d tables of session %s", len(event.Tables), event.SessionID)

	resp, err := s.designer.GenerateAllSchemas(ctx, &pb.AllSchemasRequest{SessionID: event.SessionID})
	if err != nil {
		// the session may be deleted or re-planned before the event arrives
		if reason := pb.ReasonOf(err); reason == pb.ReasonSessionNotFound || reason == pb.ReasonPlanNotReady {
			log.Printf("Session %s no longer needs schemas: %v", event.SessionID, status.Convert(err).Message())
			return nil
		}
		return fmt.Errorf("failed to generate schemas for session %s: [%s] %s", event.SessionID, status.Code(err), status.Convert(err).Message())
	}

	log.Printf("Successfully generated %d schemas for session %s", len(resp.Schemas), event.SessionID)

	return nil
}
