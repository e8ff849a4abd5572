package main

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kacperborowieckb/schema-wizard/shared/completion"
	"github.com/kacperborowieckb/schema-wizard/shared/pipeline"
	"github.com/kacperborowieckb/schema-wizard/shared/secret"
	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
)

// designerServer implements the wizard.v1.Wizard service on top of the
// pipeline. It holds the only copy of session state.
type designerServer struct {
	pipeline *pipeline.Pipeline
	validate *validator.Validate
}

func NewDesignerServer(p *pipeline.Pipeline) *designerServer {
	return &designerServer{
		pipeline: p,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *designerServer) GenerateQuestions(ctx context.Context, in *pb.QuestionsRequest) (*pb.QuestionsResponse, error) {
	log.Printf("Received GenerateQuestions request (model: %q)", in.Model)

	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	sess, err := s.pipeline.GenerateQuestions(ctx, pipeline.QuestionsInput{
		Description: in.Description,
		Model:       in.Model,
		Credential:  secret.NewCredential(in.APIKey),
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.QuestionsResponse{
		SessionID:          sess.ID,
		Questions:          sess.Questions,
		ProjectDescription: sess.ProjectDescription,
	}, nil
}

func (s *designerServer) GeneratePlan(ctx context.Context, in *pb.PlanRequest) (*pb.PlanResponse, error) {
	log.Printf("Received GeneratePlan request for session %s", in.SessionID)

	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	plan, err := s.pipeline.GeneratePlan(ctx, in.SessionID, in.Answers)
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.PlanResponse{
		SessionID:      in.SessionID,
		DetailedPrompt: plan.Render(),
		DesignOverview: plan.Overview,
		Tables:         plan.Tables,
	}, nil
}

func (s *designerServer) GenerateTableSchema(ctx context.Context, in *pb.TableSchemaRequest) (*pb.TableSchemaResponse, error) {
	log.Printf("Received GenerateTableSchema request for table %s in session %s", in.TableName, in.SessionID)

	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	schema, err := s.pipeline.GenerateTableSchema(ctx, in.SessionID, in.TableName)
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.TableSchemaResponse{TableSchema: schema}, nil
}

func (s *designerServer) GenerateAllSchemas(ctx context.Context, in *pb.AllSchemasRequest) (*pb.AllSchemasResponse, error) {
	log.Printf("Received GenerateAllSchemas request for session %s", in.SessionID)

	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	schemas, err := s.pipeline.GenerateAllSchemas(ctx, in.SessionID)
	if err != nil {
		if len(schemas) > 0 {
			log.Printf("Generated %d schemas for session %s before failing", len(schemas), in.SessionID)
		}
		return nil, toStatus(err)
	}

	return &pb.AllSchemasResponse{SessionID: in.SessionID, Schemas: schemas}, nil
}

func (s *designerServer) GenerateCode(ctx context.Context, in *pb.CodeRequest) (*pb.CodeResponse, error) {
	log.Printf("Received GenerateCode request (%s/%s) for session %s", in.Language, in.Framework, in.SessionID)

	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	bundle, err := s.pipeline.GenerateCode(ctx, in.SessionID, pipeline.CodeRequest{
		Language:            in.Language,
		Framework:           in.Framework,
		IncludeModels:       in.Models(),
		IncludeMigrations:   in.Migrations(),
		IncludeRepositories: in.IncludeRepositories,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.CodeResponse{
		SessionID:         in.SessionID,
		Language:          bundle.Language,
		Framework:         bundle.Framework,
		Files:             bundle.Files,
		SetupInstructions: bundle.SetupInstructions,
	}, nil
}

func (s *designerServer) GetSession(ctx context.Context, in *pb.SessionRequest) (*pb.SessionResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	sess, err := s.pipeline.Session(in.SessionID)
	if err != nil {
		return nil, toStatus(err)
	}

	return &pb.SessionResponse{Session: sess, Stage: sess.Stage()}, nil
}

func (s *designerServer) DeleteSession(ctx context.Context, in *pb.SessionRequest) (*pb.DeleteSessionResponse, error) {
	log.Printf("Received DeleteSession request for session %s", in.SessionID)

	if err := s.validate.Struct(in); err != nil {
		return nil, invalidArgument(err)
	}

	if err := s.pipeline.DeleteSession(in.SessionID); err != nil {
		return nil, toStatus(err)
	}

	return &pb.DeleteSessionResponse{Message: "Session deleted successfully"}, nil
}

func (s *designerServer) ListSessions(ctx context.Context, in *pb.Empty) (*pb.ListSessionsResponse, error) {
	sessions := s.pipeline.Sessions()

	return &pb.ListSessionsResponse{Sessions: sessions, Count: len(sessions)}, nil
}

func (s *designerServer) SupportedLanguages(ctx context.Context, in *pb.Empty) (*pb.LanguagesResponse, error) {
	return &pb.LanguagesResponse{Languages: pipeline.SupportedLanguages()}, nil
}

func (s *designerServer) ListModels(ctx context.Context, in *pb.Empty) (*pb.ModelsResponse, error) {
	return &pb.ModelsResponse{Models: completion.Models(), Default: s.pipeline.DefaultModel()}, nil
}

func invalidArgument(err error) error {
	return pb.Error(codes.InvalidArgument, pb.ReasonInvalidArgument, err.Error())
}

// toStatus translates pipeline errors into status errors with a reason.
func toStatus(err error) error {
	switch {
	case errors.Is(err, pipeline.ErrGenerationFailed):
		log.Printf("Generation failed: %v", err)
		return pb.Error(codes.Unavailable, pb.ReasonGenerationFailed, err.Error())
	case errors.Is(err, pipeline.ErrSessionNotFound):
		return pb.Error(codes.NotFound, pb.ReasonSessionNotFound, err.Error())
	case errors.Is(err, pipeline.ErrTableNotFound):
		return pb.Error(codes.NotFound, pb.ReasonTableNotFound, err.Error())
	case errors.Is(err, pipeline.ErrPlanNotReady):
		return pb.Error(codes.FailedPrecondition, pb.ReasonPlanNotReady, err.Error())
	case errors.Is(err, pipeline.ErrNoSchemasYet):
		return pb.Error(codes.FailedPrecondition, pb.ReasonNoSchemasYet, err.Error())
	case errors.Is(err, pipeline.ErrInvalidAnswers):
		return pb.Error(codes.InvalidArgument, pb.ReasonInvalidAnswers, err.Error())
	case errors.Is(err, pipeline.ErrUnsupportedTarget):
		return pb.Error(codes.InvalidArgument, pb.ReasonUnsupportedTarget, err.Error())
	case errors.Is(err, pipeline.ErrInvalidInput):
		return pb.Error(codes.InvalidArgument, pb.ReasonInvalidArgument, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		log.Printf("Unexpected designer error: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}
