package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/kacperborowieckb/schema-wizard/shared/wizardpb"
	"github.com/kacperborowieckb/schema-wizard/utils/errors"
	"github.com/kacperborowieckb/schema-wizard/utils/json"
)

// readRequest decodes and validates a JSON body. It writes the error response
// itself and reports whether the handler may continue.
func (s *apiServer) readRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.ReadJSON(w, r, req); err != nil {
		errors.BadRequestResponse(w, r, err)
		return false
	}

	if err := s.validate.Struct(req); err != nil {
		errors.InvalidInputResponse(w, r, err, pb.ReasonInvalidArgument)
		return false
	}

	return true
}

func (s *apiServer) callContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.timeout)
}

func (s *apiServer) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req pb.QuestionsRequest
	if !s.readRequest(w, r, &req) {
		return
	}

	ctx, cancel := s.callContext(r)
	defer cancel()

	log.Printf("Sending GenerateQuestions gRPC request (model: %q)", req.Model)
	resp, err := s.designer.GenerateQuestions(ctx, &req)
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	log.Printf("Created session %s with %d questions", resp.SessionID, len(resp.Questions))

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req pb.PlanRequest
	if !s.readRequest(w, r, &req) {
		return
	}

	ctx, cancel := s.callContext(r)
	defer cancel()

	resp, err := s.designer.GeneratePlan(ctx, &req)
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGenerateTableSchema(w http.ResponseWriter, r *http.Request) {
	var req pb.TableSchemaRequest
	if !s.readRequest(w, r, &req) {
		return
	}

	ctx, cancel := s.callContext(r)
	defer cancel()

	resp, err := s.designer.GenerateTableSchema(ctx, &req)
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

// handleGenerateAllSchemas runs outside the router timeout. Its deadline
// grows with the number of tables still missing a schema.
func (s *apiServer) handleGenerateAllSchemas(w http.ResponseWriter, r *http.Request) {
	var req pb.AllSchemasRequest
	if !s.readRequest(w, r, &req) {
		return
	}

	lookupCtx, cancelLookup := s.callContext(r)
	snapshot, err := s.designer.GetSession(lookupCtx, &pb.SessionRequest{SessionID: req.SessionID})
	cancelLookup()
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	pending := pendingSchemas(snapshot)
	log.Printf("Generating %d pending schemas for session %s", pending, req.SessionID)

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(pending+1)*s.timeout)
	defer cancel()

	resp, err := s.designer.GenerateAllSchemas(ctx, &req)
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGenerateCode(w http.ResponseWriter, r *http.Request) {
	var req pb.CodeRequest
	if !s.readRequest(w, r, &req) {
		return
	}

	ctx, cancel := s.callContext(r)
	defer cancel()

	resp, err := s.designer.GenerateCode(ctx, &req)
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	resp, err := s.designer.GetSession(r.Context(), &pb.SessionRequest{SessionID: sessionID})
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")

	log.Printf("Gateway: Forwarding DeleteSession request for %s to designer", sessionID)
	resp, err := s.designer.DeleteSession(r.Context(), &pb.SessionRequest{SessionID: sessionID})
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListSessions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.designer.ListSessions(r.Context(), &pb.Empty{})
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleSupportedLanguages(w http.ResponseWriter, r *http.Request) {
	resp, err := s.designer.SupportedLanguages(r.Context(), &pb.Empty{})
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (s *apiServer) handleListModels(w http.ResponseWriter, r *http.Request) {
	resp, err := s.designer.ListModels(r.Context(), &pb.Empty{})
	if err != nil {
		writeGRPCError(w, r, err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func pendingSchemas(snapshot *pb.SessionResponse) int {
	if snapshot.Plan == nil {
		return 0
	}

	pending := 0
	for _, t := range snapshot.Plan.Tables {
		if _, done := snapshot.Schemas[t.Name]; !done {
			pending++
		}
	}

	return pending
}

// writeGRPCError maps a designer status to the matching HTTP error response.
func writeGRPCError(w http.ResponseWriter, r *http.Request, err error) {
	st := status.Convert(err)
	reason := pb.ReasonOf(err)
	msg := fmt.Errorf("%s", st.Message())

	switch st.Code() {
	case codes.InvalidArgument:
		errors.InvalidInputResponse(w, r, msg, reason)
	case codes.NotFound:
		errors.NotFoundResponse(w, r, msg, reason)
	case codes.FailedPrecondition:
		errors.ConflictResponse(w, r, msg, reason)
	case codes.Unavailable:
		if reason == "" {
			// the designer itself is unreachable
			reason = "DESIGNER_UNAVAILABLE"
		}
		errors.BadGatewayResponse(w, r, msg, reason)
	case codes.DeadlineExceeded:
		errors.GatewayTimeoutResponse(w, r, msg)
	default:
		errors.InternalServerError(w, r, fmt.Errorf("gRPC error: [%s] %s", st.Code(), st.Message()))
	}
}
