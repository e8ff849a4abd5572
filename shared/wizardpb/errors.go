package wizardpb

import (
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const ErrorDomain = "wizard.v1"

// Reasons carried in the ErrorInfo detail of a failed call.
const (
	ReasonSessionNotFound   = "SESSION_NOT_FOUND"
	ReasonPlanNotReady      = "PLAN_NOT_READY"
	ReasonTableNotFound     = "TABLE_NOT_FOUND"
	ReasonNoSchemasYet      = "NO_SCHEMAS_YET"
	ReasonInvalidAnswers    = "INVALID_ANSWERS"
	ReasonUnsupportedTarget = "UNSUPPORTED_TARGET"
	ReasonInvalidArgument   = "INVALID_ARGUMENT"
	ReasonGenerationFailed  = "GENERATION_FAILED"
)

// Error builds a status error with an ErrorInfo detail.
func Error(code codes.Code, reason, message string) error {
	st := status.New(code, message)

	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: reason, Domain: ErrorDomain})
	if err != nil {
		return st.Err()
	}

	return detailed.Err()
}

// ReasonOf returns the ErrorInfo reason of a status error, or "".
func ReasonOf(err error) string {
	st, ok := status.FromError(err)
	if !ok {
		return ""
	}

	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.GetDomain() == ErrorDomain {
			return info.GetReason()
		}
	}

	return ""
}
