package wizardpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "wizard.v1.Wizard"

const (
	MethodGenerateQuestions   = "GenerateQuestions"
	MethodGeneratePlan        = "GeneratePlan"
	MethodGenerateTableSchema = "GenerateTableSchema"
	MethodGenerateAllSchemas  = "GenerateAllSchemas"
	MethodGenerateCode        = "GenerateCode"
	MethodGetSession          = "GetSession"
	MethodDeleteSession       = "DeleteSession"
	MethodListSessions        = "ListSessions"
	MethodSupportedLanguages  = "SupportedLanguages"
	MethodListModels          = "ListModels"
)

func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// WizardServer is implemented by the designer service.
type WizardServer interface {
	GenerateQuestions(context.Context, *QuestionsRequest) (*QuestionsResponse, error)
	GeneratePlan(context.Context, *PlanRequest) (*PlanResponse, error)
	GenerateTableSchema(context.Context, *TableSchemaRequest) (*TableSchemaResponse, error)
	GenerateAllSchemas(context.Context, *AllSchemasRequest) (*AllSchemasResponse, error)
	GenerateCode(context.Context, *CodeRequest) (*CodeResponse, error)
	GetSession(context.Context, *SessionRequest) (*SessionResponse, error)
	DeleteSession(context.Context, *SessionRequest) (*DeleteSessionResponse, error)
	ListSessions(context.Context, *Empty) (*ListSessionsResponse, error)
	SupportedLanguages(context.Context, *Empty) (*LanguagesResponse, error)
	ListModels(context.Context, *Empty) (*ModelsResponse, error)
}

var Wizard_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*WizardServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodGenerateQuestions, WizardServer.GenerateQuestions),
		unary(MethodGeneratePlan, WizardServer.GeneratePlan),
		unary(MethodGenerateTableSchema, WizardServer.GenerateTableSchema),
		unary(MethodGenerateAllSchemas, WizardServer.GenerateAllSchemas),
		unary(MethodGenerateCode, WizardServer.GenerateCode),
		unary(MethodGetSession, WizardServer.GetSession),
		unary(MethodDeleteSession, WizardServer.DeleteSession),
		unary(MethodListSessions, WizardServer.ListSessions),
		unary(MethodSupportedLanguages, WizardServer.SupportedLanguages),
		unary(MethodListModels, WizardServer.ListModels),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wizard.proto",
}

func RegisterWizardServer(s grpc.ServiceRegistrar, srv WizardServer) {
	s.RegisterService(&Wizard_ServiceDesc, srv)
}

// unary adapts a typed server method to a Struct-in, Struct-out handler.
func unary[Req, Resp any](name string, call func(WizardServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}

			handler := func(ctx context.Context, req any) (any, error) {
				var typed Req
				if err := Decode(req.(*structpb.Struct), &typed); err != nil {
					return nil, Error(codes.InvalidArgument, ReasonInvalidArgument, err.Error())
				}

				resp, err := call(srv.(WizardServer), ctx, &typed)
				if err != nil {
					return nil, err
				}

				out, err := Encode(resp)
				if err != nil {
					return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
				}
				return out, nil
			}

			if interceptor == nil {
				return handler(ctx, in)
			}

			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, handler)
		},
	}
}

type WizardClient interface {
	GenerateQuestions(ctx context.Context, in *QuestionsRequest, opts ...grpc.CallOption) (*QuestionsResponse, error)
	GeneratePlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*PlanResponse, error)
	GenerateTableSchema(ctx context.Context, in *TableSchemaRequest, opts ...grpc.CallOption) (*TableSchemaResponse, error)
	GenerateAllSchemas(ctx context.Context, in *AllSchemasRequest, opts ...grpc.CallOption) (*AllSchemasResponse, error)
	GenerateCode(ctx context.Context, in *CodeRequest, opts ...grpc.CallOption) (*CodeResponse, error)
	GetSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error)
	DeleteSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error)
	ListSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListSessionsResponse, error)
	SupportedLanguages(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*LanguagesResponse, error)
	ListModels(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ModelsResponse, error)
}

type wizardClient struct {
	cc grpc.ClientConnInterface
}

func NewWizardClient(cc grpc.ClientConnInterface) WizardClient {
	return &wizardClient{cc: cc}
}

func invoke[Req, Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in *Req, opts []grpc.CallOption) (*Resp, error) {
	payload, err := Encode(in)
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), payload, out, opts...); err != nil {
		return nil, err
	}

	resp := new(Resp)
	if err := Decode(out, resp); err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *wizardClient) GenerateQuestions(ctx context.Context, in *QuestionsRequest, opts ...grpc.CallOption) (*QuestionsResponse, error) {
	return invoke[QuestionsRequest, QuestionsResponse](ctx, c.cc, MethodGenerateQuestions, in, opts)
}

func (c *wizardClient) GeneratePlan(ctx context.Context, in *PlanRequest, opts ...grpc.CallOption) (*PlanResponse, error) {
	return invoke[PlanRequest, PlanResponse](ctx, c.cc, MethodGeneratePlan, in, opts)
}

func (c *wizardClient) GenerateTableSchema(ctx context.Context, in *TableSchemaRequest, opts ...grpc.CallOption) (*TableSchemaResponse, error) {
	return invoke[TableSchemaRequest, TableSchemaResponse](ctx, c.cc, MethodGenerateTableSchema, in, opts)
}

func (c *wizardClient) GenerateAllSchemas(ctx context.Context, in *AllSchemasRequest, opts ...grpc.CallOption) (*AllSchemasResponse, error) {
	return invoke[AllSchemasRequest, AllSchemasResponse](ctx, c.cc, MethodGenerateAllSchemas, in, opts)
}

func (c *wizardClient) GenerateCode(ctx context.Context, in *CodeRequest, opts ...grpc.CallOption) (*CodeResponse, error) {
	return invoke[CodeRequest, CodeResponse](ctx, c.cc, MethodGenerateCode, in, opts)
}

func (c *wizardClient) GetSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionRequest, SessionResponse](ctx, c.cc, MethodGetSession, in, opts)
}

func (c *wizardClient) DeleteSession(ctx context.Context, in *SessionRequest, opts ...grpc.CallOption) (*DeleteSessionResponse, error) {
	return invoke[SessionRequest, DeleteSessionResponse](ctx, c.cc, MethodDeleteSession, in, opts)
}

func (c *wizardClient) ListSessions(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ListSessionsResponse, error) {
	return invoke[Empty, ListSessionsResponse](ctx, c.cc, MethodListSessions, in, opts)
}

func (c *wizardClient) SupportedLanguages(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*LanguagesResponse, error) {
	return invoke[Empty, LanguagesResponse](ctx, c.cc, MethodSupportedLanguages, in, opts)
}

func (c *wizardClient) ListModels(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*ModelsResponse, error) {
	return invoke[Empty, ModelsResponse](ctx, c.cc, MethodListModels, in, opts)
}
