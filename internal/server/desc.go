package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const AssistantServiceName = "expenseassistant.v1.AssistantService"

const (
	CreateGroupMethod      = "/" + AssistantServiceName + "/CreateGroup"
	AddParticipantsMethod  = "/" + AssistantServiceName + "/AddParticipants"
	ExtractExpenseMethod   = "/" + AssistantServiceName + "/ExtractExpense"
	EditExpenseMethod      = "/" + AssistantServiceName + "/EditExpense"
	RetryExtractionMethod  = "/" + AssistantServiceName + "/RetryExtraction"
	ConfirmExpenseMethod   = "/" + AssistantServiceName + "/ConfirmExpense"
	CancelExtractionMethod = "/" + AssistantServiceName + "/CancelExtraction"
	FormatAmountMethod     = "/" + AssistantServiceName + "/FormatAmount"
)

// AssistantServiceServer is the server API. Every payload is a
// google.protobuf.Struct so clients need no generated stubs.
type AssistantServiceServer interface {
	CreateGroup(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddParticipants(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ExtractExpense(context.Context, *structpb.Struct) (*structpb.Struct, error)
	EditExpense(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RetryExtraction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmExpense(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelExtraction(context.Context, *structpb.Struct) (*structpb.Struct, error)
	FormatAmount(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(AssistantServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AssistantServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AssistantServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var AssistantServiceDesc = grpc.ServiceDesc{
	ServiceName: AssistantServiceName,
	HandlerType: (*AssistantServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateGroup", Handler: unaryHandler(CreateGroupMethod, AssistantServiceServer.CreateGroup)},
		{MethodName: "AddParticipants", Handler: unaryHandler(AddParticipantsMethod, AssistantServiceServer.AddParticipants)},
		{MethodName: "ExtractExpense", Handler: unaryHandler(ExtractExpenseMethod, AssistantServiceServer.ExtractExpense)},
		{MethodName: "EditExpense", Handler: unaryHandler(EditExpenseMethod, AssistantServiceServer.EditExpense)},
		{MethodName: "RetryExtraction", Handler: unaryHandler(RetryExtractionMethod, AssistantServiceServer.RetryExtraction)},
		{MethodName: "ConfirmExpense", Handler: unaryHandler(ConfirmExpenseMethod, AssistantServiceServer.ConfirmExpense)},
		{MethodName: "CancelExtraction", Handler: unaryHandler(CancelExtractionMethod, AssistantServiceServer.CancelExtraction)},
		{MethodName: "FormatAmount", Handler: unaryHandler(FormatAmountMethod, AssistantServiceServer.FormatAmount)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "expenseassistant/v1/assistant.proto",
}

func RegisterAssistantServiceServer(s grpc.ServiceRegistrar, srv AssistantServiceServer) {
	s.RegisterService(&AssistantServiceDesc, srv)
}

// AssistantServiceClient calls the service over any client connection.
type AssistantServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewAssistantServiceClient(cc grpc.ClientConnInterface) *AssistantServiceClient {
	return &AssistantServiceClient{cc: cc}
}

func (c *AssistantServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AssistantServiceClient) CreateGroup(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CreateGroupMethod, in, opts...)
}

func (c *AssistantServiceClient) AddParticipants(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, AddParticipantsMethod, in, opts...)
}

func (c *AssistantServiceClient) ExtractExpense(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ExtractExpenseMethod, in, opts...)
}

func (c *AssistantServiceClient) EditExpense(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, EditExpenseMethod, in, opts...)
}

func (c *AssistantServiceClient) RetryExtraction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, RetryExtractionMethod, in, opts...)
}

func (c *AssistantServiceClient) ConfirmExpense(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, ConfirmExpenseMethod, in, opts...)
}

func (c *AssistantServiceClient) CancelExtraction(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, CancelExtractionMethod, in, opts...)
}

func (c *AssistantServiceClient) FormatAmount(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, FormatAmountMethod, in, opts...)
}
