package server

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/expense-assistant/internal/common"
	"github.com/joseph-ayodele/expense-assistant/internal/expenses"
	"github.com/joseph-ayodele/expense-assistant/internal/utils"
)

type AssistantServer struct {
	svc    *expenses.Service
	logger *slog.Logger
}

var _ AssistantServiceServer = (*AssistantServer)(nil)

func NewAssistantServer(svc *expenses.Service, logger *slog.Logger) *AssistantServer {
	return &AssistantServer{svc: svc, logger: logger}
}

// CreateGroup creates a group with its ordered participant list.
func (s *AssistantServer) CreateGroup(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	names, _, err := utils.Strings(req, "participants")
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	g, participants, err := s.svc.CreateGroup(ctx, expenses.CreateGroupRequest{
		Name:            utils.String(req, "name"),
		DefaultCurrency: utils.String(req, "default_currency"),
		Locale:          utils.String(req, "locale"),
		Participants:    names,
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return s.encode(utils.ToPBGroup(g, participants))
}

// AddParticipants appends members to an existing group.
func (s *AssistantServer) AddParticipants(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	groupID, err := utils.UUID(req, "group_id")
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	names, _, err := utils.Strings(req, "participants")
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	participants, err := s.svc.AddParticipants(ctx, groupID, names)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return s.encode(utils.ToPBParticipants(groupID, participants))
}

// ExtractExpense runs one message through the extraction pipeline.
func (s *AssistantServer) ExtractExpense(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	groupID, err := utils.UUID(req, "group_id")
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	turn, err := s.svc.Extract(ctx, expenses.ExtractRequest{
		SessionID: utils.String(req, "session_id"),
		GroupID:   groupID,
		Text:      utils.String(req, "text"),
		Locale:    utils.String(req, "locale"),
		Currency:  utils.String(req, "currency"),
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return s.encode(utils.ToPBTurn(turn))
}

// EditExpense applies manual corrections to the session's latest result.
func (s *AssistantServer) EditExpense(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	patch, err := utils.PatchFromPB(req)
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	turn, err := s.svc.Edit(ctx, utils.String(req, "session_id"), patch)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return s.encode(utils.ToPBTurn(turn))
}

func (s *AssistantServer) RetryExtraction(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	turn, err := s.svc.Retry(ctx, utils.String(req, "session_id"))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return s.encode(utils.ToPBTurn(turn))
}

// ConfirmExpense persists the session's result and ends the session.
func (s *AssistantServer) ConfirmExpense(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	expense, err := s.svc.Confirm(ctx, expenses.ConfirmRequest{
		SessionID:  utils.String(req, "session_id"),
		AmountText: utils.String(req, "amount_text"),
		DateText:   utils.String(req, "date_text"),
		RequestID:  common.RequestIDFromContext(ctx),
	})
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return s.encode(utils.ToPBExpense(expense))
}

func (s *AssistantServer) CancelExtraction(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := utils.String(req, "session_id")
	if id == "" {
		return nil, common.InvalidArgumentError("session_id is required")
	}
	s.svc.Cancel(id)
	return &structpb.Struct{}, nil
}

func (s *AssistantServer) FormatAmount(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cents, ok, err := utils.Cents(req, "amount_cents")
	if err != nil {
		return nil, common.InvalidArgumentError(err.Error())
	}
	if !ok {
		return nil, common.InvalidArgumentError("amount_cents is required")
	}
	formatted := s.svc.FormatAmount(cents, utils.String(req, "locale"), utils.String(req, "currency"))
	return s.encode(map[string]interface{}{"formatted": formatted}, nil)
}

func (s *AssistantServer) encode(v interface{}, err error) (*structpb.Struct, error) {
	if err != nil {
		s.logger.Error("failed to encode response", "error", err)
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	switch out := v.(type) {
	case *structpb.Struct:
		return out, nil
	case map[string]interface{}:
		st, err := structpb.NewStruct(out)
		if err != nil {
			return nil, common.InternalErrorf("encode response: %v", err)
		}
		return st, nil
	default:
		return nil, common.InternalError("encode response: unsupported type")
	}
}

const (
	requestIDHeader = "x-request-id"
	localeHeader    = "x-locale"
)

// RequestIDUnaryInterceptor tags each call with the caller's x-request-id or a
// fresh one, and echoes it back in the response header. An x-locale header
// becomes the call's locale when the payload names none.
func RequestIDUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		id, locale := "", ""
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if vals := md.Get(requestIDHeader); len(vals) > 0 {
				id = vals[0]
			}
			if vals := md.Get(localeHeader); len(vals) > 0 {
				locale = strings.TrimSpace(vals[0])
			}
		}
		if id == "" {
			id = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDHeader, id))
		ctx = common.WithRequestID(ctx, id)
		if locale != "" {
			ctx = common.WithLocale(ctx, locale)
		}
		return handler(ctx, req)
	}
}
