package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/rpc"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/dmitrijs2005/daybook/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	fieldCreatedAt = "createdAt"
	fieldUpdatedAt = "updatedAt"
)

// toStatus maps service errors onto gRPC codes. Unknown errors are logged and
// reported as Internal without detail.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrInvalidCredential), errors.Is(err, common.ErrInvalidDate):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrCredentialAlreadyInUse):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, common.ErrNotAnonymous):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrRefreshTokenExpired):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, common.ErrPrincipalMismatch):
		return status.Error(codes.PermissionDenied, err.Error())
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return status.Error(codes.Internal, "internal error")
}

func sessionStruct(sess *services.Session) (*structpb.Struct, error) {
	out, err := rpc.Session{
		UserID:       sess.UserID,
		Anonymous:    sess.Anonymous,
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
	}.ToStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, "internal error")
	}
	return out, nil
}

// authorize returns the caller's user id when it owns principalID.
func (s *GRPCServer) authorize(ctx context.Context, principalID string) (string, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return "", status.Error(codes.Unauthenticated, "missing token")
	}
	if principalID != userID {
		s.logger.Warn(ctx, "principal mismatch", "user_id", userID, "principal_id", principalID)
		return "", status.Error(codes.PermissionDenied, common.ErrPrincipalMismatch.Error())
	}
	return userID, nil
}

func (s *GRPCServer) SignInAnonymously(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	sess, err := s.users.SignInAnonymously(ctx)
	if err != nil {
		return nil, s.toStatus(ctx, "sign in anonymously", err)
	}
	return sessionStruct(sess)
}

func (s *GRPCServer) LinkCredential(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	userID, ok := userIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	cred := rpc.CredentialFromStruct(in)
	sess, err := s.users.LinkCredential(ctx, userID, cred.Email, cred.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "link credential", err)
	}
	return sessionStruct(sess)
}

func (s *GRPCServer) SignInWithCredential(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	cred := rpc.CredentialFromStruct(in)
	sess, err := s.users.SignIn(ctx, cred.Email, cred.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "sign in", err)
	}
	s.logger.Info(ctx, "signed in", "user_id", sess.UserID)
	return sessionStruct(sess)
}

func (s *GRPCServer) SignOut(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	req := rpc.TokenRequestFromStruct(in)
	if err := s.users.SignOut(ctx, req.RefreshToken); err != nil {
		return nil, s.toStatus(ctx, "sign out", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := rpc.TokenRequestFromStruct(in)
	sess, err := s.users.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, s.toStatus(ctx, "refresh token", err)
	}
	return sessionStruct(sess)
}

func (s *GRPCServer) Ping(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"status": rpc.StatusOK})
}

func (s *GRPCServer) DayExists(ctx context.Context, in *structpb.Struct) (*wrapperspb.BoolValue, error) {
	key := rpc.DayKeyFromStruct(in)
	userID, err := s.authorize(ctx, key.PrincipalID)
	if err != nil {
		return nil, err
	}

	ok, err := s.days.Exists(ctx, userID, key.Date)
	if err != nil {
		return nil, s.toStatus(ctx, "day exists", err)
	}
	return wrapperspb.Bool(ok), nil
}

func (s *GRPCServer) UpsertDay(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {
	req := rpc.UpsertDayRequestFromStruct(in)
	userID, err := s.authorize(ctx, req.PrincipalID)
	if err != nil {
		return nil, err
	}

	err = s.days.Upsert(ctx, models.DayWrite{
		UserID:         userID,
		Date:           req.Date,
		Document:       req.Document,
		StampCreatedAt: req.StampCreatedAt,
		StampUpdatedAt: req.StampUpdatedAt,
	})
	if err != nil {
		return nil, s.toStatus(ctx, "upsert day", err)
	}
	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) ListDays(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := rpc.ListDaysRequestFromStruct(in)
	userID, err := s.authorize(ctx, req.PrincipalID)
	if err != nil {
		return nil, err
	}

	docs, err := s.days.List(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, "list days", err)
	}

	resp := rpc.ListDaysResponse{Days: make([]rpc.Day, 0, len(docs))}
	for _, d := range docs {
		resp.Days = append(resp.Days, rpc.Day{Date: d.Date, Document: renderDocument(d)})
	}

	out, err := resp.ToStruct()
	if err != nil {
		return nil, s.toStatus(ctx, "list days", err)
	}
	return out, nil
}

// renderDocument returns the stored document with the server timestamps
// added as RFC3339Nano strings, or nulls when never stamped.
func renderDocument(d models.DayDocument) map[string]any {
	doc := make(map[string]any, len(d.Document)+2)
	for k, v := range d.Document {
		doc[k] = v
	}
	doc[fieldCreatedAt] = formatStamp(d.CreatedAt)
	doc[fieldUpdatedAt] = formatStamp(d.UpdatedAt)
	return doc
}

func formatStamp(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
