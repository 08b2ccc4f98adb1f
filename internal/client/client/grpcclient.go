package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/daybook/internal/client/models"
	"github.com/dmitrijs2005/daybook/internal/common"
	"github.com/dmitrijs2005/daybook/internal/mirror"
	"github.com/dmitrijs2005/daybook/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      rpc.DayBookClient

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	onRefresh    func(accessToken, refreshToken string)
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	accessToken, refreshToken := s.tokens()
	err := invoker(withAccessToken(ctx, accessToken), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	if st.Code() != codes.Unauthenticated || st.Message() != common.ErrTokenExpired.Error() {
		return err
	}
	if refreshToken == "" || method == rpc.FullMethodRefreshToken {
		return err
	}

	in, err := rpc.TokenRequest{RefreshToken: refreshToken}.ToStruct()
	if err != nil {
		return err
	}
	resp, err := s.client.RefreshToken(ctx, in)
	if err != nil {
		return err
	}
	sess := rpc.SessionFromStruct(resp)

	s.mu.Lock()
	s.accessToken = sess.AccessToken
	s.refreshToken = sess.RefreshToken
	onRefresh := s.onRefresh
	s.mu.Unlock()

	if onRefresh != nil {
		onRefresh(sess.AccessToken, sess.RefreshToken)
	}

	// tokens refreshed, re-send once; a second rejection is returned as is
	return invoker(withAccessToken(ctx, sess.AccessToken), method, req, reply, cc, opts...)
}

func NewDayBookClient(endpointURL string) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}
	err := c.InitGRPCClient()
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {

	conn, err := grpc.NewClient(s.endpointURL, grpc.WithTransportCredentials(insecure.NewCredentials()), grpc.WithUnaryInterceptor(s.accessTokenInterceptor))
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = rpc.NewDayBookClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) SetTokens(accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = accessToken
	s.refreshToken = refreshToken
}

func (s *GRPCClient) OnTokensRefreshed(fn func(accessToken, refreshToken string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRefresh = fn
}

// session installs the tokens of a successful sign-in and converts it.
func (s *GRPCClient) session(resp *structpb.Struct) Session {
	r := rpc.SessionFromStruct(resp)
	s.SetTokens(r.AccessToken, r.RefreshToken)
	return Session{
		Principal:    models.Principal{ID: r.UserID, Anonymous: r.Anonymous},
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
	}
}

func (s *GRPCClient) SignInAnonymously(ctx context.Context) (Session, error) {
	resp, err := s.client.SignInAnonymously(ctx, &emptypb.Empty{})
	if err != nil {
		return Session{}, s.transportError("sign in anonymously", err)
	}
	return s.session(resp), nil
}

func (s *GRPCClient) LinkCredential(ctx context.Context, cred models.Credential) (Session, error) {
	in, err := rpc.Credential{Email: cred.Email, Password: string(cred.Password)}.ToStruct()
	if err != nil {
		return Session{}, err
	}
	resp, err := s.client.LinkCredential(ctx, in)
	if err != nil {
		return Session{}, s.transportError("link credential", err)
	}
	return s.session(resp), nil
}

func (s *GRPCClient) SignInWithCredential(ctx context.Context, cred models.Credential) (Session, error) {
	in, err := rpc.Credential{Email: cred.Email, Password: string(cred.Password)}.ToStruct()
	if err != nil {
		return Session{}, err
	}
	resp, err := s.client.SignInWithCredential(ctx, in)
	if err != nil {
		return Session{}, s.transportError("sign in", err)
	}
	return s.session(resp), nil
}

// SignOut revokes the refresh token on the server and forgets both tokens
// locally, even when the remote call fails.
func (s *GRPCClient) SignOut(ctx context.Context) error {
	_, refreshToken := s.tokens()
	defer s.SetTokens("", "")

	in, err := rpc.TokenRequest{RefreshToken: refreshToken}.ToStruct()
	if err != nil {
		return err
	}
	if _, err := s.client.SignOut(ctx, in); err != nil {
		return s.transportError("sign out", err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.GetFields()["status"].GetStringValue() != rpc.StatusOK {
		return ErrUnavailable
	}

	return nil

}

func (s *GRPCClient) Exists(ctx context.Context, principalID, date string) (bool, error) {
	in, err := rpc.DayKey{PrincipalID: principalID, Date: date}.ToStruct()
	if err != nil {
		return false, err
	}
	resp, err := s.client.DayExists(ctx, in)
	if err != nil {
		return false, s.transportError("exists", err)
	}
	return resp.GetValue(), nil
}

func (s *GRPCClient) Upsert(ctx context.Context, principalID, date string, rec mirror.RemoteDayRecord) error {
	in, err := rpc.UpsertDayRequest{
		PrincipalID:    principalID,
		Date:           date,
		Document:       rec.Document(),
		StampCreatedAt: rec.CreatedAt != nil,
		StampUpdatedAt: rec.UpdatedAt != nil,
	}.ToStruct()
	if err != nil {
		return err
	}
	if _, err := s.client.UpsertDay(ctx, in); err != nil {
		return s.transportError("upsert", err)
	}
	return nil
}

func (s *GRPCClient) ListAll(ctx context.Context, principalID string) ([]mirror.RawDay, error) {
	in, err := rpc.ListDaysRequest{PrincipalID: principalID}.ToStruct()
	if err != nil {
		return nil, err
	}
	resp, err := s.client.ListDays(ctx, in)
	if err != nil {
		return nil, s.transportError("list", err)
	}

	list := rpc.ListDaysResponseFromStruct(resp)
	out := make([]mirror.RawDay, 0, len(list.Days))
	for _, d := range list.Days {
		out = append(out, mirror.RawDay{Date: d.Date, Data: d.Document})
	}
	return out, nil
}

func (s *GRPCClient) transportError(op string, err error) error {
	return &common.TransportError{Op: op, Err: s.mapError(err)}
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.AlreadyExists:
		return common.ErrCredentialAlreadyInUse
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
