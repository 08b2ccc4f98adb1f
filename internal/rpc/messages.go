package rpc

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// StatusOK is the ping status reported by a healthy server.
const StatusOK = "OK"

// Credential carries a durable email/password credential.
type Credential struct {
	Email    string
	Password string
}

// Session is returned by every sign-in style RPC.
type Session struct {
	UserID       string
	Anonymous    bool
	AccessToken  string
	RefreshToken string
}

// TokenRequest carries a refresh token (RefreshToken, SignOut).
type TokenRequest struct {
	RefreshToken string
}

// DayKey addresses one day document of one principal.
type DayKey struct {
	PrincipalID string
	Date        string
}

// UpsertDayRequest is a merge-write of one day document. The stamp flags ask
// the server to set the matching timestamp with its own clock; an unset flag
// leaves the stored value untouched.
type UpsertDayRequest struct {
	PrincipalID    string
	Date           string
	Document       map[string]any
	StampCreatedAt bool
	StampUpdatedAt bool
}

// ListDaysRequest selects every day document of one principal.
type ListDaysRequest struct {
	PrincipalID string
}

// Day is one listed document.
type Day struct {
	Date     string
	Document map[string]any
}

type ListDaysResponse struct {
	Days []Day
}

func (c Credential) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"email":    c.Email,
		"password": c.Password,
	})
}

func CredentialFromStruct(s *structpb.Struct) Credential {
	return Credential{
		Email:    stringField(s, "email"),
		Password: stringField(s, "password"),
	}
}

func (r Session) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"userId":       r.UserID,
		"anonymous":    r.Anonymous,
		"accessToken":  r.AccessToken,
		"refreshToken": r.RefreshToken,
	})
}

func SessionFromStruct(s *structpb.Struct) Session {
	return Session{
		UserID:       stringField(s, "userId"),
		Anonymous:    boolField(s, "anonymous"),
		AccessToken:  stringField(s, "accessToken"),
		RefreshToken: stringField(s, "refreshToken"),
	}
}

func (r TokenRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"refreshToken": r.RefreshToken})
}

func TokenRequestFromStruct(s *structpb.Struct) TokenRequest {
	return TokenRequest{RefreshToken: stringField(s, "refreshToken")}
}

func (k DayKey) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"principalId": k.PrincipalID,
		"date":        k.Date,
	})
}

func DayKeyFromStruct(s *structpb.Struct) DayKey {
	return DayKey{
		PrincipalID: stringField(s, "principalId"),
		Date:        stringField(s, "date"),
	}
}

func (r UpsertDayRequest) ToStruct() (*structpb.Struct, error) {
	doc := r.Document
	if doc == nil {
		doc = map[string]any{}
	}
	s, err := structpb.NewStruct(map[string]any{
		"principalId":    r.PrincipalID,
		"date":           r.Date,
		"document":       doc,
		"stampCreatedAt": r.StampCreatedAt,
		"stampUpdatedAt": r.StampUpdatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("encode day document: %w", err)
	}
	return s, nil
}

func UpsertDayRequestFromStruct(s *structpb.Struct) UpsertDayRequest {
	return UpsertDayRequest{
		PrincipalID:    stringField(s, "principalId"),
		Date:           stringField(s, "date"),
		Document:       s.GetFields()["document"].GetStructValue().AsMap(),
		StampCreatedAt: boolField(s, "stampCreatedAt"),
		StampUpdatedAt: boolField(s, "stampUpdatedAt"),
	}
}

func (r ListDaysRequest) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{"principalId": r.PrincipalID})
}

func ListDaysRequestFromStruct(s *structpb.Struct) ListDaysRequest {
	return ListDaysRequest{PrincipalID: stringField(s, "principalId")}
}

func (r ListDaysResponse) ToStruct() (*structpb.Struct, error) {
	days := make([]any, 0, len(r.Days))
	for _, d := range r.Days {
		doc := d.Document
		if doc == nil {
			doc = map[string]any{}
		}
		days = append(days, map[string]any{"date": d.Date, "document": doc})
	}
	s, err := structpb.NewStruct(map[string]any{"days": days})
	if err != nil {
		return nil, fmt.Errorf("encode day list: %w", err)
	}
	return s, nil
}

// ListDaysResponseFromStruct skips list items that are not objects.
func ListDaysResponseFromStruct(s *structpb.Struct) ListDaysResponse {
	var out ListDaysResponse
	for _, v := range s.GetFields()["days"].GetListValue().GetValues() {
		item := v.GetStructValue()
		if item == nil {
			continue
		}
		out.Days = append(out.Days, Day{
			Date:     stringField(item, "date"),
			Document: item.GetFields()["document"].GetStructValue().AsMap(),
		})
	}
	return out
}

func stringField(s *structpb.Struct, name string) string {
	return s.GetFields()[name].GetStringValue()
}

func boolField(s *structpb.Struct, name string) bool {
	return s.GetFields()[name].GetBoolValue()
}
