package rpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestSession_StructRoundTrip(t *testing.T) {
	in := Session{UserID: "u1", Anonymous: true, AccessToken: "a", RefreshToken: "r"}

	s, err := in.ToStruct()
	require.NoError(t, err)

	assert.Equal(t, in, SessionFromStruct(s))
}

func TestUpsertDayRequest_KeepsDocumentAndFlags(t *testing.T) {
	in := UpsertDayRequest{
		PrincipalID: "u1",
		Date:        "2024-01-01",
		Document: map[string]any{
			"mood":  "ok",
			"sleep": nil,
			"notes": []any{map[string]any{"text": "x"}},
		},
		StampCreatedAt: true,
		StampUpdatedAt: true,
	}

	s, err := in.ToStruct()
	require.NoError(t, err)
	got := UpsertDayRequestFromStruct(s)

	assert.Equal(t, in, got)
	assert.Contains(t, got.Document, "sleep", "explicit null must survive the wire")
}

func TestUpsertDayRequest_RejectsUnencodableDocument(t *testing.T) {
	_, err := UpsertDayRequest{Document: map[string]any{"bad": make(chan int)}}.ToStruct()
	require.Error(t, err)
}

func TestFromStruct_NilIsZero(t *testing.T) {
	assert.Equal(t, Credential{}, CredentialFromStruct(nil))
	assert.Equal(t, DayKey{}, DayKeyFromStruct(nil))
	assert.Equal(t, ListDaysResponse{}, ListDaysResponseFromStruct(nil))
	assert.Empty(t, UpsertDayRequestFromStruct(nil).Document)
}

func TestListDaysResponse_SkipsNonObjects(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"days": []any{
			"junk",
			map[string]any{"date": "2024-02-02", "document": map[string]any{"mood": "ok"}},
		},
	})
	require.NoError(t, err)

	got := ListDaysResponseFromStruct(s)

	require.Len(t, got.Days, 1)
	assert.Equal(t, "2024-02-02", got.Days[0].Date)
	assert.Equal(t, "ok", got.Days[0].Document["mood"])
}

func TestListDaysResponse_RoundTrip(t *testing.T) {
	in := ListDaysResponse{Days: []Day{
		{Date: "2024-01-01", Document: map[string]any{"mood": "ok"}},
		{Date: "2024-01-02", Document: map[string]any{}},
	}}

	s, err := in.ToStruct()
	require.NoError(t, err)

	assert.Equal(t, in, ListDaysResponseFromStruct(s))
}
