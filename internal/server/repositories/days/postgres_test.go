package days

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/daybook/internal/server/models"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock, db
}

const (
	existsQ = `(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+days\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+date\s*=\s*\$2\)\s*$`
	upsertQ = `(?s)^INSERT\s+INTO\s+days\s*\(user_id,\s*date,\s*document,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*ON\s+CONFLICT\s*\(user_id,\s*date\)\s*DO\s+UPDATE\s+SET.*COALESCE\(EXCLUDED\.created_at,\s*days\.created_at\).*COALESCE\(EXCLUDED\.updated_at,\s*days\.updated_at\)\s*$`
	listQ   = `(?s)^SELECT\s+date,\s*document,\s*created_at,\s*updated_at\s+FROM\s+days\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+date\s*$`
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestExists(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(existsQ).WithArgs("u1", "2024-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(existsQ).WithArgs("u1", "2024-05-02").
		WillReturnError(errors.New("db down"))

	ok, err := repo.Exists(context.Background(), "u1", "2024-05-01")
	require.NoError(t, err)
	require.True(t, ok)

	_, err = repo.Exists(context.Background(), "u1", "2024-05-02")
	require.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_StampsOnlyRequestedFields(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQ).
		WithArgs("u1", "2024-05-01", `{"mood":"calm","schemaVersion":1}`, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), models.DayWrite{
		UserID:         "u1",
		Date:           "2024-05-01",
		Document:       map[string]any{"schemaVersion": 1, "mood": "calm"},
		StampUpdatedAt: true,
	}, now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_CreateStampsBoth(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectExec(upsertQ).
		WithArgs("u1", "2024-05-01", `{}`, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), models.DayWrite{
		UserID:         "u1",
		Date:           "2024-05-01",
		Document:       map[string]any{},
		StampCreatedAt: true,
		StampUpdatedAt: true,
	}, now)
	require.NoError(t, err)
}

func TestUpsert_Errors(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	err := repo.Upsert(context.Background(), models.DayWrite{
		Date:     "2024-05-01",
		Document: map[string]any{"bad": make(chan int)},
	}, now)
	require.ErrorContains(t, err, "failed to encode day 2024-05-01")

	mock.ExpectExec(upsertQ).WillReturnError(errors.New("db down"))
	err = repo.Upsert(context.Background(), models.DayWrite{UserID: "u1", Date: "2024-05-01"}, now)
	require.ErrorContains(t, err, "db error: db down")
}

func TestList(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	created := now.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{"date", "document", "created_at", "updated_at"}).
		AddRow("2024-04-30", []byte(`{"mood":null,"notes":[]}`), nil, now).
		AddRow("2024-05-01", []byte(`{"mood":"calm"}`), created, now)
	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnRows(rows)

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "2024-04-30", got[0].Date)
	require.Equal(t, map[string]any{"mood": nil, "notes": []any{}}, got[0].Document)
	require.Nil(t, got[0].CreatedAt)
	require.True(t, got[0].UpdatedAt.Equal(now))

	require.Equal(t, "u1", got[1].UserID)
	require.Equal(t, "calm", got[1].Document["mood"])
	require.True(t, got[1].CreatedAt.Equal(created))
}

func TestList_Empty(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"date", "document", "created_at", "updated_at"}))

	got, err := repo.List(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestList_CorruptDocument(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"date", "document", "created_at", "updated_at"}).
			AddRow("2024-05-01", []byte(`{oops`), nil, nil))

	_, err := repo.List(context.Background(), "u1")
	require.ErrorContains(t, err, "failed to decode day 2024-05-01")
}

func TestList_QueryError(t *testing.T) {
	repo, mock, _ := newRepoWithMock(t)

	mock.ExpectQuery(listQ).WithArgs("u1").WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "u1")
	require.ErrorContains(t, err, "db error: db down")
}
