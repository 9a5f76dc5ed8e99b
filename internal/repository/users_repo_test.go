package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestListActiveUserIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresUsersRepo(db, zap.NewNop())

	mock.ExpectQuery(`SELECT id FROM users WHERE deleted_at IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow("user-1").
			AddRow("user-2"))

	ids, err := repo.ListActiveUserIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"user-1", "user-2"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveUserIDs_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresUsersRepo(db, zap.NewNop())

	mock.ExpectQuery(`SELECT id FROM users`).WillReturnError(assert.AnError)

	_, err = repo.ListActiveUserIDs(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
