package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/plataform/plataform-api/internal/models"
)

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestUserRepositoryListStudentsOrdersByAura(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "aura"}).
		AddRow("student-1", "Ana", "Lopez", 120).
		AddRow("student-2", "Bruno", "Diaz", 90).
		AddRow("student-3", "Carla", "Marin", 90)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, first_name, last_name, aura FROM users WHERE role = $1 ORDER BY aura DESC, id ASC")).
		WithArgs(string(models.RoleStudent)).
		WillReturnRows(rows)

	students, err := repo.ListStudents(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 3)
	require.Equal(t, "Ana", students[0].FirstName)
	require.Equal(t, 90, students[2].Aura)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListStudentsSearchLowercasesTerm(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "aura"}).
		AddRow("student-2", "Bruno", "Diaz", 90)
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(first_name) LIKE $2")).
		WithArgs(string(models.RoleStudent), "%diaz%").
		WillReturnRows(rows)

	students, err := repo.ListStudents(context.Background(), models.StudentFilter{Search: "DiAz"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.Equal(t, "Bruno", students[0].FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByEmailNotFound(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nadie@plataform.dev").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nadie@plataform.dev")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRefreshTokenLifecycle(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO refresh_tokens")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	token := &models.RefreshToken{
		UserID:    "user-1",
		Token:     "opaque-token",
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, repo.CreateRefreshToken(context.Background(), token))
	require.NotEmpty(t, token.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
		AddRow(token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt, false, nil, "", "")
	mock.ExpectQuery(regexp.QuoteMeta("FROM refresh_tokens WHERE token = $1")).
		WithArgs("opaque-token").
		WillReturnRows(rows)

	found, err := repo.FindRefreshToken(context.Background(), "opaque-token")
	require.NoError(t, err)
	require.Equal(t, token.ID, found.ID)
	require.False(t, found.Revoked)

	revokedAt := time.Now().UTC()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE refresh_tokens SET revoked = TRUE")).
		WithArgs(token.ID, revokedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RevokeRefreshToken(context.Background(), token.ID, revokedAt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryRevokeUserRefreshTokens(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()

	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("WHERE user_id = $1 AND revoked = FALSE")).
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.RevokeUserRefreshTokens(context.Background(), "user-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
