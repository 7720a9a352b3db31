package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "first_name", "last_name", "provider", "provider_id", "photo_url",
		"phone", "region", "notification_token", "email_verified", "blocked", "created_at", "updated_at",
	})
}

func TestGetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("sara@example.com").
		WillReturnRows(userRows().
			AddRow("u1", "sara@example.com", "Sara", "Haddad", "google", "g-123", "",
				"+96599000000", "kw", "", true, false, now, now))

	user, err := NewUserStore(db).GetByEmail(context.Background(), "sara@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Sara Haddad", user.FullName())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmailNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email").
		WithArgs("nobody@example.com").
		WillReturnRows(userRows())

	_, err = NewUserStore(db).GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateAssignsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(0, 1))

	user, err := NewUserStore(db).Create(context.Background(), &User{
		Email:    "sara@example.com",
		Provider: "google",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNotificationTokenMissingUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE users SET notification_token").
		WithArgs("tok", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewUserStore(db).UpdateNotificationToken(context.Background(), "missing", "tok")
	assert.ErrorIs(t, err, ErrNotFound)
}
