package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresAuditRepo(db)
	err = repo.LogSecurityEvent(context.Background(), "u1", "LOGIN_FAILED", "", map[string]interface{}{"email": "a@x.com"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditLogAnonymousEvent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// Unknown-email failures carry no user id; the row still lands.
	mock.ExpectExec("INSERT INTO audit_logs").
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewPostgresAuditRepo(db)
	err = repo.LogSecurityEvent(context.Background(), "", "LOGIN_FAILED", "", nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
