package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupress/edupress/internal/domain"
)

func TestCourseSaveMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE courses").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewPostgresCourseRepo(db)
	err = repo.Save(context.Background(), &domain.Course{ID: "c1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseSavePropagatesRowsAffectedError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	driverErr := errors.New("rows affected unavailable")
	mock.ExpectExec("UPDATE courses").
		WillReturnResult(sqlmock.NewErrorResult(driverErr))

	repo := NewPostgresCourseRepo(db)
	err = repo.Save(context.Background(), &domain.Course{ID: "c1"})
	assert.ErrorIs(t, err, driverErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}
