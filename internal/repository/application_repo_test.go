package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vietvisa/internal/domain"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestMarkPaid_AppliesOnce(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE `applications` SET .+ WHERE id = \\? AND payment_status <> \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	applied, err := repo.MarkPaid("app-1", "card")
	require.NoError(t, err)
	assert.True(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPaid_ReplayMatchesNoRows(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	// payment_status already completed, so the guard clause matches nothing.
	mock.ExpectExec("UPDATE `applications` SET .+ WHERE id = \\? AND payment_status <> \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	applied, err := repo.MarkPaid("app-1", "card")
	require.NoError(t, err)
	assert.False(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_GuardsOnCurrentStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE `applications` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.TransitionStatus("app-1", domain.StatusProcessing, domain.StatusApproved, nil)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStatus_StaleRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE `applications` SET .+ WHERE id = \\? AND status = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.TransitionStatus("app-1", domain.StatusProcessing, domain.StatusApproved, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUpdateFields_MissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec("UPDATE `applications` SET .+ WHERE id = \\?").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateFields("missing", map[string]interface{}{"notes": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdateFields_EmptyMapIsNoOp(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	assert.NoError(t, repo.UpdateFields("app-1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}
