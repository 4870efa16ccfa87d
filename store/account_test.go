package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/stretchr/testify/assert"
)

var accountColumns = []string{"user_id", "email", "state", "created_at", "updated_at"}

func newMockAccountStore(t *testing.T) (*AccountStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("create sqlmock: %s", err)
	}

	ormDB, err := gorm.Open("postgres", db)
	if err != nil {
		t.Fatalf("open gorm: %s", err)
	}
	t.Cleanup(func() { _ = ormDB.Close() })

	return NewAccountStore(ormDB), mock
}

func TestUpsertAccountCreates(t *testing.T) {
	s, mock := newMockAccountStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts"`)).
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows(accountColumns))
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "accounts"`)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow("uid-1"))
	mock.ExpectCommit()

	a, err := s.UpsertAccount("uid-1", "a@b.kz")
	assert.NoError(t, err)
	assert.Equal(t, "uid-1", a.UserID)
	assert.Equal(t, "a@b.kz", a.Email)
	assert.False(t, a.State.LastActiveTime.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertAccountUpdates(t *testing.T) {
	s, mock := newMockAccountStore(t)

	created := time.Now().Add(-24 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts"`)).
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("uid-1", "old@b.kz", []byte(`{}`), created, created))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := s.UpsertAccount("uid-1", "new@b.kz")
	assert.NoError(t, err)
	assert.Equal(t, "new@b.kz", a.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccount(t *testing.T) {
	s, mock := newMockAccountStore(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts"`)).
		WithArgs("uid-1").
		WillReturnRows(sqlmock.NewRows(accountColumns).
			AddRow("uid-1", "a@b.kz", []byte(`{"location":{"latitude":51.1,"longitude":71.4}}`), now, now))

	a, err := s.GetAccount("uid-1")
	assert.NoError(t, err)
	assert.Equal(t, "a@b.kz", a.Email)
	if assert.NotNil(t, a.State.LastLocation) {
		assert.Equal(t, 51.1, a.State.LastLocation.Latitude)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAccountNotFound(t *testing.T) {
	s, mock := newMockAccountStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "accounts"`)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(accountColumns))

	_, err := s.GetAccount("nobody")
	assert.True(t, gorm.IsRecordNotFoundError(err))
}

func TestUpdateAccountGeoPosition(t *testing.T) {
	s, mock := newMockAccountStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "accounts" SET "state"`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, s.UpdateAccountGeoPosition("uid-1", 51.1, 71.4))
	assert.NoError(t, mock.ExpectationsWereMet())
}
