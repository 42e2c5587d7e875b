package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestBucketFor(t *testing.T) {
	t.Run("truncates to the minute in UTC", func(t *testing.T) {
		ts := time.Date(2025, 6, 2, 9, 41, 59, 999000000, time.UTC)
		assert.Equal(t, "2025-06-02T09:41", BucketFor(ts))
	})

	t.Run("same minute shares a bucket", func(t *testing.T) {
		a := time.Date(2025, 6, 2, 9, 41, 3, 0, time.UTC)
		b := time.Date(2025, 6, 2, 9, 41, 58, 0, time.UTC)
		assert.Equal(t, BucketFor(a), BucketFor(b))
	})

	t.Run("normalizes the zone", func(t *testing.T) {
		zone := time.FixedZone("CAT", 2*60*60)
		local := time.Date(2025, 6, 2, 11, 41, 0, 0, zone)
		assert.Equal(t, "2025-06-02T09:41", BucketFor(local))
	})
}

func TestIgnoreDuplicate(t *testing.T) {
	assert.NoError(t, ignoreDuplicate(nil))
	assert.NoError(t, ignoreDuplicate(&pgconn.PgError{Code: uniqueViolationCode}))

	otherPg := &pgconn.PgError{Code: "23503"}
	assert.Equal(t, otherPg, ignoreDuplicate(otherPg))

	plain := errors.New("connection reset")
	assert.Equal(t, plain, ignoreDuplicate(plain))
}

func TestRepository_Append_Tx(t *testing.T) {
	newTx := func(t *testing.T) (*sql.Tx, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		mock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)
		return tx, mock
	}

	entry := func() *AuditEntry {
		return &AuditEntry{
			RequestID: uuid.New(),
			Action:    "submitted",
			Actor:     "jane.doe@zimworx.com",
			Timestamp: time.Date(2025, 6, 2, 9, 41, 12, 0, time.UTC),
		}
	}

	t.Run("inserts with generated id and bucket", func(t *testing.T) {
		tx, mock := newTx(t)

		mock.ExpectExec("INSERT INTO audit_entries").
			WillReturnResult(sqlmock.NewResult(1, 1))

		repo := NewRepository(nil).WithTx(tx)
		e := entry()
		err := repo.Append(context.Background(), e)
		assert.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, e.ID)
		assert.Equal(t, "2025-06-02T09:41", e.Bucket)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate retry is swallowed", func(t *testing.T) {
		tx, mock := newTx(t)

		mock.ExpectExec("INSERT INTO audit_entries").
			WillReturnError(&pgconn.PgError{Code: uniqueViolationCode})

		repo := NewRepository(nil).WithTx(tx)
		err := repo.Append(context.Background(), entry())
		assert.NoError(t, err)
	})

	t.Run("other errors surface", func(t *testing.T) {
		tx, mock := newTx(t)

		mock.ExpectExec("INSERT INTO audit_entries").
			WillReturnError(errors.New("connection reset"))

		repo := NewRepository(nil).WithTx(tx)
		err := repo.Append(context.Background(), entry())
		assert.Error(t, err)
	})
}

func TestRepository_History(t *testing.T) {
	newGorm := func(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
		t.Helper()
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
		assert.NoError(t, err)
		return gdb, mock
	}

	t.Run("returns entries oldest first", func(t *testing.T) {
		gdb, mock := newGorm(t)
		repo := NewRepository(gdb)

		requestID := uuid.NewString()
		first := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
		second := first.Add(2 * time.Hour)

		rows := sqlmock.NewRows([]string{"id", "request_id", "action", "actor", "note", "timestamp", "bucket", "created_at"}).
			AddRow(uuid.NewString(), requestID, "submitted", "jane.doe@zimworx.com", "", first, BucketFor(first), first).
			AddRow(uuid.NewString(), requestID, "csp-approved", "csp@zimworx.com", "", second, BucketFor(second), second)

		mock.ExpectQuery(`request_id = \$1 ORDER BY timestamp ASC`).
			WithArgs(requestID).
			WillReturnRows(rows)

		entries, err := repo.History(context.Background(), requestID)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, "submitted", entries[0].Action)
		assert.Equal(t, "csp-approved", entries[1].Action)
		assert.True(t, entries[0].Timestamp.Before(entries[1].Timestamp))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query errors surface", func(t *testing.T) {
		gdb, mock := newGorm(t)
		repo := NewRepository(gdb)

		mock.ExpectQuery(`ORDER BY timestamp ASC`).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.History(context.Background(), uuid.NewString())
		assert.Error(t, err)
	})
}
