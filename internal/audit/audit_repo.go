package audit

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolationCode = "23505"

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	// Append adds one entry to a request's history. A retry that hits the
	// dedup index is swallowed: the entry is already there.
	Append(ctx context.Context, entry *AuditEntry) error
	History(ctx context.Context, requestID string) ([]AuditEntry, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Append(ctx context.Context, entry *AuditEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.Bucket == "" {
		entry.Bucket = BucketFor(entry.Timestamp)
	}

	if r.tx != nil {
		query := `
INSERT INTO audit_entries (id, request_id, action, actor, note, timestamp, bucket, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
`
		_, err := r.tx.ExecContext(
			ctx, query,
			entry.ID, entry.RequestID, entry.Action,
			entry.Actor, entry.Note, entry.Timestamp, entry.Bucket,
		)
		return ignoreDuplicate(err)
	}

	return ignoreDuplicate(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *repository) History(ctx context.Context, requestID string) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func ignoreDuplicate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return nil
	}
	return err
}
