package leaverequest

import (
	"context"
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, l *LeaveRequest) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindAll(ctx context.Context, status string) ([]LeaveRequest, error)
	// UpdateVersioned persists l only if the row still carries
	// expectedVersion. Returns false when another command got there
	// first.
	UpdateVersioned(ctx context.Context, l *LeaveRequest, expectedVersion int) (bool, error)
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

// conn routes writes through the command transaction when one is open.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	if r.tx != nil {
		if db, err := gorm.Open(postgres.New(postgres.Config{Conn: r.tx}), &gorm.Config{}); err == nil {
			return db.WithContext(ctx)
		}
	}
	return r.db.WithContext(ctx)
}

func (r *repository) Create(ctx context.Context, l *LeaveRequest) error {
	return r.conn(ctx).Create(l).Error
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var l LeaveRequest
	err := r.db.WithContext(ctx).First(&l, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repository) FindAll(ctx context.Context, status string) ([]LeaveRequest, error) {
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var requests []LeaveRequest
	err := db.Order("submitted_at DESC").Find(&requests).Error
	return requests, err
}

func (r *repository) UpdateVersioned(ctx context.Context, l *LeaveRequest, expectedVersion int) (bool, error) {
	res := r.conn(ctx).
		Model(&LeaveRequest{}).
		Where("id = ? AND version = ?", l.ID, expectedVersion).
		Select("*").
		Omit("id", "created_at").
		Updates(l)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
