package balance

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	FindByMember(ctx context.Context, name, email string) (*Balance, error)
	// ConsumeDays increments used PTO for the member. Called exactly once
	// per request, inside the payroll hand-off transaction.
	ConsumeDays(ctx context.Context, email string, days int) error
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

func (r *repository) FindByMember(ctx context.Context, name, email string) (*Balance, error) {
	var b Balance
	err := r.db.WithContext(ctx).
		Where("LOWER(team_member_email) = ?", strings.ToLower(email)).
		First(&b).Error
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.WithContext(ctx).
		Where("LOWER(team_member_name) = ?", strings.ToLower(name)).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ConsumeDays(ctx context.Context, email string, days int) error {
	query := `
UPDATE pto_balances
SET used_pto = used_pto + $1, updated_at = NOW()
WHERE LOWER(team_member_email) = LOWER($2)
`
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, query, days, email)
		return err
	}
	return r.db.WithContext(ctx).Exec(query, days, email).Error
}
