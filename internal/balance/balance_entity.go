package balance

import (
	"time"

	"github.com/google/uuid"
)

type Balance struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamMemberName  string    `gorm:"type:varchar(120);not null;index:idx_pto_balances_name"`
	TeamMemberEmail string    `gorm:"type:varchar(160);not null;uniqueIndex:idx_pto_balances_email"`

	AnnualPTO int `gorm:"type:int;not null;default:0"`
	UsedPTO   int `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Balance) TableName() string {
	return "pto_balances"
}

// Snapshot returns the balance as a value, with remaining floored at
// zero so an overridden over-consumption never reads negative.
func (b Balance) Snapshot() PTOBalance {
	remaining := b.AnnualPTO - b.UsedPTO
	if remaining < 0 {
		remaining = 0
	}
	return PTOBalance{
		AnnualPTO:    b.AnnualPTO,
		UsedPTO:      b.UsedPTO,
		RemainingPTO: remaining,
	}
}
