package leaverequest

import (
	"time"

	"github.com/google/uuid"
)

const (
	LeaveTypeAnnual      = "annual"
	LeaveTypeSick        = "sick"
	LeaveTypePersonal    = "personal"
	LeaveTypeMaternity   = "maternity"
	LeaveTypeBereavement = "bereavement"
	LeaveTypeUnpaid      = "unpaid"
)

// LeaveRequest is mutated only through engine transitions and never
// deleted: rejected and denied requests stay as permanent history.
type LeaveRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	TeamMemberName  string `gorm:"type:varchar(120);not null;index:idx_leave_requests_member"`
	TeamMemberEmail string `gorm:"type:varchar(160);not null;index:idx_leave_requests_member"`

	// Open enumeration; sick carries a documentation soft-constraint.
	LeaveType string `gorm:"type:varchar(30);not null"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	Days      int       `gorm:"type:int;not null"`
	// DayPolicy records which counting strategy produced Days so the
	// balance math downstream stays consistent.
	DayPolicy string `gorm:"type:varchar(20);not null;default:'business'"`

	Reason      string `gorm:"type:text"`
	SickNoteRef string `gorm:"type:text"`

	Status string `gorm:"type:varchar(30);not null;index:idx_leave_requests_status"`

	SubmittedBy string    `gorm:"type:varchar(160);not null"`
	SubmittedAt time.Time `gorm:"not null"`

	AssignedTo      string `gorm:"type:varchar(120)"`
	AssignedToEmail string `gorm:"type:varchar(160)"`

	// Balance snapshot captured for audit, refreshed at CSP review.
	BalanceAnnual     int  `gorm:"type:int;not null;default:0"`
	BalanceUsed       int  `gorm:"type:int;not null;default:0"`
	BalanceRemaining  int  `gorm:"type:int;not null;default:0"`
	BalanceSufficient bool `gorm:"not null;default:true"`

	CSPApprovedBy    *string `gorm:"type:varchar(160)"`
	CSPApprovedAt    *time.Time
	CSPRejectedBy    *string `gorm:"type:varchar(160)"`
	CSPRejectedAt    *time.Time
	ClientApprovedBy *string `gorm:"type:varchar(160)"`
	ClientApprovedAt *time.Time
	ClientRejectedBy *string `gorm:"type:varchar(160)"`
	ClientRejectedAt *time.Time
	// How the client responded out of band: email, call, meeting.
	ClientApprovalMethod string `gorm:"type:varchar(40)"`
	SentToPayrollAt      *time.Time

	// Version serializes concurrent commands against the same request.
	Version int `gorm:"type:int;not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string {
	return "leave_requests"
}
