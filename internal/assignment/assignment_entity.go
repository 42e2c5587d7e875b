package assignment

import (
	"time"

	"github.com/google/uuid"
)

// AssignmentRecord maps a team member to the CSP responsible for their
// leave requests. Reference data, read-only to the engine.
type AssignmentRecord struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TeamMemberName  string    `gorm:"type:varchar(120);not null;index:idx_assignments_member_name"`
	TeamMemberEmail string    `gorm:"type:varchar(160);not null;index:idx_assignments_member_email"`
	CSPName         string    `gorm:"type:varchar(120);not null"`
	CSPEmail        string    `gorm:"type:varchar(160);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (AssignmentRecord) TableName() string {
	return "csp_assignments"
}

type AssignmentResponse struct {
	ID              string `json:"id"`
	TeamMemberName  string `json:"team_member_name"`
	TeamMemberEmail string `json:"team_member_email"`
	CSPName         string `json:"csp_name"`
	CSPEmail        string `json:"csp_email"`
}

func mapToResponse(a AssignmentRecord) AssignmentResponse {
	return AssignmentResponse{
		ID:              a.ID.String(),
		TeamMemberName:  a.TeamMemberName,
		TeamMemberEmail: a.TeamMemberEmail,
		CSPName:         a.CSPName,
		CSPEmail:        a.CSPEmail,
	}
}

func mapToListResponse(records []AssignmentRecord) []AssignmentResponse {
	resp := make([]AssignmentResponse, len(records))
	for i, a := range records {
		resp[i] = mapToResponse(a)
	}
	return resp
}
