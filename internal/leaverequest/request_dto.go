package leaverequest

import (
	"time"

	"leaveflow/internal/balance"
)

type SubmitLeaveRequest struct {
	TeamMemberName  string `json:"team_member_name" binding:"required"`
	TeamMemberEmail string `json:"team_member_email" binding:"required,email"`
	LeaveType       string `json:"leave_type" binding:"required"`
	StartDate       string `json:"start_date" binding:"required"`
	EndDate         string `json:"end_date" binding:"required"`
	DayPolicy       string `json:"day_policy" binding:"omitempty,oneof=calendar business"`
	Reason          string `json:"reason"`
	SickNoteRef     string `json:"sick_note_ref"`
}

type CSPReviewRequest struct {
	Approved *bool  `json:"approved" binding:"required"`
	Note     string `json:"note"`
	Version  int    `json:"version" binding:"required,min=1"`
}

type ClientResponseRequest struct {
	Approved       *bool  `json:"approved" binding:"required"`
	ClientName     string `json:"client_name"`
	ApprovalMethod string `json:"approval_method" binding:"omitempty,oneof=email call meeting"`
	Note           string `json:"note"`
	Version        int    `json:"version" binding:"required,min=1"`
}

type SendToPayrollRequest struct {
	Version int `json:"version" binding:"required,min=1"`
}

type LeaveRequestResponse struct {
	ID              string `json:"id"`
	TeamMemberName  string `json:"team_member_name"`
	TeamMemberEmail string `json:"team_member_email"`
	LeaveType       string `json:"leave_type"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	Days            int    `json:"days"`
	DayPolicy       string `json:"day_policy"`
	Reason          string `json:"reason,omitempty"`
	SickNoteRef     string `json:"sick_note_ref,omitempty"`
	Status          string `json:"status"`
	SubmittedBy     string `json:"submitted_by"`
	SubmittedAt     string `json:"submitted_at"`
	AssignedTo      string `json:"assigned_to,omitempty"`
	AssignedToEmail string `json:"assigned_to_email,omitempty"`

	Balance           balance.PTOBalance `json:"balance"`
	BalanceSufficient bool               `json:"balance_sufficient"`

	CSPApprovedBy        *string `json:"csp_approved_by,omitempty"`
	CSPApprovedAt        *string `json:"csp_approved_at,omitempty"`
	CSPRejectedBy        *string `json:"csp_rejected_by,omitempty"`
	CSPRejectedAt        *string `json:"csp_rejected_at,omitempty"`
	ClientApprovedBy     *string `json:"client_approved_by,omitempty"`
	ClientApprovedAt     *string `json:"client_approved_at,omitempty"`
	ClientRejectedBy     *string `json:"client_rejected_by,omitempty"`
	ClientRejectedAt     *string `json:"client_rejected_at,omitempty"`
	ClientApprovalMethod string  `json:"client_approval_method,omitempty"`
	SentToPayrollAt      *string `json:"sent_to_payroll_at,omitempty"`

	Version int `json:"version"`

	// Warnings are advisory only (insufficient balance, missing sick
	// note); they never block a transition.
	Warnings []string `json:"warnings,omitempty"`
}

func mapToResponse(l LeaveRequest, warnings ...string) LeaveRequestResponse {
	resp := LeaveRequestResponse{
		ID:              l.ID.String(),
		TeamMemberName:  l.TeamMemberName,
		TeamMemberEmail: l.TeamMemberEmail,
		LeaveType:       l.LeaveType,
		StartDate:       l.StartDate.Format("2006-01-02"),
		EndDate:         l.EndDate.Format("2006-01-02"),
		Days:            l.Days,
		DayPolicy:       l.DayPolicy,
		Reason:          l.Reason,
		SickNoteRef:     l.SickNoteRef,
		Status:          l.Status,
		SubmittedBy:     l.SubmittedBy,
		SubmittedAt:     l.SubmittedAt.UTC().Format(time.RFC3339),
		AssignedTo:      l.AssignedTo,
		AssignedToEmail: l.AssignedToEmail,
		Balance: balance.PTOBalance{
			AnnualPTO:    l.BalanceAnnual,
			UsedPTO:      l.BalanceUsed,
			RemainingPTO: l.BalanceRemaining,
		},
		BalanceSufficient:    l.BalanceSufficient,
		CSPApprovedBy:        l.CSPApprovedBy,
		CSPApprovedAt:        formatTimePtr(l.CSPApprovedAt),
		CSPRejectedBy:        l.CSPRejectedBy,
		CSPRejectedAt:        formatTimePtr(l.CSPRejectedAt),
		ClientApprovedBy:     l.ClientApprovedBy,
		ClientApprovedAt:     formatTimePtr(l.ClientApprovedAt),
		ClientRejectedBy:     l.ClientRejectedBy,
		ClientRejectedAt:     formatTimePtr(l.ClientRejectedAt),
		ClientApprovalMethod: l.ClientApprovalMethod,
		SentToPayrollAt:      formatTimePtr(l.SentToPayrollAt),
		Version:              l.Version,
		Warnings:             warnings,
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveRequestResponse {
	resp := make([]LeaveRequestResponse, len(requests))
	for i, l := range requests {
		resp[i] = mapToResponse(l)
	}
	return resp
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.UTC().Format(time.RFC3339)
	return &v
}
