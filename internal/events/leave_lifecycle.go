package events

import "time"

const LeaveLifecycleTopic = "leave.request.lifecycle.v1"

const (
	TypeRequestSubmitted         = "request.submitted"
	TypeRequestForwardedToClient = "request.forwarded-to-client"
	TypeRequestRejected          = "request.rejected"
	TypeRequestClientApproved    = "request.client-approved"
	TypeRequestClientDenied      = "request.client-denied"
	TypeRequestSentToPayroll     = "request.sent-to-payroll"
	TypeRequestCompleted         = "request.completed"
)

// LeaveLifecycleEvent is emitted once per transition. Delivery is
// fire-and-forget from the engine's perspective: downstream failures
// never roll a transition back.
type LeaveLifecycleEvent struct {
	EventType       string    `json:"event_type"`
	RequestID       string    `json:"request_id"`
	TeamMemberName  string    `json:"team_member_name"`
	TeamMemberEmail string    `json:"team_member_email"`
	LeaveType       string    `json:"leave_type"`
	Status          string    `json:"status"`
	Actor           string    `json:"actor"`
	Note            string    `json:"note,omitempty"`
	OccurredAt      time.Time `json:"occurred_at"`
}
