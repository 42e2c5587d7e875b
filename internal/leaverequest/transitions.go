package leaverequest

import (
	"leaveflow/internal/audit"
	"leaveflow/internal/events"
	leaverequesterrors "leaveflow/internal/leaverequest/errors"
)

type Status string

const (
	// StatusNone is the pseudo-state before submission.
	StatusNone                  Status = ""
	StatusCSPReview             Status = "csp-review"
	StatusPendingClientApproval Status = "pending-client-approval"
	StatusClientApproved        Status = "client-approved"
	StatusSentToPayroll         Status = "sent-to-payroll"
	StatusApproved              Status = "approved"
	StatusRejected              Status = "rejected"
	StatusDenied                Status = "denied"
)

// Terminal reports whether no further engine-driven transition exists.
func (s Status) Terminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusDenied:
		return true
	}
	return false
}

type Command string

const (
	CommandSubmit             Command = "submit"
	CommandCSPApprove         Command = "csp-approve"
	CommandCSPReject          Command = "csp-reject"
	CommandMarkClientApproved Command = "mark-client-approved"
	CommandMarkClientRejected Command = "mark-client-rejected"
	CommandSendToPayroll      Command = "send-to-payroll"
	CommandPayrollAck         Command = "payroll-ack"
)

// transition is one row of the state machine: (from, command) decides
// the target status, the guards to enforce, the audit action recorded
// and the event emitted. Transitions are one-directional; there is no
// row leading backwards.
type transition struct {
	from    Status
	command Command
	to      Status

	requiresAssignedCSP bool
	requiresNote        bool

	auditAction string
	eventType   string
}

var transitionTable = []transition{
	{
		from:        StatusNone,
		command:     CommandSubmit,
		to:          StatusCSPReview,
		auditAction: "submitted",
		eventType:   events.TypeRequestSubmitted,
	},
	{
		from:                StatusCSPReview,
		command:             CommandCSPApprove,
		to:                  StatusPendingClientApproval,
		requiresAssignedCSP: true,
		auditAction:         "csp-approved",
		eventType:           events.TypeRequestForwardedToClient,
	},
	{
		from:                StatusCSPReview,
		command:             CommandCSPReject,
		to:                  StatusRejected,
		requiresAssignedCSP: true,
		requiresNote:        true,
		auditAction:         "csp-rejected",
		eventType:           events.TypeRequestRejected,
	},
	{
		from:                StatusPendingClientApproval,
		command:             CommandMarkClientApproved,
		to:                  StatusClientApproved,
		requiresAssignedCSP: true,
		requiresNote:        true,
		auditAction:         "client-approved",
		eventType:           events.TypeRequestClientApproved,
	},
	{
		from:                StatusPendingClientApproval,
		command:             CommandMarkClientRejected,
		to:                  StatusDenied,
		requiresAssignedCSP: true,
		requiresNote:        true,
		auditAction:         "client-rejected",
		eventType:           events.TypeRequestClientDenied,
	},
	{
		from:                StatusClientApproved,
		command:             CommandSendToPayroll,
		to:                  StatusSentToPayroll,
		requiresAssignedCSP: true,
		auditAction:         "sent-to-payroll",
		eventType:           events.TypeRequestSentToPayroll,
	},
	{
		from:        StatusSentToPayroll,
		command:     CommandPayrollAck,
		to:          StatusApproved,
		auditAction: "completed",
		eventType:   events.TypeRequestCompleted,
	},
}

// commandRequiresNote reports whether any table row for the command
// demands a justification note.
func commandRequiresNote(command Command) bool {
	for _, t := range transitionTable {
		if t.command == command && t.requiresNote {
			return true
		}
	}
	return false
}

// findTransition looks up the table row for (from, command).
func findTransition(from Status, command Command) (transition, bool) {
	for _, t := range transitionTable {
		if t.from == from && t.command == command {
			return t, true
		}
	}
	return transition{}, false
}

// ReplayStatus walks a request's audit history in order and reproduces
// the status it should currently hold. The history is the source of
// truth; a mismatch against the stored status means corruption.
func ReplayStatus(entries []audit.AuditEntry) (Status, error) {
	current := StatusNone
	for _, e := range entries {
		next, ok := applyAction(current, e.Action)
		if !ok {
			return StatusNone, leaverequesterrors.ErrCorruptHistory
		}
		current = next
	}
	if current == StatusNone {
		return StatusNone, leaverequesterrors.ErrCorruptHistory
	}
	return current, nil
}

func applyAction(from Status, auditAction string) (Status, bool) {
	for _, t := range transitionTable {
		if t.from == from && t.auditAction == auditAction {
			return t.to, true
		}
	}
	return StatusNone, false
}
