package leaverequest

import (
	"testing"

	"leaveflow/internal/audit"
	leaverequesterrors "leaveflow/internal/leaverequest/errors"

	"github.com/stretchr/testify/assert"
)

func TestFindTransition_LegalMoves(t *testing.T) {
	cases := []struct {
		from    Status
		command Command
		to      Status
	}{
		{StatusNone, CommandSubmit, StatusCSPReview},
		{StatusCSPReview, CommandCSPApprove, StatusPendingClientApproval},
		{StatusCSPReview, CommandCSPReject, StatusRejected},
		{StatusPendingClientApproval, CommandMarkClientApproved, StatusClientApproved},
		{StatusPendingClientApproval, CommandMarkClientRejected, StatusDenied},
		{StatusClientApproved, CommandSendToPayroll, StatusSentToPayroll},
		{StatusSentToPayroll, CommandPayrollAck, StatusApproved},
	}

	for _, tc := range cases {
		tr, ok := findTransition(tc.from, tc.command)
		assert.True(t, ok, "expected transition for %s + %s", tc.from, tc.command)
		assert.Equal(t, tc.to, tr.to)
		assert.NotEmpty(t, tr.auditAction)
		assert.NotEmpty(t, tr.eventType)
	}
}

func TestFindTransition_IllegalMoves(t *testing.T) {
	cases := []struct {
		from    Status
		command Command
	}{
		{StatusPendingClientApproval, CommandSendToPayroll},
		{StatusCSPReview, CommandMarkClientApproved},
		{StatusCSPReview, CommandSendToPayroll},
		{StatusRejected, CommandCSPApprove},
		{StatusDenied, CommandMarkClientApproved},
		{StatusApproved, CommandSendToPayroll},
		{StatusSentToPayroll, CommandSendToPayroll},
		{StatusClientApproved, CommandCSPApprove},
	}

	for _, tc := range cases {
		_, ok := findTransition(tc.from, tc.command)
		assert.False(t, ok, "expected no transition for %s + %s", tc.from, tc.command)
	}
}

func TestFindTransition_NoBackwardMoves(t *testing.T) {
	// Every row must move strictly forward; no target ever equals or
	// precedes its source in the pipeline.
	for _, tr := range transitionTable {
		assert.NotEqual(t, tr.from, tr.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusApproved.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.True(t, StatusDenied.Terminal())
	assert.False(t, StatusCSPReview.Terminal())
	assert.False(t, StatusPendingClientApproval.Terminal())
	assert.False(t, StatusClientApproved.Terminal())
	assert.False(t, StatusSentToPayroll.Terminal())
}

func TestCommandRequiresNote(t *testing.T) {
	assert.True(t, commandRequiresNote(CommandCSPReject))
	assert.True(t, commandRequiresNote(CommandMarkClientApproved))
	assert.True(t, commandRequiresNote(CommandMarkClientRejected))
	assert.False(t, commandRequiresNote(CommandSubmit))
	assert.False(t, commandRequiresNote(CommandCSPApprove))
	assert.False(t, commandRequiresNote(CommandSendToPayroll))
}

func entries(actions ...string) []audit.AuditEntry {
	out := make([]audit.AuditEntry, len(actions))
	for i, a := range actions {
		out[i] = audit.AuditEntry{Action: a}
	}
	return out
}

func TestReplayStatus(t *testing.T) {
	t.Run("full happy path", func(t *testing.T) {
		status, err := ReplayStatus(entries("submitted", "csp-approved", "client-approved", "sent-to-payroll", "completed"))
		assert.NoError(t, err)
		assert.Equal(t, StatusApproved, status)
	})

	t.Run("rejection path", func(t *testing.T) {
		status, err := ReplayStatus(entries("submitted", "csp-rejected"))
		assert.NoError(t, err)
		assert.Equal(t, StatusRejected, status)
	})

	t.Run("denial path", func(t *testing.T) {
		status, err := ReplayStatus(entries("submitted", "csp-approved", "client-rejected"))
		assert.NoError(t, err)
		assert.Equal(t, StatusDenied, status)
	})

	t.Run("partial history", func(t *testing.T) {
		status, err := ReplayStatus(entries("submitted", "csp-approved"))
		assert.NoError(t, err)
		assert.Equal(t, StatusPendingClientApproval, status)
	})

	t.Run("empty history is corrupt", func(t *testing.T) {
		_, err := ReplayStatus(nil)
		assert.ErrorIs(t, err, leaverequesterrors.ErrCorruptHistory)
	})

	t.Run("out-of-order history is corrupt", func(t *testing.T) {
		_, err := ReplayStatus(entries("csp-approved", "submitted"))
		assert.ErrorIs(t, err, leaverequesterrors.ErrCorruptHistory)
	})

	t.Run("unknown action is corrupt", func(t *testing.T) {
		_, err := ReplayStatus(entries("submitted", "escalated"))
		assert.ErrorIs(t, err, leaverequesterrors.ErrCorruptHistory)
	})
}
