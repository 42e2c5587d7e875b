package leaverequest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"leaveflow/internal/assignment"
	"leaveflow/internal/audit"
	"leaveflow/internal/balance"
	"leaveflow/internal/events"
	leaverequesterrors "leaveflow/internal/leaverequest/errors"
	"leaveflow/internal/messaging/kafka"
	"leaveflow/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	warnInsufficientBalance = "remaining PTO balance does not cover the requested days"
	warnNoBalanceOnFile     = "no PTO balance on file for team member"
	warnNoAssignment        = "no CSP assignment found for team member"
	warnMissingSickNote     = "sick leave has no sick note reference attached"
)

// AssigneeResolver is the slice of the assignment resolver the engine
// needs. Satisfied by *assignment.Resolver.
type AssigneeResolver interface {
	ResolveAssignee(ctx context.Context, memberName, memberEmail string) (*assignment.AssignmentRecord, error)
	IsAuthorized(ctx context.Context, actor contextutil.Actor, assignedName, assignedEmail, memberName, memberEmail string) (bool, error)
}

type Service interface {
	Submit(ctx context.Context, actor contextutil.Actor, req SubmitLeaveRequest) (LeaveRequestResponse, error)
	CSPReview(ctx context.Context, actor contextutil.Actor, id string, req CSPReviewRequest) (LeaveRequestResponse, error)
	MarkClientResponse(ctx context.Context, actor contextutil.Actor, id string, req ClientResponseRequest) (LeaveRequestResponse, error)
	SendToPayroll(ctx context.Context, actor contextutil.Actor, id string, req SendToPayrollRequest) (LeaveRequestResponse, error)
	PayrollAck(ctx context.Context, id string) (LeaveRequestResponse, error)
	GetByID(ctx context.Context, id string) (LeaveRequestResponse, error)
	GetAll(ctx context.Context, status string) ([]LeaveRequestResponse, error)
	GetHistory(ctx context.Context, id string) ([]audit.AuditEntryResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	auditRepo   audit.Repository
	balanceRepo balance.Repository
	resolver    AssigneeResolver
	outbox      kafka.OutboxRepository
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	auditRepo audit.Repository,
	balanceRepo balance.Repository,
	resolver AssigneeResolver,
	outbox kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leaverequest.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leaverequest.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		auditRepo:   auditRepo,
		balanceRepo: balanceRepo,
		resolver:    resolver,
		outbox:      outbox,
		logger:      l,
	}
}

// log returns the request-scoped logger when middleware attached one.
func (s *service) log(ctx context.Context) *zap.Logger {
	return contextutil.GetLogger(ctx, s.logger)
}

func (s *service) Submit(ctx context.Context, actor contextutil.Actor, req SubmitLeaveRequest) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := s.log(ctx)
	log.Debug("submit leave request",
		zap.String("team_member", req.TeamMemberName),
		zap.String("leave_type", req.LeaveType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	startDate, endDate, policy, days, err := validateSubmit(req)
	if err != nil {
		log.Warn("submit validation failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	var warnings []string

	record, err := s.resolver.ResolveAssignee(ctx, req.TeamMemberName, req.TeamMemberEmail)
	if err != nil {
		log.Error("submit assignee resolution failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	assignedTo, assignedToEmail := "", ""
	if record != nil {
		assignedTo = record.CSPName
		assignedToEmail = record.CSPEmail
	} else {
		warnings = append(warnings, warnNoAssignment)
	}

	// Advisory only: insufficiency is flagged for the reviewer, never a
	// submission gate.
	snapshot, check, balWarnings, err := s.lookupBalance(ctx, req.TeamMemberName, req.TeamMemberEmail, days)
	if err != nil {
		log.Error("submit balance lookup failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	warnings = append(warnings, balWarnings...)

	now := time.Now().UTC()
	l := &LeaveRequest{
		ID:                uuid.New(),
		TeamMemberName:    req.TeamMemberName,
		TeamMemberEmail:   req.TeamMemberEmail,
		LeaveType:         req.LeaveType,
		StartDate:         startDate,
		EndDate:           endDate,
		Days:              days,
		DayPolicy:         string(policy),
		Reason:            req.Reason,
		SickNoteRef:       req.SickNoteRef,
		Status:            string(StatusCSPReview),
		SubmittedBy:       actorIdentity(actor),
		SubmittedAt:       now,
		AssignedTo:        assignedTo,
		AssignedToEmail:   assignedToEmail,
		BalanceAnnual:     snapshot.AnnualPTO,
		BalanceUsed:       snapshot.UsedPTO,
		BalanceRemaining:  snapshot.RemainingPTO,
		BalanceSufficient: check.Sufficient,
		Version:           1,
	}

	t, _ := findTransition(StatusNone, CommandSubmit)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("submit begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, l); err != nil {
		log.Error("submit persist failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	if err := s.appendAudit(ctx, tx, l.ID, t.auditAction, actorIdentity(actor), req.Reason, now); err != nil {
		return LeaveRequestResponse{}, err
	}
	if err := s.queueEvent(ctx, tx, l, t.eventType, actorIdentity(actor), "", rid, now); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("submit commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	log.Info("leave request submitted",
		zap.String("leave_request_id", l.ID.String()),
		zap.String("assigned_to", l.AssignedTo),
		zap.Bool("balance_sufficient", l.BalanceSufficient),
	)

	return mapToResponse(*l, warnings...), nil
}

func (s *service) CSPReview(ctx context.Context, actor contextutil.Actor, id string, req CSPReviewRequest) (LeaveRequestResponse, error) {
	command := CommandCSPReject
	if req.Approved != nil && *req.Approved {
		command = CommandCSPApprove
	}
	return s.applyTransition(ctx, actor, id, command, transitionInput{
		note:            req.Note,
		observedVersion: req.Version,
	})
}

func (s *service) MarkClientResponse(ctx context.Context, actor contextutil.Actor, id string, req ClientResponseRequest) (LeaveRequestResponse, error) {
	command := CommandMarkClientRejected
	if req.Approved != nil && *req.Approved {
		command = CommandMarkClientApproved
		if req.ClientName == "" {
			return LeaveRequestResponse{}, leaverequesterrors.ErrClientNameRequired
		}
	}
	return s.applyTransition(ctx, actor, id, command, transitionInput{
		note:            req.Note,
		clientName:      req.ClientName,
		approvalMethod:  req.ApprovalMethod,
		observedVersion: req.Version,
	})
}

func (s *service) SendToPayroll(ctx context.Context, actor contextutil.Actor, id string, req SendToPayrollRequest) (LeaveRequestResponse, error) {
	return s.applyTransition(ctx, actor, id, CommandSendToPayroll, transitionInput{
		observedVersion: req.Version,
	})
}

func (s *service) PayrollAck(ctx context.Context, id string) (LeaveRequestResponse, error) {
	return s.applyTransition(ctx, contextutil.Actor{Name: "payroll-system"}, id, CommandPayrollAck, transitionInput{
		skipVersionCheck: true,
	})
}

// transitionInput carries the per-command payload. Notes and client
// names are command arguments, not state the engine owns.
type transitionInput struct {
	note             string
	clientName       string
	approvalMethod   string
	observedVersion  int
	skipVersionCheck bool
}

// applyTransition runs one state-machine command end to end: lookup,
// guard checks, field mutation, versioned persist, audit append and
// event emission, all inside a single transaction.
func (s *service) applyTransition(ctx context.Context, actor contextutil.Actor, id string, command Command, in transitionInput) (LeaveRequestResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	log := s.log(ctx)
	log.Debug("apply transition",
		zap.String("leave_request_id", id),
		zap.String("command", string(command)),
		zap.String("actor", actorIdentity(actor)),
	)

	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}

	// A rejection or denial without a note fails regardless of the
	// request's state or the actor issuing it.
	if commandRequiresNote(command) && in.note == "" {
		return LeaveRequestResponse{}, leaverequesterrors.ErrMissingJustification
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}

	// Retried payroll hand-off is a no-op for the assigned CSP: the days
	// were consumed when the request first reached sent-to-payroll. The
	// replay carries request state, so it sits behind the same guard as
	// the original hand-off.
	if command == CommandSendToPayroll && Status(l.Status) == StatusSentToPayroll {
		if err := s.authorizeAssignedCSP(ctx, actor, l, command); err != nil {
			return LeaveRequestResponse{}, err
		}
		log.Info("send-to-payroll retry ignored",
			zap.String("leave_request_id", id),
		)
		return mapToResponse(*l), nil
	}

	t, ok := findTransition(Status(l.Status), command)
	if !ok {
		log.Warn("invalid transition",
			zap.String("leave_request_id", id),
			zap.String("from_status", l.Status),
			zap.String("command", string(command)),
		)
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidTransition
	}

	// Authorization goes before the version check: an actor who matches
	// none of the identity rules always gets NotAuthorized, never a hint
	// about the request's current version.
	if t.requiresAssignedCSP {
		if err := s.authorizeAssignedCSP(ctx, actor, l, command); err != nil {
			return LeaveRequestResponse{}, err
		}
	}

	if !in.skipVersionCheck && in.observedVersion != l.Version {
		return LeaveRequestResponse{}, leaverequesterrors.ErrConcurrentModification
	}

	var warnings []string

	if command == CommandCSPApprove && l.LeaveType == LeaveTypeSick && l.SickNoteRef == "" {
		log.Warn("sick leave forwarded without sick note",
			zap.String("leave_request_id", id),
		)
		warnings = append(warnings, warnMissingSickNote)
	}

	now := time.Now().UTC()
	actorID := actorIdentity(actor)
	expectedVersion := l.Version

	s.mutateForTransition(ctx, l, command, in, actorID, now)
	l.Status = string(t.to)
	l.Version = expectedVersion + 1

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("transition begin tx failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	updated, err := qtx.UpdateVersioned(ctx, l, expectedVersion)
	if err != nil {
		log.Error("transition persist failed",
			zap.String("leave_request_id", id),
			zap.Error(err),
		)
		return LeaveRequestResponse{}, err
	}
	if !updated {
		return LeaveRequestResponse{}, leaverequesterrors.ErrConcurrentModification
	}

	if command == CommandSendToPayroll {
		// The single point where PTO is consumed.
		if err := s.balanceRepo.WithTx(tx).ConsumeDays(ctx, l.TeamMemberEmail, l.Days); err != nil {
			log.Error("payroll balance consume failed",
				zap.String("leave_request_id", id),
				zap.Error(err),
			)
			return LeaveRequestResponse{}, err
		}
	}

	if err := s.appendAudit(ctx, tx, l.ID, t.auditAction, actorID, in.note, now); err != nil {
		return LeaveRequestResponse{}, err
	}
	if err := s.queueEvent(ctx, tx, l, t.eventType, actorID, in.note, rid, now); err != nil {
		return LeaveRequestResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("transition commit failed", zap.Error(err))
		return LeaveRequestResponse{}, err
	}

	log.Info("transition applied",
		zap.String("leave_request_id", id),
		zap.String("command", string(command)),
		zap.String("status", l.Status),
	)

	return mapToResponse(*l, warnings...), nil
}

// authorizeAssignedCSP verifies the actor matches the request's assigned
// CSP, re-resolving the assignment when submission left it unset.
func (s *service) authorizeAssignedCSP(ctx context.Context, actor contextutil.Actor, l *LeaveRequest, command Command) error {
	if l.AssignedTo == "" && l.AssignedToEmail == "" {
		record, err := s.resolver.ResolveAssignee(ctx, l.TeamMemberName, l.TeamMemberEmail)
		if err != nil {
			return err
		}
		if record != nil {
			l.AssignedTo = record.CSPName
			l.AssignedToEmail = record.CSPEmail
		}
	}

	authorized, err := s.resolver.IsAuthorized(ctx, actor, l.AssignedTo, l.AssignedToEmail, l.TeamMemberName, l.TeamMemberEmail)
	if err != nil {
		return err
	}
	if !authorized {
		s.log(ctx).Warn("actor not authorized for transition",
			zap.String("leave_request_id", l.ID.String()),
			zap.String("command", string(command)),
			zap.String("actor", actorIdentity(actor)),
		)
		return leaverequesterrors.ErrNotAuthorized
	}
	return nil
}

func (s *service) mutateForTransition(ctx context.Context, l *LeaveRequest, command Command, in transitionInput, actorID string, now time.Time) {
	switch command {
	case CommandCSPApprove:
		l.CSPApprovedBy = &actorID
		l.CSPApprovedAt = &now
		s.refreshSnapshot(ctx, l)
	case CommandCSPReject:
		l.CSPRejectedBy = &actorID
		l.CSPRejectedAt = &now
		s.refreshSnapshot(ctx, l)
	case CommandMarkClientApproved:
		clientName := in.clientName
		l.ClientApprovedBy = &clientName
		l.ClientApprovedAt = &now
		l.ClientApprovalMethod = in.approvalMethod
	case CommandMarkClientRejected:
		rejectedBy := in.clientName
		if rejectedBy == "" {
			rejectedBy = actorID
		}
		l.ClientRejectedBy = &rejectedBy
		l.ClientRejectedAt = &now
		l.ClientApprovalMethod = in.approvalMethod
	case CommandSendToPayroll:
		l.SentToPayrollAt = &now
		l.BalanceUsed += l.Days
		l.BalanceRemaining = l.BalanceAnnual - l.BalanceUsed
		if l.BalanceRemaining < 0 {
			l.BalanceRemaining = 0
		}
	}
}

// refreshSnapshot re-captures the balance at review time so the stored
// figures reflect what the reviewer saw. Best effort: a missing balance
// row leaves the submission-time snapshot in place.
func (s *service) refreshSnapshot(ctx context.Context, l *LeaveRequest) {
	b, err := s.balanceRepo.FindByMember(ctx, l.TeamMemberName, l.TeamMemberEmail)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log(ctx).Warn("balance snapshot refresh failed",
				zap.String("leave_request_id", l.ID.String()),
				zap.Error(err),
			)
		}
		return
	}
	snapshot := b.Snapshot()
	l.BalanceAnnual = snapshot.AnnualPTO
	l.BalanceUsed = snapshot.UsedPTO
	l.BalanceRemaining = snapshot.RemainingPTO
	l.BalanceSufficient = balance.CheckBalance(snapshot, l.Days).Sufficient
}

func (s *service) GetByID(ctx context.Context, id string) (LeaveRequestResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return LeaveRequestResponse{}, leaverequesterrors.ErrInvalidRequestID
	}
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveRequestResponse{}, leaverequesterrors.ErrRequestNotFound
		}
		return LeaveRequestResponse{}, err
	}
	return mapToResponse(*l), nil
}

func (s *service) GetAll(ctx context.Context, status string) ([]LeaveRequestResponse, error) {
	requests, err := s.repo.FindAll(ctx, status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetHistory(ctx context.Context, id string) ([]audit.AuditEntryResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, leaverequesterrors.ErrInvalidRequestID
	}
	entries, err := s.auditRepo.History(ctx, id)
	if err != nil {
		return nil, err
	}
	return audit.MapToListResponse(entries), nil
}

func (s *service) appendAudit(ctx context.Context, tx *sql.Tx, requestID uuid.UUID, action, actorID, note string, now time.Time) error {
	err := s.auditRepo.WithTx(tx).Append(ctx, &audit.AuditEntry{
		RequestID: requestID,
		Action:    action,
		Actor:     actorID,
		Note:      note,
		Timestamp: now,
	})
	if err != nil {
		s.log(ctx).Error("audit append failed",
			zap.String("leave_request_id", requestID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) queueEvent(ctx context.Context, tx *sql.Tx, l *LeaveRequest, eventType, actorID, note, rid string, now time.Time) error {
	if s.outbox == nil {
		return nil
	}

	event := events.LeaveLifecycleEvent{
		EventType:       eventType,
		RequestID:       l.ID.String(),
		TeamMemberName:  l.TeamMemberName,
		TeamMemberEmail: l.TeamMemberEmail,
		LeaveType:       l.LeaveType,
		Status:          l.Status,
		Actor:           actorID,
		Note:            note,
		OccurredAt:      now,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     rid,
		AggregateType: "leave-request",
		AggregateID:   l.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
	if err != nil {
		s.log(ctx).Error("outbox persist failed",
			zap.String("leave_request_id", l.ID.String()),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) lookupBalance(ctx context.Context, name, email string, days int) (balance.PTOBalance, balance.BalanceCheck, []string, error) {
	b, err := s.balanceRepo.FindByMember(ctx, name, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			empty := balance.PTOBalance{}
			return empty, balance.BalanceCheck{Sufficient: false, Balance: empty}, []string{warnNoBalanceOnFile}, nil
		}
		return balance.PTOBalance{}, balance.BalanceCheck{}, nil, err
	}

	snapshot := b.Snapshot()
	check := balance.CheckBalance(snapshot, days)

	var warnings []string
	if !check.Sufficient {
		warnings = append(warnings, warnInsufficientBalance)
	}
	return snapshot, check, warnings, nil
}

func validateSubmit(req SubmitLeaveRequest) (time.Time, time.Time, balance.DayPolicy, int, error) {
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, "", 0, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, "", 0, err
	}
	if startDate.After(endDate) {
		return time.Time{}, time.Time{}, "", 0, leaverequesterrors.ErrInvalidDateRange
	}

	policy, err := balance.ParseDayPolicy(req.DayPolicy)
	if err != nil {
		return time.Time{}, time.Time{}, "", 0, err
	}

	days, err := balance.ComputeDays(startDate, endDate, policy)
	if err != nil {
		return time.Time{}, time.Time{}, "", 0, err
	}

	return startDate, endDate, policy, days, nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, leaverequesterrors.ErrInvalidDateFormat
	}
	return t, nil
}

func actorIdentity(actor contextutil.Actor) string {
	if actor.Email != "" {
		return actor.Email
	}
	return actor.Name
}
