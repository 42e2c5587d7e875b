package assignment

import (
	"context"
	"strings"

	"leaveflow/internal/shared/contextutil"

	"go.uber.org/zap"
)

// Resolver answers two questions: which CSP is responsible for a team
// member, and whether an actor is allowed to act on a request assigned
// to a given CSP. Matching is intentionally domain-agnostic: the same
// person may appear as csp@zimworx.com in one system and
// csp@zimworx.org in another.
type Resolver struct {
	repo   Repository
	logger *zap.Logger
}

func NewResolver(repo Repository, logger ...*zap.Logger) *Resolver {
	l := zap.L().Named("assignment.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.resolver")
	}
	return &Resolver{repo: repo, logger: l}
}

// ResolveAssignee finds the assignment record for a team member, or nil
// when the table has no match.
func (r *Resolver) ResolveAssignee(ctx context.Context, memberName, memberEmail string) (*AssignmentRecord, error) {
	records, err := r.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for i := range records {
		if identityMatches(memberName, memberEmail, records[i].TeamMemberName, records[i].TeamMemberEmail) {
			return &records[i], nil
		}
	}

	r.logger.Debug("no assignment record for team member",
		zap.String("team_member", memberName),
	)
	return nil, nil
}

// IsAuthorized reports whether the actor may act on a request assigned
// to (assignedName, assignedEmail) for the given team member. Rules run
// in priority order; the first match wins:
//
//  1. exact email match (case-insensitive)
//  2. email local-part match, tolerating domain differences
//  3. exact or bidirectional-substring name match (case-insensitive)
//  4. assignment-table cross-reference for the team member, compared by
//     the same local-part rule
func (r *Resolver) IsAuthorized(ctx context.Context, actor contextutil.Actor, assignedName, assignedEmail, memberName, memberEmail string) (bool, error) {
	if emailsMatch(actor.Email, assignedEmail) {
		return true, nil
	}
	if localPartsMatch(actor.Email, assignedEmail) {
		return true, nil
	}
	if namesMatch(actor.Name, assignedName) {
		return true, nil
	}

	record, err := r.ResolveAssignee(ctx, memberName, memberEmail)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	if emailsMatch(actor.Email, record.CSPEmail) || localPartsMatch(actor.Email, record.CSPEmail) {
		return true, nil
	}

	return false, nil
}

func identityMatches(name, email, otherName, otherEmail string) bool {
	return emailsMatch(email, otherEmail) ||
		localPartsMatch(email, otherEmail) ||
		namesMatch(name, otherName)
}

func emailsMatch(a, b string) bool {
	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))
	return a != "" && a == b
}

// localPartsMatch compares the part before '@', so csp@zimworx.com and
// csp@zimworx.org count as the same logical person.
func localPartsMatch(a, b string) bool {
	la := localPart(a)
	lb := localPart(b)
	return la != "" && la == lb
}

func localPart(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	at := strings.Index(email, "@")
	if at <= 0 {
		return ""
	}
	return email[:at]
}

// namesMatch tolerates "Jane Doe" vs "Jane" by checking containment in
// both directions.
func namesMatch(a, b string) bool {
	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}
