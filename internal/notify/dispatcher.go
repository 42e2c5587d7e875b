package notify

import (
	"context"
	"time"

	"leaveflow/internal/events"

	"go.uber.org/zap"
)

// Dispatcher delivers lifecycle events to downstream channels (Slack,
// email, sheet sync). Delivery failures are the dispatcher's problem;
// the engine has already committed the transition.
type Dispatcher interface {
	Dispatch(ctx context.Context, event events.LeaveLifecycleEvent) error
}

// ZapDispatcher writes each event to the process log. The default sink
// when no real channel is configured.
type ZapDispatcher struct {
	logger *zap.Logger
}

func NewZapDispatcher(logger ...*zap.Logger) *ZapDispatcher {
	l := zap.L().Named("notify.dispatcher")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notify.dispatcher")
	}
	return &ZapDispatcher{logger: l}
}

func (d *ZapDispatcher) Dispatch(ctx context.Context, event events.LeaveLifecycleEvent) error {
	d.logger.Info("lifecycle notification",
		zap.String("event_type", event.EventType),
		zap.String("request_id", event.RequestID),
		zap.String("team_member", event.TeamMemberName),
		zap.String("status", event.Status),
		zap.String("actor", event.Actor),
		zap.String("occurred_at", event.OccurredAt.UTC().Format(time.RFC3339)),
	)
	return nil
}
