package consumer

import (
	"context"
	"encoding/json"

	"leaveflow/internal/events"
	"leaveflow/internal/notify"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeLeaveLifecycle reads lifecycle events off the topic and hands
// them to the dispatcher. Messages with undecodable payloads are
// committed and skipped; dispatch failures leave the message
// uncommitted so it is retried.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader *kafkago.Reader,
	dispatcher notify.Dispatcher,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		var event events.LeaveLifecycleEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode leave lifecycle event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := dispatcher.Dispatch(ctx, event); err != nil {
			log.Error("dispatch leave lifecycle event failed",
				zap.String("event_type", event.EventType),
				zap.String("request_id", event.RequestID),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit leave lifecycle message failed", zap.Error(err))
			continue
		}

		log.Info("leave lifecycle event dispatched",
			zap.String("event_type", event.EventType),
			zap.String("request_id", event.RequestID),
		)
	}
}
