package kafka

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func validEvent() OutboxEvent {
	return OutboxEvent{
		ID:            "ev-1",
		RequestID:     "rid-1",
		AggregateType: "leave-request",
		AggregateID:   "agg-1",
		EventType:     "request.submitted",
		Topic:         "leave.request.lifecycle.v1",
		Payload:       []byte(`{}`),
		Status:        OutboxStatusPending,
	}
}

func TestValidateOutboxEvent(t *testing.T) {
	assert.NoError(t, ValidateOutboxEvent(validEvent()))

	e := validEvent()
	e.ID = ""
	assert.Error(t, ValidateOutboxEvent(e))

	e = validEvent()
	e.Topic = ""
	assert.Error(t, ValidateOutboxEvent(e))

	e = validEvent()
	e.Payload = nil
	assert.Error(t, ValidateOutboxEvent(e))

	e = validEvent()
	e.Status = "archived"
	assert.Error(t, ValidateOutboxEvent(e))
}

func TestOutboxRepository_Create(t *testing.T) {
	t.Run("stages inside the transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		mock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		mock.ExpectExec("INSERT INTO outbox_events").
			WillReturnResult(sqlmock.NewResult(1, 1))

		repo := NewOutboxRepository(db).WithTx(tx)
		assert.NoError(t, repo.Create(context.Background(), validEvent()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects malformed events before touching the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		assert.NoError(t, err)
		t.Cleanup(func() { db.Close() })

		e := validEvent()
		e.Payload = nil
		assert.Error(t, NewOutboxRepository(db).Create(context.Background(), e))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOutboxRepository_ListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rows := sqlmock.NewRows([]string{
		"id", "request_id", "aggregate_type", "aggregate_id",
		"event_type", "topic", "payload", "status", "retry_count",
	}).AddRow(
		"ev-1", "rid-1", "leave-request", "agg-1",
		"request.submitted", "leave.request.lifecycle.v1", []byte(`{}`), OutboxStatusPending, 0,
	)

	mock.ExpectQuery(`retry_count < \$3`).
		WithArgs(OutboxStatusPending, OutboxStatusFailed, maxPublishAttempts, 10).
		WillReturnRows(rows)

	events, err := NewOutboxRepository(db).ListPending(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, "ev-1", events[0].ID)
	assert.Equal(t, "rid-1", events[0].RequestID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
