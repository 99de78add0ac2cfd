package worker

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/internal/analytics/types"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	"github.com/inkbound/inkbound-backend/pkg/logger"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
	"github.com/inkbound/inkbound-backend/pkg/outbox/payloads"
)

const analyticsConsumerName = "analytics"

type rowWriter interface {
	Insert(ctx context.Context, row types.PostEventRow) error
}

type idempotencyChecker interface {
	CheckAndMarkProcessed(ctx context.Context, consumer string, eventID uuid.UUID) (bool, error)
	Delete(ctx context.Context, consumer string, eventID uuid.UUID) error
}

// Service streams post domain events into the BigQuery post_events table.
type Service struct {
	subscription *pubsub.Subscriber
	writer       rowWriter
	idempotency  idempotencyChecker
	logg         *logger.Logger
}

// NewService builds the analytics ingest worker.
func NewService(subscription *pubsub.Subscriber, writer rowWriter, manager idempotencyChecker, logg *logger.Logger) (*Service, error) {
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if writer == nil {
		return nil, fmt.Errorf("row writer required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{
		subscription: subscription,
		writer:       writer,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (s *Service) Run(ctx context.Context) error {
	return s.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if s.process(ctx, msg) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// process returns true when the message should be acked.
func (s *Service) process(ctx context.Context, msg *pubsub.Message) bool {
	rawType := msg.Attributes["event_type"]
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		s.logg.Info(logCtx, "skipping unknown event type")
		return true
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		s.logg.Error(logCtx, "failed to decode envelope", err)
		return true
	}

	row, err := buildPostEventRow(eventType, envelope)
	if err != nil {
		s.logg.Error(logCtx, "failed to translate event", err)
		return true
	}
	if row == nil {
		return true
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		s.logg.Error(logCtx, "invalid event id", err)
		return true
	}

	already, err := s.idempotency.CheckAndMarkProcessed(ctx, analyticsConsumerName, eventID)
	if err != nil {
		s.logg.Error(logCtx, "idempotency check failed", err)
		return false
	}
	if already {
		s.logg.Info(logCtx, "event already processed")
		return true
	}

	if err := s.writer.Insert(ctx, *row); err != nil {
		s.logg.Error(logCtx, "failed to insert post event row", err)
		_ = s.idempotency.Delete(ctx, analyticsConsumerName, eventID)
		return false
	}
	return true
}

// buildPostEventRow maps a domain event onto the post_events row shape. Events
// that are not about posts produce no row.
func buildPostEventRow(eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) (*types.PostEventRow, error) {
	row := types.PostEventRow{
		EventID:    envelope.EventID,
		EventType:  eventType.String(),
		OccurredAt: envelope.OccurredAt,
	}
	if envelope.Actor != nil {
		row.ActorID = envelope.Actor.UserID.String()
		row.ActorRole = envelope.Actor.Role
	}

	switch eventType {
	case enums.OutboxEventPostCreated:
		var payload payloads.PostCreatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, err
		}
		if payload.PostID == uuid.Nil {
			return nil, fmt.Errorf("post id missing")
		}
		row.PostID = payload.PostID.String()
		row.AuthorID = payload.AuthorID.String()
		row.Styles = payload.Styles
		row.Tags = payload.Tags
		return &row, nil

	case enums.OutboxEventPostLiked:
		var payload payloads.PostLikedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, err
		}
		if payload.PostID == uuid.Nil {
			return nil, fmt.Errorf("post id missing")
		}
		row.PostID = payload.PostID.String()
		row.AuthorID = payload.PostAuthorID.String()
		return &row, nil

	case enums.OutboxEventPostCommented:
		var payload payloads.PostCommentedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return nil, err
		}
		if payload.PostID == uuid.Nil {
			return nil, fmt.Errorf("post id missing")
		}
		row.PostID = payload.PostID.String()
		row.AuthorID = payload.PostAuthorID.String()
		return &row, nil

	default:
		return nil, nil
	}
}
