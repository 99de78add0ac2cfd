package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	"github.com/inkbound/inkbound-backend/pkg/logger"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
	"github.com/inkbound/inkbound-backend/pkg/outbox/idempotency"
	"github.com/inkbound/inkbound-backend/pkg/outbox/payloads"
)

const socialNotificationConsumer = "social-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and turns them into per-user notifications.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a social notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, socialNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notifications, err := buildNotifications(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to translate event", err)
		_ = c.idempotency.Delete(ctx, socialNotificationConsumer, eventID)
		return processResult{ack: true}
	}

	for _, notification := range notifications {
		if err := c.repo.Create(ctx, notification); err != nil {
			c.logg.Error(logCtx, "failed to persist notification", err)
			_ = c.idempotency.Delete(ctx, socialNotificationConsumer, eventID)
			return processResult{nack: true}
		}
	}

	if len(notifications) > 0 {
		c.logg.Info(logCtx, "notifications recorded")
	}
	return processResult{ack: true}
}

// buildNotifications translates a domain event into the notification rows it
// should produce. Self-targeted events produce nothing.
func buildNotifications(eventType enums.OutboxEventType, data json.RawMessage) ([]*models.Notification, error) {
	switch eventType {
	case enums.OutboxEventUserFollowed:
		var payload payloads.UserFollowedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.FolloweeID == uuid.Nil {
			return nil, fmt.Errorf("followee id missing")
		}
		return []*models.Notification{{
			UserID:      payload.FolloweeID,
			Type:        enums.NotificationTypeFollow,
			Title:       "New follower",
			Message:     fmt.Sprintf("%s started following you.", payload.FollowerUsername),
			ActorUserID: &payload.FollowerID,
			Link:        stringPtr(fmt.Sprintf("/users/%s", payload.FollowerUsername)),
		}}, nil

	case enums.OutboxEventPostLiked:
		var payload payloads.PostLikedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.PostAuthorID == uuid.Nil {
			return nil, fmt.Errorf("post author id missing")
		}
		if payload.LikerID == payload.PostAuthorID {
			return nil, nil
		}
		return []*models.Notification{{
			UserID:      payload.PostAuthorID,
			Type:        enums.NotificationTypePostLiked,
			Title:       "Post liked",
			Message:     fmt.Sprintf("%s liked your post.", payload.LikerUsername),
			ActorUserID: &payload.LikerID,
			Link:        stringPtr(fmt.Sprintf("/posts/%s", payload.PostID)),
		}}, nil

	case enums.OutboxEventPostCommented:
		var payload payloads.PostCommentedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.PostAuthorID == uuid.Nil {
			return nil, fmt.Errorf("post author id missing")
		}
		if payload.CommenterID == payload.PostAuthorID {
			return nil, nil
		}
		return []*models.Notification{{
			UserID:      payload.PostAuthorID,
			Type:        enums.NotificationTypePostCommented,
			Title:       "New comment",
			Message:     fmt.Sprintf("%s commented on your post.", payload.CommenterUsername),
			ActorUserID: &payload.CommenterID,
			Link:        stringPtr(fmt.Sprintf("/posts/%s", payload.PostID)),
		}}, nil

	case enums.OutboxEventAffiliationRequested:
		var payload payloads.AffiliationRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.ToUserID == uuid.Nil {
			return nil, fmt.Errorf("request recipient missing")
		}
		return []*models.Notification{{
			UserID:      payload.ToUserID,
			Type:        enums.NotificationTypeAffiliationRequested,
			Title:       "Affiliation request",
			Message:     fmt.Sprintf("%s wants to affiliate with you.", payload.FromUsername),
			ActorUserID: &payload.FromUserID,
			Link:        stringPtr("/affiliations/requests"),
		}}, nil

	case enums.OutboxEventAffiliationAccepted:
		var payload payloads.AffiliationAcceptedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		if payload.ArtistID == uuid.Nil || payload.ShopID == uuid.Nil {
			return nil, fmt.Errorf("affiliation parties missing")
		}
		// Only the party that did not press accept needs to hear about it.
		recipient := payload.ArtistID
		if payload.AcceptedByUserID == payload.ArtistID {
			recipient = payload.ShopID
		}
		return []*models.Notification{{
			UserID:      recipient,
			Type:        enums.NotificationTypeAffiliationAccepted,
			Title:       "Affiliation accepted",
			Message:     "Your affiliation request was accepted.",
			ActorUserID: &payload.AcceptedByUserID,
			Link:        stringPtr("/affiliations"),
		}}, nil

	default:
		return nil, nil
	}
}

func stringPtr(value string) *string {
	return &value
}
