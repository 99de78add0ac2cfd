package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/pkg/enums"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
	"github.com/inkbound/inkbound-backend/pkg/outbox/payloads"
)

func marshalPayload(t *testing.T, payload any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return data
}

func TestBuildPostEventRowPostCreated(t *testing.T) {
	postID := uuid.New()
	authorID := uuid.New()
	occurred := time.Now().UTC()
	envelope := outbox.PayloadEnvelope{
		EventID:    uuid.NewString(),
		OccurredAt: occurred,
		Actor:      &outbox.ActorRef{UserID: authorID, Role: "artist"},
		Data: marshalPayload(t, payloads.PostCreatedEvent{
			PostID:   postID,
			AuthorID: authorID,
			Styles:   []string{"traditional", "blackwork"},
			Tags:     []string{"flash"},
		}),
	}

	row, err := buildPostEventRow(enums.OutboxEventPostCreated, envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row == nil {
		t.Fatal("expected a row")
	}
	if row.EventType != "post.created" || row.PostID != postID.String() {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.AuthorID != authorID.String() || row.ActorRole != "artist" {
		t.Fatalf("unexpected author fields %+v", row)
	}
	if len(row.Styles) != 2 || row.Styles[0] != "traditional" {
		t.Fatalf("unexpected styles %v", row.Styles)
	}
	if !row.OccurredAt.Equal(occurred) {
		t.Fatalf("unexpected occurred at %v", row.OccurredAt)
	}
}

func TestBuildPostEventRowPostLiked(t *testing.T) {
	postID := uuid.New()
	authorID := uuid.New()
	likerID := uuid.New()
	envelope := outbox.PayloadEnvelope{
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Actor:      &outbox.ActorRef{UserID: likerID, Role: "enthusiast"},
		Data: marshalPayload(t, payloads.PostLikedEvent{
			PostID:       postID,
			PostAuthorID: authorID,
			LikerID:      likerID,
		}),
	}

	row, err := buildPostEventRow(enums.OutboxEventPostLiked, envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.EventType != "post.liked" || row.AuthorID != authorID.String() {
		t.Fatalf("unexpected row %+v", row)
	}
	if row.ActorID != likerID.String() {
		t.Fatalf("unexpected actor %+v", row)
	}
	if len(row.Styles) != 0 {
		t.Fatalf("expected no styles on like rows, got %v", row.Styles)
	}
}

func TestBuildPostEventRowSkipsNonPostEvents(t *testing.T) {
	envelope := outbox.PayloadEnvelope{
		EventID: uuid.NewString(),
		Data:    marshalPayload(t, payloads.UserFollowedEvent{FollowerID: uuid.New(), FolloweeID: uuid.New()}),
	}

	row, err := buildPostEventRow(enums.OutboxEventUserFollowed, envelope)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row != nil {
		t.Fatalf("expected no row for follow events, got %+v", row)
	}
}

func TestBuildPostEventRowRejectsGarbage(t *testing.T) {
	envelope := outbox.PayloadEnvelope{
		EventID: uuid.NewString(),
		Data:    json.RawMessage(`{"post_id":`),
	}
	if _, err := buildPostEventRow(enums.OutboxEventPostCreated, envelope); err == nil {
		t.Fatal("expected error for malformed payload")
	}

	envelope.Data = marshalPayload(t, payloads.PostCreatedEvent{AuthorID: uuid.New()})
	if _, err := buildPostEventRow(enums.OutboxEventPostCreated, envelope); err == nil {
		t.Fatal("expected error for missing post id")
	}
}
