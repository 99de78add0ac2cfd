package enums

import "fmt"

// OutboxEventType labels the domain events emitted through the outbox.
type OutboxEventType string

const (
	OutboxEventUserFollowed         OutboxEventType = "user.followed"
	OutboxEventPostCreated          OutboxEventType = "post.created"
	OutboxEventPostLiked            OutboxEventType = "post.liked"
	OutboxEventPostCommented        OutboxEventType = "post.commented"
	OutboxEventAffiliationRequested OutboxEventType = "affiliation.requested"
	OutboxEventAffiliationAccepted  OutboxEventType = "affiliation.accepted"
)

var validOutboxEventTypes = []OutboxEventType{
	OutboxEventUserFollowed,
	OutboxEventPostCreated,
	OutboxEventPostLiked,
	OutboxEventPostCommented,
	OutboxEventAffiliationRequested,
	OutboxEventAffiliationAccepted,
}

// String implements fmt.Stringer.
func (o OutboxEventType) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into an OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateUser        OutboxAggregateType = "user"
	AggregatePost        OutboxAggregateType = "post"
	AggregateAffiliation OutboxAggregateType = "affiliation"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateUser,
	AggregatePost,
	AggregateAffiliation,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}
