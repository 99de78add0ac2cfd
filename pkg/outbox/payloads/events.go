package payloads

import (
	"time"

	"github.com/google/uuid"
)

// UserFollowedEvent is emitted when one user starts following another.
type UserFollowedEvent struct {
	FollowerID       uuid.UUID `json:"follower_id"`
	FollowerUsername string    `json:"follower_username"`
	FolloweeID       uuid.UUID `json:"followee_id"`
}

// PostCreatedEvent is emitted when a new post is published.
type PostCreatedEvent struct {
	PostID     uuid.UUID `json:"post_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Styles     []string  `json:"styles"`
	Tags       []string  `json:"tags"`
	CreatedAt  time.Time `json:"created_at"`
}

// PostLikedEvent is emitted when a post gains a like.
type PostLikedEvent struct {
	PostID        uuid.UUID `json:"post_id"`
	PostAuthorID  uuid.UUID `json:"post_author_id"`
	LikerID       uuid.UUID `json:"liker_id"`
	LikerUsername string    `json:"liker_username"`
}

// PostCommentedEvent is emitted when a comment lands on a post.
type PostCommentedEvent struct {
	PostID            uuid.UUID `json:"post_id"`
	PostAuthorID      uuid.UUID `json:"post_author_id"`
	CommentID         uuid.UUID `json:"comment_id"`
	CommenterID       uuid.UUID `json:"commenter_id"`
	CommenterUsername string    `json:"commenter_username"`
}

// AffiliationRequestedEvent is emitted when an artist or shop opens a request.
type AffiliationRequestedEvent struct {
	RequestID    uuid.UUID `json:"request_id"`
	FromUserID   uuid.UUID `json:"from_user_id"`
	FromUsername string    `json:"from_username"`
	ToUserID     uuid.UUID `json:"to_user_id"`
	ArtistID     uuid.UUID `json:"artist_id"`
	ShopID       uuid.UUID `json:"shop_id"`
}

// AffiliationAcceptedEvent is emitted when both sides are linked.
type AffiliationAcceptedEvent struct {
	AffiliationID    uuid.UUID `json:"affiliation_id"`
	ArtistID         uuid.UUID `json:"artist_id"`
	ShopID           uuid.UUID `json:"shop_id"`
	AcceptedByUserID uuid.UUID `json:"accepted_by_user_id"`
	AcceptedAt       time.Time `json:"accepted_at"`
}
