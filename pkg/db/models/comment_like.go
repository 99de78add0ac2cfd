package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentLike records one user liking one comment.
type CommentLike struct {
	CommentID uuid.UUID `gorm:"column:comment_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
