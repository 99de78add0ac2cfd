package models

import (
	"time"

	"github.com/google/uuid"
)

// PostLike records one user liking one post.
type PostLike struct {
	PostID    uuid.UUID `gorm:"column:post_id;type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
