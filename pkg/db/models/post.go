package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Post is an image post authored by any user role.
type Post struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID     uuid.UUID      `gorm:"column:author_id;type:uuid;not null;index"`
	ImageURL     string         `gorm:"column:image_url;not null"`
	Caption      *string        `gorm:"column:caption"`
	Styles       pq.StringArray `gorm:"column:styles;type:text[]"`
	Tags         pq.StringArray `gorm:"column:tags;type:text[]"`
	LikeCount    int            `gorm:"column:like_count;not null;default:0"`
	CommentCount int            `gorm:"column:comment_count;not null;default:0"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
