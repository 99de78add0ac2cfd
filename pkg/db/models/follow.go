package models

import (
	"time"

	"github.com/google/uuid"
)

// Follow is a directed edge from one user to another.
type Follow struct {
	FollowerID uuid.UUID `gorm:"column:follower_id;type:uuid;primaryKey"`
	FolloweeID uuid.UUID `gorm:"column:followee_id;type:uuid;primaryKey"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
