package models

import (
	"time"

	"github.com/google/uuid"
)

// Affiliation is the active artist/shop link. The unique index on
// artist_id enforces that an artist belongs to at most one shop; racing
// accepts serialize on it.
type Affiliation struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ArtistID  uuid.UUID `gorm:"column:artist_id;type:uuid;not null;uniqueIndex"`
	ShopID    uuid.UUID `gorm:"column:shop_id;type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
