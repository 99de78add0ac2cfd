package models

import (
	"time"

	"github.com/google/uuid"
)

// AffiliationRequest is a pending invitation between an artist and a shop.
// FromUserID is the initiator; uniqueness is on the role-resolved
// (artist_id, shop_id) pair so the same two accounts cannot hold two
// pending requests regardless of who asked first.
type AffiliationRequest struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	FromUserID uuid.UUID `gorm:"column:from_user_id;type:uuid;not null;index:idx_affiliation_requests_from"`
	ToUserID   uuid.UUID `gorm:"column:to_user_id;type:uuid;not null;index:idx_affiliation_requests_to"`
	ArtistID   uuid.UUID `gorm:"column:artist_id;type:uuid;not null;uniqueIndex:idx_affiliation_requests_pair"`
	ShopID     uuid.UUID `gorm:"column:shop_id;type:uuid;not null;uniqueIndex:idx_affiliation_requests_pair"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
