package affiliations

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// Status labels the relationship between a viewer and a target account.
type Status string

const (
	StatusAffiliated      Status = "affiliated"
	StatusPendingSent     Status = "pending_sent"
	StatusPendingReceived Status = "pending_received"
	StatusNone            Status = "none"
)

// PartyDTO is the display identity of one endpoint of a request.
type PartyDTO struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Role      enums.UserRole `json:"role"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
	ShopName  *string        `json:"shop_name,omitempty"`
}

// RequestDTO is a pending affiliation request with both parties resolved.
type RequestDTO struct {
	ID        uuid.UUID `json:"id"`
	From      PartyDTO  `json:"from"`
	To        PartyDTO  `json:"to"`
	ArtistID  uuid.UUID `json:"artist_id"`
	ShopID    uuid.UUID `json:"shop_id"`
	CreatedAt time.Time `json:"created_at"`
}

// AffiliationDTO identifies a linked artist/shop pair.
type AffiliationDTO struct {
	ID        uuid.UUID `json:"id"`
	ArtistID  uuid.UUID `json:"artist_id"`
	ShopID    uuid.UUID `json:"shop_id"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusDTO is the result of a status query between two accounts.
type StatusDTO struct {
	Status    Status     `json:"status"`
	RequestID *uuid.UUID `json:"request_id,omitempty"`
}

func partyFromModel(u *models.User) PartyDTO {
	if u == nil {
		return PartyDTO{}
	}
	return PartyDTO{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
		ShopName:  u.ShopName,
	}
}

func affiliationFromModel(a *models.Affiliation) *AffiliationDTO {
	if a == nil {
		return nil
	}
	return &AffiliationDTO{
		ID:        a.ID,
		ArtistID:  a.ArtistID,
		ShopID:    a.ShopID,
		CreatedAt: a.CreatedAt,
	}
}
