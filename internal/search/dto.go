package search

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// ArtistParams filters the artist search.
type ArtistParams struct {
	Query     string
	Location  string
	Styles    []string
	GuestOnly bool
	Limit     int
}

// ShopParams filters the shop search.
type ShopParams struct {
	Query       string
	Location    string
	PriceRanges []enums.PriceRange
	Limit       int
}

// PostParams filters the post search.
type PostParams struct {
	Styles       []string
	Tags         []string
	ArtistQuery  string
	ArtistStyles []string
	Limit        int
}

// ArtistResultDTO is an artist search hit with engagement counts attached.
type ArtistResultDTO struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	Bio                *string   `json:"bio,omitempty"`
	AvatarURL          *string   `json:"avatar_url,omitempty"`
	Location           *string   `json:"location,omitempty"`
	Styles             []string  `json:"styles,omitempty"`
	YearsExperience    *int      `json:"years_experience,omitempty"`
	AvailableForGuests *bool     `json:"available_for_guests,omitempty"`
	FollowerCount      int64     `json:"follower_count"`
	PostCount          int64     `json:"post_count"`
}

// ShopResultDTO is a shop search hit.
type ShopResultDTO struct {
	ID         uuid.UUID         `json:"id"`
	Username   string            `json:"username"`
	ShopName   *string           `json:"shop_name,omitempty"`
	AvatarURL  *string           `json:"avatar_url,omitempty"`
	Location   *string           `json:"location,omitempty"`
	Address    *string           `json:"address,omitempty"`
	Website    *string           `json:"website,omitempty"`
	PriceRange *enums.PriceRange `json:"price_range,omitempty"`
	RosterSize int64             `json:"roster_size"`
}

// PostResultDTO is a post search hit with its author resolved.
type PostResultDTO struct {
	ID             uuid.UUID `json:"id"`
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	ImageURL       string    `json:"image_url"`
	Caption        *string   `json:"caption,omitempty"`
	Styles         []string  `json:"styles,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	LikeCount      int       `json:"like_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func artistResultFromModel(u *models.User, followers, posts int64) ArtistResultDTO {
	return ArtistResultDTO{
		ID:                 u.ID,
		Username:           u.Username,
		Bio:                u.Bio,
		AvatarURL:          u.AvatarURL,
		Location:           u.Location,
		Styles:             u.Styles,
		YearsExperience:    u.YearsExperience,
		AvailableForGuests: u.AvailableForGuests,
		FollowerCount:      followers,
		PostCount:          posts,
	}
}

func shopResultFromModel(u *models.User, roster int64) ShopResultDTO {
	return ShopResultDTO{
		ID:         u.ID,
		Username:   u.Username,
		ShopName:   u.ShopName,
		AvatarURL:  u.AvatarURL,
		Location:   u.Location,
		Address:    u.Address,
		Website:    u.Website,
		PriceRange: u.PriceRange,
		RosterSize: roster,
	}
}

func postResultFromModel(p *models.Post, author *models.User) PostResultDTO {
	out := PostResultDTO{
		ID:        p.ID,
		AuthorID:  p.AuthorID,
		ImageURL:  p.ImageURL,
		Caption:   p.Caption,
		Styles:    p.Styles,
		Tags:      p.Tags,
		LikeCount: p.LikeCount,
		CreatedAt: p.CreatedAt,
	}
	if author != nil {
		out.AuthorUsername = author.Username
	}
	return out
}
