package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Username    string         `json:"username"`
	Email       string         `json:"email"`
	Role        enums.UserRole `json:"role"`
	Bio         *string        `json:"bio,omitempty"`
	AvatarURL   *string        `json:"avatar_url,omitempty"`
	Location    *string        `json:"location,omitempty"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`

	Styles             []string `json:"styles,omitempty"`
	YearsExperience    *int     `json:"years_experience,omitempty"`
	PortfolioURL       *string  `json:"portfolio_url,omitempty"`
	AvailableForGuests *bool    `json:"available_for_guests,omitempty"`

	ShopName   *string           `json:"shop_name,omitempty"`
	Address    *string           `json:"address,omitempty"`
	Website    *string           `json:"website,omitempty"`
	PriceRange *enums.PriceRange `json:"price_range,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileDTO is a user plus the counts rendered on profile pages.
type ProfileDTO struct {
	UserDTO
	FollowerCount  int64 `json:"follower_count"`
	FollowingCount int64 `json:"following_count"`
	PostCount      int64 `json:"post_count"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username     string
	Email        string
	PasswordHash string
	Role         enums.UserRole

	Styles             []string
	YearsExperience    *int
	PortfolioURL       *string
	AvailableForGuests *bool

	ShopName   *string
	Address    *string
	Website    *string
	PriceRange *enums.PriceRange
}

// UpdateProfileDTO captures the mutable profile fields. Nil pointers leave the
// column untouched.
type UpdateProfileDTO struct {
	Bio       *string
	AvatarURL *string
	Location  *string

	Styles             *[]string
	YearsExperience    *int
	PortfolioURL       *string
	AvailableForGuests *bool

	ShopName   *string
	Address    *string
	Website    *string
	PriceRange *enums.PriceRange
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		Location:    u.Location,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,

		Styles:             append([]string(nil), u.Styles...),
		YearsExperience:    u.YearsExperience,
		PortfolioURL:       u.PortfolioURL,
		AvailableForGuests: u.AvailableForGuests,

		ShopName:   u.ShopName,
		Address:    u.Address,
		Website:    u.Website,
		PriceRange: u.PriceRange,

		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	styles := c.Styles
	if styles == nil {
		styles = []string{}
	} else {
		styles = append([]string(nil), styles...)
	}

	return &models.User{
		ID:           uuid.New(),
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Role:         c.Role,
		IsActive:     true,

		Styles:             pq.StringArray(styles),
		YearsExperience:    c.YearsExperience,
		PortfolioURL:       c.PortfolioURL,
		AvailableForGuests: c.AvailableForGuests,

		ShopName:   c.ShopName,
		Address:    c.Address,
		Website:    c.Website,
		PriceRange: c.PriceRange,
	}
}
