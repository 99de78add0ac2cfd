package auth

import (
	"github.com/inkbound/inkbound-backend/internal/users"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// RegisterRequest contains the payload for creating an account. Role-specific
// fields are validated against the requested role.
type RegisterRequest struct {
	Username string         `json:"username" validate:"required,min=3,max=30"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=8"`
	Role     enums.UserRole `json:"role" validate:"required"`

	// Artist-only.
	Styles             []string `json:"styles,omitempty"`
	YearsExperience    *int     `json:"years_experience,omitempty"`
	PortfolioURL       *string  `json:"portfolio_url,omitempty"`
	AvailableForGuests *bool    `json:"available_for_guests,omitempty"`

	// Shop-only.
	ShopName   *string           `json:"shop_name,omitempty"`
	Address    *string           `json:"address,omitempty"`
	Website    *string           `json:"website,omitempty"`
	PriceRange *enums.PriceRange `json:"price_range,omitempty"`
}

// LoginRequest accepts an email or a username as the identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// RefreshRequest carries the tokens needed for rotation.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse is returned on register, login and refresh.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}
