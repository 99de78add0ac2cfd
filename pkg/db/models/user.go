package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// User represents the canonical identity entity. Artist and shop specific
// columns are nullable and only populated for the matching role.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Username     string         `gorm:"column:username;not null;uniqueIndex"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:user_role;not null"`
	Bio          *string        `gorm:"column:bio"`
	AvatarURL    *string        `gorm:"column:avatar_url"`
	Location     *string        `gorm:"column:location"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`

	// Artist-only fields.
	Styles             pq.StringArray `gorm:"column:styles;type:text[]"`
	YearsExperience    *int           `gorm:"column:years_experience"`
	PortfolioURL       *string        `gorm:"column:portfolio_url"`
	AvailableForGuests *bool          `gorm:"column:available_for_guests"`

	// Shop-only fields.
	ShopName   *string           `gorm:"column:shop_name"`
	Address    *string           `gorm:"column:address"`
	Website    *string           `gorm:"column:website"`
	PriceRange *enums.PriceRange `gorm:"column:price_range;type:price_range"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
