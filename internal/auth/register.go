package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/internal/users"
	"github.com/inkbound/inkbound-backend/pkg/config"
	"github.com/inkbound/inkbound-backend/pkg/db"
	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/security"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// RegisterService handles the onboarding transaction and signs the new user in.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type registerUserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	TxRunner        txRunner
	UserRepoFactory func(tx *gorm.DB) registerUserRepository
	SessionManager  sessionManager
	PasswordConfig  config.PasswordConfig
	JWTConfig       config.JWTConfig
}

type registerService struct {
	tx          txRunner
	userRepo    func(tx *gorm.DB) registerUserRepository
	session     sessionManager
	passwordCfg config.PasswordConfig
	jwtCfg      config.JWTConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.TxRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.SessionManager == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	userRepo := params.UserRepoFactory
	if userRepo == nil {
		userRepo = func(tx *gorm.DB) registerUserRepository {
			return users.NewRepository(tx)
		}
	}
	return &registerService{
		tx:          params.TxRunner,
		userRepo:    userRepo,
		session:     params.SessionManager,
		passwordCfg: params.PasswordConfig,
		jwtCfg:      params.JWTConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !usernamePattern.MatchString(username) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username may only contain letters, digits and underscores")
	}
	if !req.Role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if err := validateRoleFields(req); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var user *models.User
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.userRepo(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}
		if _, err := repo.FindByUsername(ctx, username); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check username")
		}

		created, err := repo.Create(ctx, users.CreateUserDTO{
			Username:     username,
			Email:        email,
			PasswordHash: passwordHash,
			Role:         req.Role,

			Styles:             req.Styles,
			YearsExperience:    req.YearsExperience,
			PortfolioURL:       req.PortfolioURL,
			AvailableForGuests: req.AvailableForGuests,

			ShopName:   req.ShopName,
			Address:    req.Address,
			Website:    req.Website,
			PriceRange: req.PriceRange,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email or username already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}
		user = created
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return issueTokens(ctx, s.session, s.jwtCfg, time.Now().UTC(), user)
}

func validateRoleFields(req RegisterRequest) error {
	hasArtistFields := len(req.Styles) > 0 || req.YearsExperience != nil ||
		req.PortfolioURL != nil || req.AvailableForGuests != nil
	hasShopFields := req.ShopName != nil || req.Address != nil ||
		req.Website != nil || req.PriceRange != nil

	switch req.Role {
	case enums.UserRoleArtist:
		if hasShopFields {
			return pkgerrors.New(pkgerrors.CodeValidation, "shop fields require the shop role")
		}
		if req.YearsExperience != nil && *req.YearsExperience < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "years of experience cannot be negative")
		}
	case enums.UserRoleShop:
		if hasArtistFields {
			return pkgerrors.New(pkgerrors.CodeValidation, "artist fields require the artist role")
		}
		if req.ShopName == nil || strings.TrimSpace(*req.ShopName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "shop name is required")
		}
		if req.PriceRange != nil && !req.PriceRange.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid price range")
		}
	default:
		if hasArtistFields || hasShopFields {
			return pkgerrors.New(pkgerrors.CodeValidation, "role specific fields require an artist or shop role")
		}
	}
	return nil
}
