package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
	"github.com/inkbound/inkbound-backend/pkg/outbox/payloads"
	"github.com/inkbound/inkbound-backend/pkg/pagination"
)

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error)
	CreateFollowTx(tx *gorm.DB, followerID, followeeID uuid.UUID) error
	DeleteFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error)
	CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error)
	CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error)
	CountPosts(ctx context.Context, userID uuid.UUID) (int64, error)
	ListFollowers(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.User, []time.Time, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.User, []time.Time, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes profile and follow-graph operations.
type Service interface {
	GetProfile(ctx context.Context, idOrUsername string) (*ProfileDTO, error)
	UpdateProfile(ctx context.Context, actorID uuid.UUID, input UpdateProfileDTO) (*UserDTO, error)
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowers(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]UserDTO, string, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]UserDTO, string, error)
}

type service struct {
	repo   usersRepository
	tx     txRunner
	outbox outboxEmitter
}

// NewService builds the users service with the provided dependencies.
func NewService(repo usersRepository, tx txRunner, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, outbox: emitter}, nil
}

func (s *service) GetProfile(ctx context.Context, idOrUsername string) (*ProfileDTO, error) {
	trimmed := strings.TrimSpace(idOrUsername)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identifier required")
	}

	var user *models.User
	var err error
	if id, parseErr := uuid.Parse(trimmed); parseErr == nil {
		user, err = s.repo.FindByID(ctx, id)
	} else {
		user, err = s.repo.FindByUsername(ctx, trimmed)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	followers, err := s.repo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting followers")
	}
	following, err := s.repo.CountFollowing(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting following")
	}
	posts, err := s.repo.CountPosts(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting posts")
	}

	return &ProfileDTO{
		UserDTO:        *FromModel(user),
		FollowerCount:  followers,
		FollowingCount: following,
		PostCount:      posts,
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, actorID uuid.UUID, input UpdateProfileDTO) (*UserDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	actor, err := s.repo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	updates := map[string]any{}
	if input.Bio != nil {
		updates["bio"] = *input.Bio
	}
	if input.AvatarURL != nil {
		updates["avatar_url"] = *input.AvatarURL
	}
	if input.Location != nil {
		updates["location"] = *input.Location
	}

	if err := applyRoleFields(actor.Role, input, updates); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProfile(ctx, actorID, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile")
	}
	return FromModel(updated), nil
}

func applyRoleFields(role enums.UserRole, input UpdateProfileDTO, updates map[string]any) error {
	artistFields := input.Styles != nil || input.YearsExperience != nil ||
		input.PortfolioURL != nil || input.AvailableForGuests != nil
	shopFields := input.ShopName != nil || input.Address != nil ||
		input.Website != nil || input.PriceRange != nil

	if artistFields && role != enums.UserRoleArtist {
		return pkgerrors.New(pkgerrors.CodeValidation, "artist fields are only valid for artist accounts")
	}
	if shopFields && role != enums.UserRoleShop {
		return pkgerrors.New(pkgerrors.CodeValidation, "shop fields are only valid for shop accounts")
	}

	if input.Styles != nil {
		updates["styles"] = normalizeStyles(*input.Styles)
	}
	if input.YearsExperience != nil {
		if *input.YearsExperience < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "years of experience cannot be negative")
		}
		updates["years_experience"] = *input.YearsExperience
	}
	if input.PortfolioURL != nil {
		updates["portfolio_url"] = *input.PortfolioURL
	}
	if input.AvailableForGuests != nil {
		updates["available_for_guests"] = *input.AvailableForGuests
	}
	if input.ShopName != nil {
		if strings.TrimSpace(*input.ShopName) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "shop name cannot be empty")
		}
		updates["shop_name"] = *input.ShopName
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Website != nil {
		updates["website"] = *input.Website
	}
	if input.PriceRange != nil {
		if !input.PriceRange.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "invalid price range")
		}
		updates["price_range"] = *input.PriceRange
	}
	return nil
}

// normalizeStyles lowercases and de-duplicates style tags.
func normalizeStyles(styles []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(styles))
	for _, style := range styles {
		cleaned := strings.ToLower(strings.TrimSpace(style))
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
	}
	return out
}

func (s *service) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if followerID == followeeID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot follow yourself")
	}

	follower, err := s.repo.FindByID(ctx, followerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading follower")
	}
	if _, err := s.repo.FindByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading followee")
	}

	already, err := s.repo.IsFollowing(ctx, followerID, followeeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking follow state")
	}
	if already {
		return pkgerrors.New(pkgerrors.CodeValidation, "already following this user")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateFollowTx(tx, followerID, followeeID); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventUserFollowed,
			AggregateType: enums.AggregateUser,
			AggregateID:   followeeID,
			Actor:         &outbox.ActorRef{UserID: followerID, Role: follower.Role.String()},
			Version:       1,
			Data: payloads.UserFollowedEvent{
				FollowerID:       followerID,
				FollowerUsername: follower.Username,
				FolloweeID:       followeeID,
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating follow")
	}
	return nil
}

func (s *service) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if followerID == followeeID {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot unfollow yourself")
	}

	if _, err := s.repo.FindByID(ctx, followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading followee")
	}

	removed, err := s.repo.DeleteFollow(ctx, followerID, followeeID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "removing follow")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeValidation, "not following this user")
	}
	return nil
}

func (s *service) ListFollowers(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]UserDTO, string, error) {
	return s.listFollowEdge(ctx, userID, params, s.repo.ListFollowers)
}

func (s *service) ListFollowing(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]UserDTO, string, error) {
	return s.listFollowEdge(ctx, userID, params, s.repo.ListFollowing)
}

func (s *service) listFollowEdge(
	ctx context.Context,
	userID uuid.UUID,
	params pagination.Params,
	load func(context.Context, uuid.UUID, *pagination.Cursor, int) ([]models.User, []time.Time, error),
) ([]UserDTO, string, error) {
	if _, err := s.repo.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, edgeTimes, err := load(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing follow edges")
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		edgeTimes = edgeTimes[:limit]
		last := len(rows) - 1
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: edgeTimes[last],
			ID:        rows[last].ID,
		})
	}

	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nextCursor, nil
}
