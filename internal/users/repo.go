package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/pagination"
)

// Repository exposes user and follow persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail retrieves the user matching the provided email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername retrieves the user matching the provided username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIdentifier resolves a login identifier that may be an email or username.
func (r *Repository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ?", identifier, identifier).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

// UpdateProfile applies the provided column updates to the user row.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.User, error) {
	if len(updates) > 0 {
		err := r.db.WithContext(ctx).
			Model(&models.User{}).
			Where("id = ?", id).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}
	return r.FindByID(ctx, id)
}

// CreateFollow inserts a follow edge.
func (r *Repository) CreateFollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	follow := &models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	return r.db.WithContext(ctx).Create(follow).Error
}

// CreateFollowTx inserts a follow edge inside the caller's transaction.
func (r *Repository) CreateFollowTx(tx *gorm.DB, followerID, followeeID uuid.UUID) error {
	follow := &models.Follow{FollowerID: followerID, FolloweeID: followeeID}
	return tx.Create(follow).Error
}

// DeleteFollow removes a follow edge and reports whether it existed.
func (r *Repository) DeleteFollow(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsFollowing reports whether follower already follows followee.
func (r *Repository) IsFollowing(ctx context.Context, followerID, followeeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountFollowers returns how many users follow the given user.
func (r *Repository) CountFollowers(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountFollowing returns how many users the given user follows.
func (r *Repository) CountFollowing(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}

// CountPosts returns how many posts the user has authored.
func (r *Repository) CountPosts(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("author_id = ?", userID).
		Count(&count).Error
	return count, err
}

// ListFollowers returns the users following userID, newest edge first.
func (r *Repository) ListFollowers(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.User, []time.Time, error) {
	return r.listFollowEdge(ctx, "follows.followee_id = ?", "follows.follower_id", userID, cursor, limit)
}

// ListFollowing returns the users userID follows, newest edge first.
func (r *Repository) ListFollowing(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.User, []time.Time, error) {
	return r.listFollowEdge(ctx, "follows.follower_id = ?", "follows.followee_id", userID, cursor, limit)
}

type followEdgeRow struct {
	UserID        uuid.UUID
	EdgeCreatedAt time.Time
}

func (r *Repository) listFollowEdge(ctx context.Context, whereClause, selectColumn string, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.User, []time.Time, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select(selectColumn + " AS user_id, follows.created_at AS edge_created_at").
		Where(whereClause, userID).
		Order("follows.created_at DESC").
		Limit(limit)

	if cursor != nil {
		q = q.Where("follows.created_at < ?", cursor.CreatedAt)
	}

	var edges []followEdgeRow
	if err := q.Scan(&edges).Error; err != nil {
		return nil, nil, err
	}
	if len(edges) == 0 {
		return []models.User{}, []time.Time{}, nil
	}

	ids := make([]uuid.UUID, 0, len(edges))
	for _, edge := range edges {
		ids = append(ids, edge.UserID)
	}

	var loaded []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&loaded).Error; err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]models.User, len(loaded))
	for _, u := range loaded {
		byID[u.ID] = u
	}

	usersOut := make([]models.User, 0, len(edges))
	edgeTimes := make([]time.Time, 0, len(edges))
	for _, edge := range edges {
		u, ok := byID[edge.UserID]
		if !ok {
			continue
		}
		usersOut = append(usersOut, u)
		edgeTimes = append(edgeTimes, edge.EdgeCreatedAt)
	}
	return usersOut, edgeTimes, nil
}
