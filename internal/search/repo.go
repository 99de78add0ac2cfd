package search

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// Repository runs the multi-criteria search queries.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SearchArtists filters active artist accounts by free text, location and
// style overlap.
func (r *Repository) SearchArtists(ctx context.Context, params ArtistParams, limit int) ([]models.User, error) {
	q := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleArtist).
		Where("is_active = ?", true)

	if text := strings.TrimSpace(params.Query); text != "" {
		like := "%" + text + "%"
		q = q.Where("username ILIKE ? OR bio ILIKE ?", like, like)
	}
	if location := strings.TrimSpace(params.Location); location != "" {
		q = q.Where("location ILIKE ?", "%"+location+"%")
	}
	if len(params.Styles) > 0 {
		q = q.Where("styles && ?", pq.Array(params.Styles))
	}
	if params.GuestOnly {
		q = q.Where("available_for_guests = ?", true)
	}

	var artists []models.User
	err := q.Order("username").Limit(limit).Find(&artists).Error
	return artists, err
}

// SearchShops filters active shop accounts by free text, location and price
// range membership.
func (r *Repository) SearchShops(ctx context.Context, params ShopParams, limit int) ([]models.User, error) {
	q := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleShop).
		Where("is_active = ?", true)

	if text := strings.TrimSpace(params.Query); text != "" {
		like := "%" + text + "%"
		q = q.Where("username ILIKE ? OR shop_name ILIKE ? OR bio ILIKE ?", like, like, like)
	}
	if location := strings.TrimSpace(params.Location); location != "" {
		q = q.Where("location ILIKE ? OR address ILIKE ?", "%"+location+"%", "%"+location+"%")
	}
	if len(params.PriceRanges) > 0 {
		q = q.Where("price_range IN ?", params.PriceRanges)
	}

	var shops []models.User
	err := q.Order("username").Limit(limit).Find(&shops).Error
	return shops, err
}

// ArtistIDsMatching resolves the artist prefilter for post search. An empty
// result means no posts can match.
func (r *Repository) ArtistIDsMatching(ctx context.Context, query string, styles []string) ([]uuid.UUID, error) {
	q := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.UserRoleArtist).
		Where("is_active = ?", true)

	if text := strings.TrimSpace(query); text != "" {
		like := "%" + text + "%"
		q = q.Where("username ILIKE ? OR bio ILIKE ?", like, like)
	}
	if len(styles) > 0 {
		q = q.Where("styles && ?", pq.Array(styles))
	}

	var ids []uuid.UUID
	err := q.Pluck("id", &ids).Error
	return ids, err
}

// SearchPosts filters posts by style/tag overlap and an optional author set,
// newest first.
func (r *Repository) SearchPosts(ctx context.Context, params PostParams, authorIDs []uuid.UUID, limit int) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})

	if len(params.Styles) > 0 {
		q = q.Where("styles && ?", pq.Array(params.Styles))
	}
	if len(params.Tags) > 0 {
		q = q.Where("tags && ?", pq.Array(params.Tags))
	}
	if authorIDs != nil {
		q = q.Where("author_id IN ?", authorIDs)
	}

	var posts []models.Post
	err := q.Order("created_at DESC").Limit(limit).Find(&posts).Error
	return posts, err
}

// FeaturedPosts returns the newest posts platform-wide.
func (r *Repository) FeaturedPosts(ctx context.Context, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// FollowerCounts returns follower totals for the given users.
func (r *Repository) FollowerCounts(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.groupCounts(ctx, r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Select("followee_id AS id, COUNT(*) AS total").
		Where("followee_id IN ?", userIDs).
		Group("followee_id"), userIDs)
}

// PostCounts returns authored-post totals for the given users.
func (r *Repository) PostCounts(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.groupCounts(ctx, r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("author_id AS id, COUNT(*) AS total").
		Where("author_id IN ?", userIDs).
		Group("author_id"), userIDs)
}

// RosterSizes returns affiliated-artist totals for the given shops.
func (r *Repository) RosterSizes(ctx context.Context, shopIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.groupCounts(ctx, r.db.WithContext(ctx).
		Model(&models.Affiliation{}).
		Select("shop_id AS id, COUNT(*) AS total").
		Where("shop_id IN ?", shopIDs).
		Group("shop_id"), shopIDs)
}

type countRow struct {
	ID    uuid.UUID
	Total int64
}

func (r *Repository) groupCounts(ctx context.Context, q *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []countRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Total
	}
	return out, nil
}

// UsersByIDs batch-loads users for author resolution.
func (r *Repository) UsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]models.User{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
