package posts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/pagination"
)

// Repository exposes post, like and comment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePostTx inserts a post within a transaction.
func (r *Repository) CreatePostTx(tx *gorm.DB, post *models.Post) error {
	return tx.Create(post).Error
}

// FindPostByID loads a post by its identifier.
func (r *Repository) FindPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post with its likes and comments and reports whether
// it existed.
func (r *Repository) DeletePost(ctx context.Context, id uuid.UUID) (bool, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id IN (?)",
			tx.Model(&models.PostComment{}).Select("id").Where("post_id = ?", id),
		).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostComment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Post{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		return nil
	})
	return affected > 0, err
}

// FolloweeIDs returns the ids of everyone the user follows.
func (r *Repository) FolloweeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", userID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

// ListByAuthors returns posts by the given authors, newest first.
func (r *Repository) ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	q := r.db.WithContext(ctx).
		Where("author_id IN ?", authorIDs).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var posts []models.Post
	err := q.Find(&posts).Error
	return posts, err
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

// HasLiked reports whether the user already liked the post.
func (r *Repository) HasLiked(ctx context.Context, postID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PostLike{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&count).Error
	return count > 0, err
}

// CreateLikeTx inserts a like inside the caller's transaction.
func (r *Repository) CreateLikeTx(tx *gorm.DB, postID, userID uuid.UUID) error {
	return tx.Create(&models.PostLike{PostID: postID, UserID: userID}).Error
}

// DeleteLikeTx removes a like and reports whether it existed.
func (r *Repository) DeleteLikeTx(tx *gorm.DB, postID, userID uuid.UUID) (bool, error) {
	res := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.PostLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustLikeCountTx shifts the denormalized like counter.
func (r *Repository) AdjustLikeCountTx(tx *gorm.DB, postID uuid.UUID, delta int) error {
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}

// CreateCommentTx inserts a comment inside the caller's transaction.
func (r *Repository) CreateCommentTx(tx *gorm.DB, comment *models.PostComment) error {
	return tx.Create(comment).Error
}

// FindCommentByID loads a comment by its identifier.
func (r *Repository) FindCommentByID(ctx context.Context, id uuid.UUID) (*models.PostComment, error) {
	var comment models.PostComment
	if err := r.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// DeleteCommentTx removes a comment and its likes inside the caller's transaction.
func (r *Repository) DeleteCommentTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
		return err
	}
	return tx.Delete(&models.PostComment{}, "id = ?", id).Error
}

// AdjustCommentCountTx shifts the denormalized comment counter.
func (r *Repository) AdjustCommentCountTx(tx *gorm.DB, postID uuid.UUID, delta int) error {
	return tx.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
}

// ListComments returns a post's comments, most liked first, oldest breaking ties.
func (r *Repository) ListComments(ctx context.Context, postID uuid.UUID) ([]models.PostComment, error) {
	var comments []models.PostComment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("like_count DESC, created_at ASC").
		Find(&comments).Error
	return comments, err
}

// HasLikedComment reports whether the user already liked the comment.
func (r *Repository) HasLikedComment(ctx context.Context, commentID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error
	return count > 0, err
}

// CreateCommentLikeTx inserts a comment like inside the caller's transaction.
func (r *Repository) CreateCommentLikeTx(tx *gorm.DB, commentID, userID uuid.UUID) error {
	return tx.Create(&models.CommentLike{CommentID: commentID, UserID: userID}).Error
}

// DeleteCommentLikeTx removes a comment like and reports whether it existed.
func (r *Repository) DeleteCommentLikeTx(tx *gorm.DB, commentID, userID uuid.UUID) (bool, error) {
	res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// AdjustCommentLikeCountTx shifts a comment's like counter.
func (r *Repository) AdjustCommentLikeCountTx(tx *gorm.DB, commentID uuid.UUID, delta int) error {
	return tx.Model(&models.PostComment{}).
		Where("id = ?", commentID).
		UpdateColumn("like_count", gorm.Expr("like_count + ?", delta)).Error
}
