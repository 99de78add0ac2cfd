package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/inkbound/inkbound-backend/pkg/db"
	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/outbox"
	"github.com/inkbound/inkbound-backend/pkg/outbox/payloads"
	"github.com/inkbound/inkbound-backend/pkg/pagination"
)

const (
	maxCaptionLength = 2000
	maxCommentLength = 1000
	maxPostTags      = 20
)

type postsRepository interface {
	CreatePostTx(tx *gorm.DB, post *models.Post) error
	FindPostByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	DeletePost(ctx context.Context, id uuid.UUID) (bool, error)
	FolloweeIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	ListByAuthors(ctx context.Context, authorIDs []uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Post, error)
	UsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
	HasLiked(ctx context.Context, postID, userID uuid.UUID) (bool, error)
	CreateLikeTx(tx *gorm.DB, postID, userID uuid.UUID) error
	DeleteLikeTx(tx *gorm.DB, postID, userID uuid.UUID) (bool, error)
	AdjustLikeCountTx(tx *gorm.DB, postID uuid.UUID, delta int) error
	CreateCommentTx(tx *gorm.DB, comment *models.PostComment) error
	FindCommentByID(ctx context.Context, id uuid.UUID) (*models.PostComment, error)
	DeleteCommentTx(tx *gorm.DB, id uuid.UUID) error
	AdjustCommentCountTx(tx *gorm.DB, postID uuid.UUID, delta int) error
	ListComments(ctx context.Context, postID uuid.UUID) ([]models.PostComment, error)
	HasLikedComment(ctx context.Context, commentID, userID uuid.UUID) (bool, error)
	CreateCommentLikeTx(tx *gorm.DB, commentID, userID uuid.UUID) error
	DeleteCommentLikeTx(tx *gorm.DB, commentID, userID uuid.UUID) (bool, error)
	AdjustCommentLikeCountTx(tx *gorm.DB, commentID uuid.UUID, delta int) error
}

type usersRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes post, like and comment operations.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreatePostInput) (*PostDTO, error)
	Feed(ctx context.Context, actorID uuid.UUID, params pagination.Params) ([]PostDTO, string, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) ([]PostDTO, string, error)
	Get(ctx context.Context, postID uuid.UUID) (*PostDetailDTO, error)
	Delete(ctx context.Context, actorID, postID uuid.UUID) error
	Like(ctx context.Context, actorID, postID uuid.UUID) error
	Unlike(ctx context.Context, actorID, postID uuid.UUID) error
	AddComment(ctx context.Context, actorID, postID uuid.UUID, body string) (*CommentDTO, error)
	DeleteComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error
	LikeComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error
	UnlikeComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error
}

type service struct {
	repo   postsRepository
	users  usersRepository
	tx     txRunner
	outbox outboxEmitter
}

// NewService builds the posts service with the provided dependencies.
func NewService(repo postsRepository, usersRepo usersRepository, tx txRunner, emitter outboxEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("posts repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, users: usersRepo, tx: tx, outbox: emitter}, nil
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, input CreatePostInput) (*PostDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url required")
	}
	if input.Caption != nil && len(*input.Caption) > maxCaptionLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "caption too long")
	}
	if len(input.Tags) > maxPostTags {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many tags")
	}

	author, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading author")
	}

	post := &models.Post{
		ID:       uuid.New(),
		AuthorID: actorID,
		ImageURL: strings.TrimSpace(input.ImageURL),
		Caption:  input.Caption,
		Styles:   normalizeTags(input.Styles),
		Tags:     normalizeTags(input.Tags),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreatePostTx(tx, post); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventPostCreated,
			AggregateType: enums.AggregatePost,
			AggregateID:   post.ID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: author.Role.String()},
			Version:       1,
			Data: payloads.PostCreatedEvent{
				PostID:     post.ID,
				AuthorID:   actorID,
				AuthorRole: author.Role.String(),
				Styles:     post.Styles,
				Tags:       post.Tags,
				CreatedAt:  post.CreatedAt,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating post")
	}

	dto := postFromModel(post, author)
	return &dto, nil
}

// normalizeTags lowercases and de-duplicates tag and style lists.
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		cleaned := strings.ToLower(strings.TrimSpace(tag))
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

func (s *service) Feed(ctx context.Context, actorID uuid.UUID, params pagination.Params) ([]PostDTO, string, error) {
	if actorID == uuid.Nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	followees, err := s.repo.FolloweeIDs(ctx, actorID)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading followees")
	}
	// The feed includes the viewer's own posts.
	authorIDs := append(followees, actorID)

	return s.listPosts(ctx, authorIDs, params)
}

func (s *service) ListByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) ([]PostDTO, string, error) {
	if _, err := s.users.FindByID(ctx, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return s.listPosts(ctx, []uuid.UUID{authorID}, params)
}

func (s *service) listPosts(ctx context.Context, authorIDs []uuid.UUID, params pagination.Params) ([]PostDTO, string, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	rows, err := s.repo.ListByAuthors(ctx, authorIDs, cursor, limit+1)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing posts")
	}

	nextCursor := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.AuthorID)
	}
	authors, err := s.repo.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving authors")
	}

	out := make([]PostDTO, 0, len(rows))
	for i := range rows {
		author, ok := authors[rows[i].AuthorID]
		if !ok {
			continue
		}
		out = append(out, postFromModel(&rows[i], &author))
	}
	return out, nextCursor, nil
}

func (s *service) Get(ctx context.Context, postID uuid.UUID) (*PostDetailDTO, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.repo.ListComments(ctx, postID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing comments")
	}

	ids := []uuid.UUID{post.AuthorID}
	for _, comment := range comments {
		ids = append(ids, comment.AuthorID)
	}
	authors, err := s.repo.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving authors")
	}

	postAuthor, ok := authors[post.AuthorID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post author no longer exists")
	}

	detail := &PostDetailDTO{
		PostDTO:  postFromModel(post, &postAuthor),
		Comments: make([]CommentDTO, 0, len(comments)),
	}
	for i := range comments {
		author, ok := authors[comments[i].AuthorID]
		if !ok {
			continue
		}
		detail.Comments = append(detail.Comments, commentFromModel(&comments[i], &author))
	}
	return detail, nil
}

func (s *service) loadPost(ctx context.Context, postID uuid.UUID) (*models.Post, error) {
	post, err := s.repo.FindPostByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "post not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading post")
	}
	return post, nil
}

func (s *service) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	if post.AuthorID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the author can delete a post")
	}
	if _, err := s.repo.DeletePost(ctx, postID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting post")
	}
	return nil
}

func (s *service) Like(ctx context.Context, actorID, postID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	liker, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	already, err := s.repo.HasLiked(ctx, postID, actorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking like state")
	}
	if already {
		return pkgerrors.New(pkgerrors.CodeValidation, "post already liked")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateLikeTx(tx, postID, actorID); err != nil {
			return err
		}
		if err := s.repo.AdjustLikeCountTx(tx, postID, 1); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventPostLiked,
			AggregateType: enums.AggregatePost,
			AggregateID:   postID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: liker.Role.String()},
			Version:       1,
			Data: payloads.PostLikedEvent{
				PostID:        postID,
				PostAuthorID:  post.AuthorID,
				LikerID:       actorID,
				LikerUsername: liker.Username,
			},
		})
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeValidation, "post already liked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "liking post")
	}
	return nil
}

func (s *service) Unlike(ctx context.Context, actorID, postID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := s.loadPost(ctx, postID); err != nil {
		return err
	}

	var removed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		removed, err = s.repo.DeleteLikeTx(tx, postID, actorID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		return s.repo.AdjustLikeCountTx(tx, postID, -1)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unliking post")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeValidation, "post not liked")
	}
	return nil
}

func (s *service) AddComment(ctx context.Context, actorID, postID uuid.UUID, body string) (*CommentDTO, error) {
	if actorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment body required")
	}
	if len(trimmed) > maxCommentLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment too long")
	}

	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	comment := &models.PostComment{
		ID:       uuid.New(),
		PostID:   postID,
		AuthorID: actorID,
		Body:     trimmed,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateCommentTx(tx, comment); err != nil {
			return err
		}
		if err := s.repo.AdjustCommentCountTx(tx, postID, 1); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.OutboxEventPostCommented,
			AggregateType: enums.AggregatePost,
			AggregateID:   postID,
			Actor:         &outbox.ActorRef{UserID: actorID, Role: author.Role.String()},
			Version:       1,
			Data: payloads.PostCommentedEvent{
				PostID:            postID,
				PostAuthorID:      post.AuthorID,
				CommentID:         comment.ID,
				CommenterID:       actorID,
				CommenterUsername: author.Username,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adding comment")
	}

	dto := commentFromModel(comment, author)
	return &dto, nil
}

func (s *service) DeleteComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}
	comment, err := s.loadComment(ctx, postID, commentID)
	if err != nil {
		return err
	}
	// The comment author and the post author may both remove it.
	if comment.AuthorID != actorID && post.AuthorID != actorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to delete this comment")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.DeleteCommentTx(tx, commentID); err != nil {
			return err
		}
		return s.repo.AdjustCommentCountTx(tx, postID, -1)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting comment")
	}
	return nil
}

func (s *service) loadComment(ctx context.Context, postID, commentID uuid.UUID) (*models.PostComment, error) {
	comment, err := s.repo.FindCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading comment")
	}
	if comment.PostID != postID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "comment not found")
	}
	return comment, nil
}

func (s *service) LikeComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := s.loadComment(ctx, postID, commentID); err != nil {
		return err
	}

	already, err := s.repo.HasLikedComment(ctx, commentID, actorID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking like state")
	}
	if already {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment already liked")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateCommentLikeTx(tx, commentID, actorID); err != nil {
			return err
		}
		return s.repo.AdjustCommentLikeCountTx(tx, commentID, 1)
	})
	if err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return pkgerrors.New(pkgerrors.CodeValidation, "comment already liked")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "liking comment")
	}
	return nil
}

func (s *service) UnlikeComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error {
	if actorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if _, err := s.loadComment(ctx, postID, commentID); err != nil {
		return err
	}

	var removed bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		removed, err = s.repo.DeleteCommentLikeTx(tx, commentID, actorID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		return s.repo.AdjustCommentLikeCountTx(tx, commentID, -1)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unliking comment")
	}
	if !removed {
		return pkgerrors.New(pkgerrors.CodeValidation, "comment not liked")
	}
	return nil
}
