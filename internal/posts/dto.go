package posts

import (
	"time"

	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	"github.com/inkbound/inkbound-backend/pkg/enums"
)

// AuthorDTO is the compact identity attached to posts and comments.
type AuthorDTO struct {
	ID        uuid.UUID      `json:"id"`
	Username  string         `json:"username"`
	Role      enums.UserRole `json:"role"`
	AvatarURL *string        `json:"avatar_url,omitempty"`
}

// PostDTO is the API view of a post.
type PostDTO struct {
	ID           uuid.UUID `json:"id"`
	Author       AuthorDTO `json:"author"`
	ImageURL     string    `json:"image_url"`
	Caption      *string   `json:"caption,omitempty"`
	Styles       []string  `json:"styles,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// CommentDTO is the API view of a comment.
type CommentDTO struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	Author    AuthorDTO `json:"author"`
	Body      string    `json:"body"`
	LikeCount int       `json:"like_count"`
	CreatedAt time.Time `json:"created_at"`
}

// PostDetailDTO is a post with its comment thread resolved.
type PostDetailDTO struct {
	PostDTO
	Comments []CommentDTO `json:"comments"`
}

// CreatePostInput carries the fields for a new post.
type CreatePostInput struct {
	ImageURL string
	Caption  *string
	Styles   []string
	Tags     []string
}

func authorFromModel(u *models.User) AuthorDTO {
	if u == nil {
		return AuthorDTO{}
	}
	return AuthorDTO{
		ID:        u.ID,
		Username:  u.Username,
		Role:      u.Role,
		AvatarURL: u.AvatarURL,
	}
}

func postFromModel(p *models.Post, author *models.User) PostDTO {
	return PostDTO{
		ID:           p.ID,
		Author:       authorFromModel(author),
		ImageURL:     p.ImageURL,
		Caption:      p.Caption,
		Styles:       p.Styles,
		Tags:         p.Tags,
		LikeCount:    p.LikeCount,
		CommentCount: p.CommentCount,
		CreatedAt:    p.CreatedAt,
	}
}

func commentFromModel(c *models.PostComment, author *models.User) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		PostID:    c.PostID,
		Author:    authorFromModel(author),
		Body:      c.Body,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
	}
}
