package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/pkg/db/models"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
)

const (
	defaultArtistLimit = 30
	defaultShopLimit   = 30
	defaultPostLimit   = 30
	featuredLimit      = 20
	maxSearchLimit     = 100
)

type searchRepository interface {
	SearchArtists(ctx context.Context, params ArtistParams, limit int) ([]models.User, error)
	SearchShops(ctx context.Context, params ShopParams, limit int) ([]models.User, error)
	ArtistIDsMatching(ctx context.Context, query string, styles []string) ([]uuid.UUID, error)
	SearchPosts(ctx context.Context, params PostParams, authorIDs []uuid.UUID, limit int) ([]models.Post, error)
	FeaturedPosts(ctx context.Context, limit int) ([]models.Post, error)
	FollowerCounts(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	PostCounts(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	RosterSizes(ctx context.Context, shopIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UsersByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error)
}

// Service exposes the public discovery queries.
type Service interface {
	Artists(ctx context.Context, params ArtistParams) ([]ArtistResultDTO, error)
	Shops(ctx context.Context, params ShopParams) ([]ShopResultDTO, error)
	Posts(ctx context.Context, params PostParams) ([]PostResultDTO, error)
	Featured(ctx context.Context) ([]PostResultDTO, error)
}

type service struct {
	repo searchRepository
}

// NewService builds the search service.
func NewService(repo searchRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("search repository required")
	}
	return &service{repo: repo}, nil
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxSearchLimit {
		return maxSearchLimit
	}
	return limit
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := map[string]struct{}{}
	for _, term := range terms {
		cleaned := strings.ToLower(strings.TrimSpace(term))
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

func (s *service) Artists(ctx context.Context, params ArtistParams) ([]ArtistResultDTO, error) {
	params.Styles = normalizeTerms(params.Styles)
	limit := clampLimit(params.Limit, defaultArtistLimit)

	artists, err := s.repo.SearchArtists(ctx, params, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching artists")
	}
	if len(artists) == 0 {
		return []ArtistResultDTO{}, nil
	}

	ids := make([]uuid.UUID, 0, len(artists))
	for _, artist := range artists {
		ids = append(ids, artist.ID)
	}
	followers, err := s.repo.FollowerCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting followers")
	}
	posts, err := s.repo.PostCounts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting posts")
	}

	out := make([]ArtistResultDTO, 0, len(artists))
	for i := range artists {
		out = append(out, artistResultFromModel(&artists[i], followers[artists[i].ID], posts[artists[i].ID]))
	}
	return out, nil
}

func (s *service) Shops(ctx context.Context, params ShopParams) ([]ShopResultDTO, error) {
	for _, pr := range params.PriceRanges {
		if !pr.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price range filter")
		}
	}
	limit := clampLimit(params.Limit, defaultShopLimit)

	shops, err := s.repo.SearchShops(ctx, params, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching shops")
	}
	if len(shops) == 0 {
		return []ShopResultDTO{}, nil
	}

	ids := make([]uuid.UUID, 0, len(shops))
	for _, shop := range shops {
		ids = append(ids, shop.ID)
	}
	rosters, err := s.repo.RosterSizes(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sizing rosters")
	}

	out := make([]ShopResultDTO, 0, len(shops))
	for i := range shops {
		out = append(out, shopResultFromModel(&shops[i], rosters[shops[i].ID]))
	}
	return out, nil
}

func (s *service) Posts(ctx context.Context, params PostParams) ([]PostResultDTO, error) {
	params.Styles = normalizeTerms(params.Styles)
	params.Tags = normalizeTerms(params.Tags)
	params.ArtistStyles = normalizeTerms(params.ArtistStyles)
	limit := clampLimit(params.Limit, defaultPostLimit)

	// An artist prefilter that matches nobody short-circuits to an empty
	// result instead of degenerating into an unfiltered post query.
	var authorIDs []uuid.UUID
	if strings.TrimSpace(params.ArtistQuery) != "" || len(params.ArtistStyles) > 0 {
		ids, err := s.repo.ArtistIDsMatching(ctx, params.ArtistQuery, params.ArtistStyles)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving artist filter")
		}
		if len(ids) == 0 {
			return []PostResultDTO{}, nil
		}
		authorIDs = ids
	}

	posts, err := s.repo.SearchPosts(ctx, params, authorIDs, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching posts")
	}
	return s.resolveAuthors(ctx, posts)
}

func (s *service) Featured(ctx context.Context) ([]PostResultDTO, error) {
	posts, err := s.repo.FeaturedPosts(ctx, featuredLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading featured posts")
	}
	return s.resolveAuthors(ctx, posts)
}

func (s *service) resolveAuthors(ctx context.Context, posts []models.Post) ([]PostResultDTO, error) {
	if len(posts) == 0 {
		return []PostResultDTO{}, nil
	}
	ids := make([]uuid.UUID, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.AuthorID)
	}
	authors, err := s.repo.UsersByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving authors")
	}

	out := make([]PostResultDTO, 0, len(posts))
	for i := range posts {
		author, ok := authors[posts[i].AuthorID]
		if !ok {
			out = append(out, postResultFromModel(&posts[i], nil))
			continue
		}
		out = append(out, postResultFromModel(&posts[i], &author))
	}
	return out, nil
}
