package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/inkbound/inkbound-backend/internal/affiliations"
	"github.com/inkbound/inkbound-backend/internal/analytics/types"
	"github.com/inkbound/inkbound-backend/internal/auth"
	"github.com/inkbound/inkbound-backend/internal/media"
	"github.com/inkbound/inkbound-backend/internal/notifications"
	"github.com/inkbound/inkbound-backend/internal/posts"
	"github.com/inkbound/inkbound-backend/internal/search"
	"github.com/inkbound/inkbound-backend/internal/users"
	pkgAuth "github.com/inkbound/inkbound-backend/pkg/auth"
	"github.com/inkbound/inkbound-backend/pkg/auth/session"
	"github.com/inkbound/inkbound-backend/pkg/config"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	"github.com/inkbound/inkbound-backend/pkg/logger"
	"github.com/inkbound/inkbound-backend/pkg/pagination"
	"github.com/inkbound/inkbound-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

func (stubAuthService) Logout(ctx context.Context, accessID string) error {
	return nil
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.AuthResponse, error) {
	return &auth.AuthResponse{}, nil
}

type stubUsersService struct{}

func (stubUsersService) GetProfile(ctx context.Context, idOrUsername string) (*users.ProfileDTO, error) {
	return &users.ProfileDTO{}, nil
}

func (stubUsersService) UpdateProfile(ctx context.Context, actorID uuid.UUID, input users.UpdateProfileDTO) (*users.UserDTO, error) {
	return &users.UserDTO{}, nil
}

func (stubUsersService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return nil
}

func (stubUsersService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return nil
}

func (stubUsersService) ListFollowers(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]users.UserDTO, string, error) {
	return nil, "", nil
}

func (stubUsersService) ListFollowing(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]users.UserDTO, string, error) {
	return nil, "", nil
}

type stubPostsService struct{}

func (stubPostsService) Create(ctx context.Context, actorID uuid.UUID, input posts.CreatePostInput) (*posts.PostDTO, error) {
	return &posts.PostDTO{}, nil
}

func (stubPostsService) Feed(ctx context.Context, actorID uuid.UUID, params pagination.Params) ([]posts.PostDTO, string, error) {
	return nil, "", nil
}

func (stubPostsService) ListByAuthor(ctx context.Context, authorID uuid.UUID, params pagination.Params) ([]posts.PostDTO, string, error) {
	return nil, "", nil
}

func (stubPostsService) Get(ctx context.Context, postID uuid.UUID) (*posts.PostDetailDTO, error) {
	return &posts.PostDetailDTO{}, nil
}

func (stubPostsService) Delete(ctx context.Context, actorID, postID uuid.UUID) error {
	return nil
}

func (stubPostsService) Like(ctx context.Context, actorID, postID uuid.UUID) error {
	return nil
}

func (stubPostsService) Unlike(ctx context.Context, actorID, postID uuid.UUID) error {
	return nil
}

func (stubPostsService) AddComment(ctx context.Context, actorID, postID uuid.UUID, body string) (*posts.CommentDTO, error) {
	return &posts.CommentDTO{}, nil
}

func (stubPostsService) DeleteComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error {
	return nil
}

func (stubPostsService) LikeComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error {
	return nil
}

func (stubPostsService) UnlikeComment(ctx context.Context, actorID, postID, commentID uuid.UUID) error {
	return nil
}

type stubAffiliationsService struct{}

func (stubAffiliationsService) SendRequest(ctx context.Context, actorID, targetID uuid.UUID) (*affiliations.RequestDTO, error) {
	return &affiliations.RequestDTO{}, nil
}

func (stubAffiliationsService) AcceptRequest(ctx context.Context, actorID, requestID uuid.UUID) (*affiliations.AffiliationDTO, error) {
	return &affiliations.AffiliationDTO{}, nil
}

func (stubAffiliationsService) DeclineRequest(ctx context.Context, actorID, requestID uuid.UUID) error {
	return nil
}

func (stubAffiliationsService) RemoveAffiliation(ctx context.Context, actorID, targetID uuid.UUID) error {
	return nil
}

func (stubAffiliationsService) ListPending(ctx context.Context, actorID uuid.UUID) ([]affiliations.RequestDTO, error) {
	return nil, nil
}

func (stubAffiliationsService) GetStatus(ctx context.Context, viewerID, targetID uuid.UUID) (*affiliations.StatusDTO, error) {
	return &affiliations.StatusDTO{}, nil
}

func (stubAffiliationsService) ListShopArtists(ctx context.Context, shopID uuid.UUID) ([]affiliations.PartyDTO, error) {
	return nil, nil
}

type stubSearchService struct{}

func (stubSearchService) Artists(ctx context.Context, params search.ArtistParams) ([]search.ArtistResultDTO, error) {
	return nil, nil
}

func (stubSearchService) Shops(ctx context.Context, params search.ShopParams) ([]search.ShopResultDTO, error) {
	return nil, nil
}

func (stubSearchService) Posts(ctx context.Context, params search.PostParams) ([]search.PostResultDTO, error) {
	return nil, nil
}

func (stubSearchService) Featured(ctx context.Context) ([]search.PostResultDTO, error) {
	return nil, nil
}

type stubMediaService struct{}

func (stubMediaService) PresignUpload(ctx context.Context, userID uuid.UUID, input media.PresignInput) (*media.PresignOutput, error) {
	return &media.PresignOutput{}, nil
}

type stubNotificationsService struct{}

func (stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type stubAnalyticsService struct{}

func (stubAnalyticsService) TrendingStyles(ctx context.Context, req types.TrendingStylesRequest) (*types.TrendingStylesResponse, error) {
	return &types.TrendingStylesResponse{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},         // db.Pinger
		(*redis.Client)(nil), // *redis.Client
		stubPinger{},         // gcs.Pinger
		stubPinger{},         // bigquery.Pinger
		stubSessionChecker{},
		stubAuthService{},
		stubRegisterService{},
		stubUsersService{},
		stubPostsService{},
		stubAffiliationsService{},
		stubSearchService{},
		stubMediaService{},
		stubNotificationsService{},
		stubAnalyticsService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   uuid.New(),
		Username: "needlework",
		Role:     role,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleEnthusiast))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicProfileNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/needlework", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestSearchNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/search/artists?styles=traditional", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestAffiliationsRejectEnthusiasts(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	enthusiast := httptest.NewRequest(http.MethodGet, "/api/v1/affiliations/pending", nil)
	enthusiast.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleEnthusiast))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, enthusiast)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for enthusiast got %d", resp.Code)
	}

	artist := httptest.NewRequest(http.MethodGet, "/api/v1/affiliations/pending", nil)
	artist.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleArtist))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, artist)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for artist got %d", resp.Code)
	}
}

func TestFeedRequiresAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/feed", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
