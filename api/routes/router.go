package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkbound/inkbound-backend/api/controllers"
	"github.com/inkbound/inkbound-backend/api/middleware"
	"github.com/inkbound/inkbound-backend/internal/affiliations"
	"github.com/inkbound/inkbound-backend/internal/analytics"
	"github.com/inkbound/inkbound-backend/internal/auth"
	"github.com/inkbound/inkbound-backend/internal/media"
	"github.com/inkbound/inkbound-backend/internal/notifications"
	"github.com/inkbound/inkbound-backend/internal/posts"
	"github.com/inkbound/inkbound-backend/internal/search"
	"github.com/inkbound/inkbound-backend/internal/users"
	"github.com/inkbound/inkbound-backend/pkg/auth/session"
	"github.com/inkbound/inkbound-backend/pkg/bigquery"
	"github.com/inkbound/inkbound-backend/pkg/config"
	"github.com/inkbound/inkbound-backend/pkg/db"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	"github.com/inkbound/inkbound-backend/pkg/logger"
	"github.com/inkbound/inkbound-backend/pkg/redis"
	"github.com/inkbound/inkbound-backend/pkg/storage/gcs"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	gcsClient gcs.Pinger,
	bigqueryClient bigquery.Pinger,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	usersService users.Service,
	postsService posts.Service,
	affiliationsService affiliations.Service,
	searchService search.Service,
	mediaService media.Service,
	notificationsService notifications.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		"identifier",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		"email",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient, gcsClient, bigqueryClient))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, logg))
			r.Post("/refresh", controllers.AuthRefresh(authService, logg))
			r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		})

		// Public browse surface. Profiles, posts, and search work without
		// a session so enthusiasts can look before they register.
		r.Route("/search", func(r chi.Router) {
			r.Get("/artists", controllers.SearchArtists(searchService, logg))
			r.Get("/shops", controllers.SearchShops(searchService, logg))
			r.Get("/posts", controllers.SearchPosts(searchService, logg))
			r.Get("/featured", controllers.SearchFeatured(searchService, logg))
		})
		r.Get("/users/{id}", controllers.UsersGet(usersService, logg))
		r.Get("/users/{id}/posts", controllers.PostsByAuthor(postsService, logg))
		r.Get("/users/{id}/followers", controllers.UsersFollowers(usersService, logg))
		r.Get("/users/{id}/following", controllers.UsersFollowing(usersService, logg))
		r.Get("/posts/{id}", controllers.PostsGet(postsService, logg))
		r.Get("/shops/{id}/artists", controllers.AffiliationsShopArtists(affiliationsService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

			r.Get("/users/me", controllers.UsersMe(usersService, logg))
			r.Put("/users/me", controllers.UsersUpdateMe(usersService, logg))
			r.Put("/users/{id}/follow", controllers.UsersFollow(usersService, logg))
			r.Delete("/users/{id}/follow", controllers.UsersUnfollow(usersService, logg))

			r.Post("/posts", controllers.PostsCreate(postsService, logg))
			r.Get("/posts/feed", controllers.PostsFeed(postsService, logg))
			r.Delete("/posts/{id}", controllers.PostsDelete(postsService, logg))
			r.Put("/posts/{id}/like", controllers.PostsLike(postsService, logg))
			r.Delete("/posts/{id}/like", controllers.PostsUnlike(postsService, logg))
			r.Post("/posts/{id}/comments", controllers.PostsAddComment(postsService, logg))
			r.Delete("/posts/{id}/comments/{commentID}", controllers.PostsDeleteComment(postsService, logg))
			r.Put("/posts/{id}/comments/{commentID}/like", controllers.PostsLikeComment(postsService, logg))
			r.Delete("/posts/{id}/comments/{commentID}/like", controllers.PostsUnlikeComment(postsService, logg))

			r.Route("/affiliations", func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleArtist.String(), enums.UserRoleShop.String()))
				r.Post("/requests", controllers.AffiliationsRequest(affiliationsService, logg))
				r.Put("/requests/{id}/accept", controllers.AffiliationsAccept(affiliationsService, logg))
				r.Put("/requests/{id}/decline", controllers.AffiliationsDecline(affiliationsService, logg))
				r.Get("/pending", controllers.AffiliationsPending(affiliationsService, logg))
				r.Get("/status/{targetID}", controllers.AffiliationsStatus(affiliationsService, logg))
				r.Delete("/{targetID}", controllers.AffiliationsRemove(affiliationsService, logg))
			})

			r.Post("/media/presign", controllers.MediaPresignUpload(mediaService, logg))

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.NotificationsList(notificationsService, logg))
				r.Put("/{id}/read", controllers.NotificationsMarkRead(notificationsService, logg))
				r.Put("/read-all", controllers.NotificationsMarkAllRead(notificationsService, logg))
			})

			r.Get("/analytics/trending-styles", controllers.AnalyticsTrendingStyles(analyticsService, logg))
		})
	})

	return r
}
