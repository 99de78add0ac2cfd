package controllers

import (
	"net/http"
	"strings"

	"github.com/inkbound/inkbound-backend/api/responses"
	"github.com/inkbound/inkbound-backend/api/validators"
	"github.com/inkbound/inkbound-backend/internal/search"
	"github.com/inkbound/inkbound-backend/pkg/enums"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/logger"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// SearchArtists filters artists by name, location, styles, and guest
// availability.
func SearchArtists(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultSearchLimit, 1, maxSearchLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		q := r.URL.Query()
		params := search.ArtistParams{
			Query:     strings.TrimSpace(q.Get("q")),
			Location:  strings.TrimSpace(q.Get("location")),
			Styles:    validators.ParseQueryCSV(r, "styles"),
			GuestOnly: q.Get("guest_only") == "true",
			Limit:     limit,
		}

		results, err := svc.Artists(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"artists": results})
	}
}

// SearchShops filters shops by name, location, and price range.
func SearchShops(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultSearchLimit, 1, maxSearchLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var priceRanges []enums.PriceRange
		for _, raw := range validators.ParseQueryCSV(r, "price_ranges") {
			pr, err := enums.ParsePriceRange(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid price_ranges"))
				return
			}
			priceRanges = append(priceRanges, pr)
		}

		q := r.URL.Query()
		params := search.ShopParams{
			Query:       strings.TrimSpace(q.Get("q")),
			Location:    strings.TrimSpace(q.Get("location")),
			PriceRanges: priceRanges,
			Limit:       limit,
		}

		results, err := svc.Shops(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"shops": results})
	}
}

// SearchPosts filters posts by style and tag, optionally narrowing by the
// author's name or styles.
func SearchPosts(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", defaultSearchLimit, 1, maxSearchLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := search.PostParams{
			Styles:       validators.ParseQueryCSV(r, "styles"),
			Tags:         validators.ParseQueryCSV(r, "tags"),
			ArtistQuery:  strings.TrimSpace(r.URL.Query().Get("artist_q")),
			ArtistStyles: validators.ParseQueryCSV(r, "artist_styles"),
			Limit:        limit,
		}

		results, err := svc.Posts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"posts": results})
	}
}

// SearchFeatured returns the current featured selection of posts.
func SearchFeatured(svc search.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "search service unavailable"))
			return
		}

		results, err := svc.Featured(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"posts": results})
	}
}
