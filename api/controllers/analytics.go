package controllers

import (
	"net/http"
	"time"

	"github.com/inkbound/inkbound-backend/api/responses"
	"github.com/inkbound/inkbound-backend/api/validators"
	"github.com/inkbound/inkbound-backend/internal/analytics"
	"github.com/inkbound/inkbound-backend/internal/analytics/types"
	pkgerrors "github.com/inkbound/inkbound-backend/pkg/errors"
	"github.com/inkbound/inkbound-backend/pkg/logger"
)

var presetWindows = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

const defaultPreset = "30d"

// resolveRange turns query parameters into an absolute time range. Callers
// either pass a preset window or an explicit from/to pair, not both.
func resolveRange(r *http.Request, now time.Time) (time.Time, time.Time, error) {
	q := r.URL.Query()
	from := q.Get("from")
	to := q.Get("to")

	if from != "" || to != "" {
		if from == "" || to == "" {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be provided together")
		}
		start, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid from timestamp")
		}
		end, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid to timestamp")
		}
		if !end.After(start) {
			return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "to must be after from")
		}
		return start, end, nil
	}

	preset := q.Get("window")
	if preset == "" {
		preset = defaultPreset
	}
	window, ok := presetWindows[preset]
	if !ok {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid window")
	}
	return now.Add(-window), now, nil
}

// AnalyticsTrendingStyles reports the most-posted styles over a time range.
func AnalyticsTrendingStyles(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "analytics service unavailable"))
			return
		}

		start, end, err := resolveRange(r, time.Now().UTC())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.TrendingStyles(r.Context(), types.TrendingStylesRequest{
			Start: start,
			End:   end,
			Limit: limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
