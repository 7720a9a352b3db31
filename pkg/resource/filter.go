package resource

import (
	"context"
	"net/http"
)

type contextKey int

const filterKey contextKey = iota

// FilterFunc derives list-filter criteria from the incoming request,
// typically from path or query parameters.
type FilterFunc func(r *http.Request) map[string]any

// WithFilter attaches request-derived criteria for the list handler to pick
// up. Mount it ahead of the entity's routes.
func WithFilter(fn FilterFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if criteria := fn(r); len(criteria) > 0 {
				r = r.WithContext(context.WithValue(r.Context(), filterKey, criteria))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FilterFromContext returns the criteria attached by WithFilter, or nil when
// no filter middleware ran. A nil result leaves the list query unfiltered.
func FilterFromContext(ctx context.Context) map[string]any {
	criteria, _ := ctx.Value(filterKey).(map[string]any)
	return criteria
}
