package shared

import (
	"net/http"
	"strconv"
)

const (
	// DefaultLimit bounds list responses when the caller does not ask
	// for a specific page size.
	DefaultLimit = 100
	// MaxLimit is the hard ceiling for a single page.
	MaxLimit = 1000
)

// PageParams carries offset-based pagination parameters.
type PageParams struct {
	Skip  int
	Limit int
}

// ParsePageParams reads skip/limit query parameters with defaults.
// Negative or unparseable values fall back to the defaults.
func ParsePageParams(r *http.Request) PageParams {
	p := PageParams{Skip: 0, Limit: DefaultLimit}
	if raw := r.URL.Query().Get("skip"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Skip = v
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			p.Limit = v
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}
