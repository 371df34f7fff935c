// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/groupbook/internal/app/store"
	"github.com/dalemusser/waffle/pantry/query"
)

// MaxLimit caps the "limit" query parameter so a single request cannot
// pull an unbounded list.
const MaxLimit = 500

// ParsePage reads the "offset" and "limit" query parameters.
// Missing or malformed values fall back to offset 0 and store.DefaultLimit;
// limits above MaxLimit are clamped.
func ParsePage(r *http.Request) store.Page {
	p := store.Page{
		Offset: parseInt(query.Get(r, "offset"), 0),
		Limit:  parseInt(query.Get(r, "limit"), store.DefaultLimit),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p.Normalize()
}

// ParseID parses a positive int64 path or query value.
func ParseID(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
