// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows in paged API lists.
const PageSize = 50

// Page is a 1-based page of a list.
type Page struct {
	Number int
	Size   int
}

// Parse reads the "page" query parameter. Missing or invalid values give
// page 1.
func Parse(r *http.Request) Page {
	p := Page{Number: 1, Size: PageSize}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Number = n
	}
	return p
}

// Offset is the number of rows to skip.
func (p Page) Offset() int64 { return int64((p.Number - 1) * p.Size) }

// Limit is the number of rows to fetch.
func (p Page) Limit() int64 { return int64(p.Size) }

// TotalPages returns how many pages total rows fill. An empty list still
// has one page.
func (p Page) TotalPages(total int64) int {
	if total <= 0 || p.Size <= 0 {
		return 1
	}
	return int((total + int64(p.Size) - 1) / int64(p.Size))
}
