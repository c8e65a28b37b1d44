package pagination

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Params represents pagination parameters
type Params struct {
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"-"`
	Search     string `json:"search,omitempty"`
	Fellowship string `json:"fellowship,omitempty"`
}

// DefaultLimit is the default number of items per page
const DefaultLimit = 10

// MaxLimit is the maximum number of items per page
const MaxLimit = 100

// GetParams extracts pagination parameters from request
func GetParams(c *fiber.Ctx) *Params {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))

	return New(page, limit, c.Query("search"), c.Query("fellowship"))
}

// New builds normalized params. Out-of-range page and limit values fall back
// to the defaults instead of failing the request.
func New(page, limit int, search, fellowship string) *Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return &Params{
		Page:       page,
		Limit:      limit,
		Offset:     (page - 1) * limit,
		Search:     strings.TrimSpace(search),
		Fellowship: strings.TrimSpace(fellowship),
	}
}

// SearchPattern returns the LIKE pattern for the search term, or "" when no
// search was requested.
func (p *Params) SearchPattern() string {
	if p.Search == "" {
		return ""
	}
	return "%" + strings.ToLower(p.Search) + "%"
}

// PageCount returns the number of pages needed for total items
func PageCount(total int64, limit int) int {
	if limit < 1 {
		return 0
	}
	pages := int(total) / limit
	if int(total)%limit > 0 {
		pages++
	}
	return pages
}

// Page is the paginated list envelope shared by every paginated endpoint.
type Page[T any] struct {
	Items     []T   `json:"items"`
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	Total     int64 `json:"total"`
	Limit     int   `json:"limit"`
}

// NewPage creates a new paginated response. A nil slice is replaced with an
// empty one so clients always receive a JSON array.
func NewPage[T any](items []T, params *Params, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:     items,
		Page:      params.Page,
		PageCount: PageCount(total, params.Limit),
		Total:     total,
		Limit:     params.Limit,
	}
}

// List is the envelope for unpaginated list-all endpoints.
type List[T any] struct {
	Items []T `json:"items"`
}

// NewList wraps items for a list-all response
func NewList[T any](items []T) *List[T] {
	if items == nil {
		items = []T{}
	}
	return &List[T]{Items: items}
}
