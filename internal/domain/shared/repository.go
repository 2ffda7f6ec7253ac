package shared

const (
	defaultPageSize = 20
	defaultOrderBy  = "created_at"
)

// Filter carries paging, ordering and free-form criteria for list queries.
// Repositories whitelist OrderBy and the keys of Filters they understand.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// DefaultFilter returns the first page of twenty, newest first
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: defaultPageSize,
		OrderBy:  defaultOrderBy,
		OrderDir: "desc",
		Filters:  map[string]any{},
	}
}

// Offset returns the number of rows to skip, zero when paging is unset
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
