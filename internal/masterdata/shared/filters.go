package shared

const (
	DefaultPage  = 1
	DefaultLimit = 20

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListFilters represents standard list page filters.
type ListFilters struct {
	Page    int
	Limit   int
	Search  string
	SortBy  string
	SortDir string

	IsActive  *bool
	CompanyID *int64
}
