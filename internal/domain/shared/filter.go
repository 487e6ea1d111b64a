package shared

// Filter describes the paging, ordering and search options accepted by the
// repository list operations. Filters holds exact-match column constraints
// keyed by column name. Repositories validate OrderBy against their own
// allow list before it reaches SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// DefaultFilter returns the paging defaults used when a list request does not
// specify its own.
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
}
