package routekit

import (
	"net/url"
	"strconv"
)

// Pagination holds paging values derived from the query string.
// Never persisted; computed fresh per request.
type Pagination struct {
	PageIndex int    `json:"pageIndex"`
	PageSize  int    `json:"pageSize"`
	Skip      int    `json:"skip"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

const (
	defaultPageSize  = 10
	defaultSortBy    = "createdAt"
	defaultSortOrder = "asc"
)

func paginationFromQuery(query url.Values) *Pagination {
	keys := getConfig().Pagination

	pageIndex := intValue(query.Get(keys.PageIndex), 0)
	if pageIndex < 0 {
		pageIndex = 0
	}
	pageSize := intValue(query.Get(keys.PageSize), defaultPageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	sortBy := query.Get(keys.SortBy)
	if sortBy == "" {
		sortBy = defaultSortBy
	}
	sortOrder := defaultSortOrder
	if query.Get(keys.SortOrder) == "desc" {
		sortOrder = "desc"
	}

	return &Pagination{
		PageIndex: pageIndex,
		PageSize:  pageSize,
		Skip:      pageIndex * pageSize,
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

func intValue(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
