package routekit

import (
	"sync"
	"time"

	"github.com/nhalm/routekit/catalog"
)

// PaginationKeys names the query-string parameters the pagination step reads.
type PaginationKeys struct {
	PageIndex string
	PageSize  string
	SortBy    string
	SortOrder string
}

// Config holds process-wide settings for routekit.
// It is expected to be set once at startup, before handling traffic;
// concurrent writers after that point are not synchronized against readers
// beyond last-writer-wins.
type Config struct {
	// Lang selects the message catalog language for default messages
	// (default: "en").
	Lang string

	// Timeout, when non-zero, puts a deadline on the request context of
	// every bound handler. Handlers and steps that return the context's
	// error produce a 408 response.
	Timeout time.Duration

	// Pagination names the query parameters read by Paginate steps.
	Pagination PaginationKeys
}

var (
	configMu      sync.RWMutex
	currentConfig = defaultConfig()
)

func defaultConfig() Config {
	return Config{
		Lang: catalog.LangEN,
		Pagination: PaginationKeys{
			PageIndex: "pageIndex",
			PageSize:  "pageSize",
			SortBy:    "sortBy",
			SortOrder: "sortOrder",
		},
	}
}

// Configure replaces the process-wide configuration.
// Zero-valued fields keep their defaults.
// Must be called at startup before handling requests.
func Configure(c Config) {
	def := defaultConfig()
	if c.Lang == "" {
		c.Lang = def.Lang
	}
	if c.Pagination.PageIndex == "" {
		c.Pagination.PageIndex = def.Pagination.PageIndex
	}
	if c.Pagination.PageSize == "" {
		c.Pagination.PageSize = def.Pagination.PageSize
	}
	if c.Pagination.SortBy == "" {
		c.Pagination.SortBy = def.Pagination.SortBy
	}
	if c.Pagination.SortOrder == "" {
		c.Pagination.SortOrder = def.Pagination.SortOrder
	}

	configMu.Lock()
	currentConfig = c
	configMu.Unlock()
}

func getConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return currentConfig
}

func message(key string) string {
	return catalog.T(getConfig().Lang, key)
}
