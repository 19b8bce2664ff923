package option

import (
	"strconv"
	"strings"
	"time"

	"github.com/launchforge/launchforge/pkg/db/pagination"
	"gorm.io/gorm"
)

type Option interface {
	Apply(*gorm.DB) *gorm.DB
}

type paginationOption struct {
	page pagination.Pagination
}

func ApplyPagination(page pagination.Pagination) Option {
	return paginationOption{page: page}
}

// Apply filters rows past the cursor and fetches one extra row so the caller
// can detect a further page. Expects the query to order by
// created_at desc, id desc.
func (o paginationOption) Apply(stmt *gorm.DB) *gorm.DB {
	size := o.page.PageSize
	if size <= 0 {
		size = 10
	}
	if size > 250 {
		size = 250
	}

	if token := strings.TrimSpace(o.page.PageToken); token != "" {
		if cursor, err := pagination.DecodeCursor(token); err == nil && cursor.CreatedAt != "" {
			if ts, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt); err == nil {
				if id, err := strconv.ParseInt(cursor.ID, 10, 64); err == nil {
					stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)", ts, ts, id)
				} else {
					stmt = stmt.Where("created_at < ?", ts)
				}
			}
		}
	}

	return stmt.Limit(size + 1)
}
