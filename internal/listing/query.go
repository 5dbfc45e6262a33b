// Package listing turns typed, already-sanitized filters into scoped,
// parameterized GORM queries with fixed-size pagination.
package listing

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// PageSize is the fixed number of rows per listing page.
const PageSize = 10

// Query is a listing predicate plus ordering and page. It carries no
// database handle; apply it to one with Where or Page.
type Query struct {
	scopes     []func(*gorm.DB) *gorm.DB
	selectSQL  string
	selectArgs []any
	order      []string
	page       int
}

func newQuery(page int, order ...string) Query {
	return Query{page: NormalizePage(page), order: order}
}

func (q *Query) where(fn func(*gorm.DB) *gorm.DB) {
	q.scopes = append(q.scopes, fn)
}

func (q *Query) whereExpr(sql string, args ...any) {
	q.where(func(db *gorm.DB) *gorm.DB {
		return db.Where(sql, args...)
	})
}

// containsAny matches needle case-insensitively against any of columns.
func (q *Query) containsAny(needle string, columns ...string) {
	pattern := "%" + escapeLike(needle) + "%"
	q.where(func(db *gorm.DB) *gorm.DB {
		op := likeOperator(db)
		parts := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			parts[i] = col + " " + op + ` ? ESCAPE '\'`
			args[i] = pattern
		}
		return db.Where("("+strings.Join(parts, " OR ")+")", args...)
	})
}

// PageNumber is the normalized 1-based page.
func (q Query) PageNumber() int {
	return NormalizePage(q.page)
}

// Offset is the row offset of the page.
func (q Query) Offset() int {
	return (q.PageNumber() - 1) * PageSize
}

// Where applies only the predicate, for COUNT queries.
func (q Query) Where(db *gorm.DB) *gorm.DB {
	return db.Scopes(q.scopes...)
}

// Page applies predicate, projection, ordering and LIMIT/OFFSET.
func (q Query) Page(db *gorm.DB) *gorm.DB {
	tx := q.Where(db)
	if q.selectSQL != "" {
		tx = tx.Select(q.selectSQL, q.selectArgs...)
	}
	for _, o := range q.order {
		tx = tx.Order(o)
	}
	return tx.Limit(PageSize).Offset(q.Offset())
}

func likeOperator(db *gorm.DB) string {
	if db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "ILIKE"
	}
	return "LIKE"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Result is one page of a listing.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// TotalPages returns ceil(total / PageSize).
func TotalPages(total int64) int {
	return int((total + PageSize - 1) / PageSize)
}

// NewResult wraps items into a page result.
func NewResult[T any](items []T, total int64, page int) *Result[T] {
	if items == nil {
		items = []T{}
	}
	return &Result[T]{
		Items:      items,
		Total:      total,
		Page:       NormalizePage(page),
		PageSize:   PageSize,
		TotalPages: TotalPages(total),
	}
}

// Fetch counts the rows matching q and loads its page into a Result. A page
// past the end yields empty Items and no error.
func Fetch[T any](ctx context.Context, db *gorm.DB, q Query, preloads ...string) (*Result[T], error) {
	var model T

	var total int64
	if err := q.Where(db.WithContext(ctx).Model(&model)).Count(&total).Error; err != nil {
		return nil, err
	}

	items := make([]T, 0, PageSize)
	if total > int64(q.Offset()) {
		tx := q.Page(db.WithContext(ctx).Model(&model))
		for _, p := range preloads {
			tx = tx.Preload(p)
		}
		if err := tx.Find(&items).Error; err != nil {
			return nil, err
		}
	}

	return NewResult(items, total, q.PageNumber()), nil
}
