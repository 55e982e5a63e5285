package repositories

import (
	"strings"

	"gorm.io/gorm"

	"github.com/marwanhaqiqi/be-task-management-system-new/internal/models"
)

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	DefaultSortBy  = "created_at"
	DefaultOrder   = "desc"
)

// sortColumns maps the public sort_by names onto columns.
var sortColumns = map[string]string{
	"id":          "id",
	"tasklist":    "title",
	"title":       "title",
	"description": "description",
	"deadline":    "deadline",
	"status":      "status",
	"created_at":  "created_at",
	"updated_at":  "updated_at",
}

// TaskQuery describes one page of an owner's tasks. The owner is never part
// of the query; it is always passed separately to the store.
type TaskQuery struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Normalize fills defaults, maps sort_by onto an allowed column and clamps
// the page size.
func (q TaskQuery) Normalize() TaskQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Status = strings.TrimSpace(q.Status)

	column, ok := sortColumns[strings.ToLower(strings.TrimSpace(q.SortBy))]
	if !ok {
		column = DefaultSortBy
	}
	q.SortBy = column

	switch order := strings.ToLower(strings.TrimSpace(q.SortOrder)); order {
	case "asc", "desc":
		q.SortOrder = order
	default:
		q.SortOrder = DefaultOrder
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	return q
}

func (q TaskQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// filter applies search and status predicates. Expects a normalized query.
func (q TaskQuery) filter(db *gorm.DB) *gorm.DB {
	if q.Search != "" {
		pattern := "%" + escapeLike(lowerASCII(q.Search)) + "%"
		db = db.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	return db
}

// order applies the sort column plus an id tie-breaker. Expects a normalized query.
func (q TaskQuery) order(db *gorm.DB) *gorm.DB {
	return db.Order(q.SortBy + " " + q.SortOrder).Order("id asc")
}

// lowerASCII folds A-Z only, matching SQLite's LOWER(). Other letters are
// compared as the database's LOWER() leaves them.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// TaskPage is one page of query results plus pagination metadata.
type TaskPage struct {
	Items    []models.Task
	Total    int64
	Page     int
	PerPage  int
	LastPage int
}

func newTaskPage(items []models.Task, total int64, q TaskQuery) *TaskPage {
	lastPage := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	if lastPage < 1 {
		lastPage = 1
	}
	if items == nil {
		items = []models.Task{}
	}
	return &TaskPage{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
		LastPage: lastPage,
	}
}

// From is the 1-based position of the first item on the page, 0 when empty.
func (p *TaskPage) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Page-1)*p.PerPage + 1
}

// To is the 1-based position of the last item on the page, 0 when empty.
func (p *TaskPage) To() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.From() + len(p.Items) - 1
}
