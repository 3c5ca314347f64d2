package pager

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// Request is a zero-based page request.
type Request struct {
	Page int
	Size int
}

func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultSize
	}
	if r.Size > MaxSize {
		r.Size = MaxSize
	}
	return r
}

// Page is one slice of a result set plus the total match count across all
// pages. No ordering is guaranteed beyond what the store provides.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
}

// Paginate counts all rows matching the already-filtered query, then fetches
// the requested page. The query must have its Model set.
func Paginate[T any](ctx context.Context, query *gorm.DB, req Request) (*Page[T], error) {
	req = req.Normalize()

	base := query.WithContext(ctx).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, err
	}

	content := []T{}
	if total > 0 {
		if err := base.
			Offset(req.Page * req.Size).
			Limit(req.Size).
			Find(&content).Error; err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Content:       content,
		TotalElements: total,
		Page:          req.Page,
		Size:          req.Size,
	}, nil
}

// Contains adds a case-insensitive substring constraint when value is
// non-empty; otherwise the query is returned unchanged.
func Contains(query *gorm.DB, column, value string) *gorm.DB {
	v := strings.TrimSpace(value)
	if v == "" {
		return query
	}
	return query.Where(column+" ILIKE ?", "%"+v+"%")
}

// Eq adds an equality constraint when value is non-empty.
func Eq(query *gorm.DB, column, value string) *gorm.DB {
	v := strings.TrimSpace(value)
	if v == "" {
		return query
	}
	return query.Where(column+" = ?", v)
}
