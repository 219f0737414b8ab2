package services

import (
	"gorm.io/gorm"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// PageRequest selects a page of a listing. Zero values pick the defaults.
type PageRequest struct {
	Page    int
	PerPage int
}

func (p PageRequest) normalize() PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

type Paginated[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Pages   int   `json:"pages"`
}

// paginate counts the rows matched by query and loads the requested page.
// Preloads apply to the page query only.
func paginate[T any](query *gorm.DB, req PageRequest, order string, preloads ...string) (*Paginated[T], error) {
	req = req.normalize()

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	page := query.Session(&gorm.Session{})
	for _, p := range preloads {
		page = page.Preload(p)
	}

	items := make([]T, 0)
	if err := page.
		Order(order).
		Offset((req.Page - 1) * req.PerPage).
		Limit(req.PerPage).
		Find(&items).Error; err != nil {
		return nil, err
	}

	pages := int((total + int64(req.PerPage) - 1) / int64(req.PerPage))
	return &Paginated[T]{
		Items:   items,
		Total:   total,
		Page:    req.Page,
		PerPage: req.PerPage,
		Pages:   pages,
	}, nil
}
