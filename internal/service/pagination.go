package service

import "github.com/spec-kit/helpdesk/internal/repository"

// MaxPageSize caps every list request.
const MaxPageSize = 100

// PageRequest is an offset/limit window.
type PageRequest struct {
	Limit  int
	Offset int
}

// Page is one window of a list plus whether another window follows.
type Page[T any] struct {
	Items   []T
	HasMore bool
	Limit   int
	Offset  int
}

func (p PageRequest) normalize() PageRequest {
	limit, offset := repository.NormalizePage(p.Limit, p.Offset)
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return PageRequest{Limit: limit, Offset: offset}
}

// fetchPage asks for one item more than the window and uses its presence to
// set HasMore.
func fetchPage[T any](req PageRequest, fetch func(limit, offset int) ([]T, error)) (Page[T], error) {
	req = req.normalize()
	items, err := fetch(req.Limit+1, req.Offset)
	if err != nil {
		return Page[T]{}, err
	}
	page := Page[T]{Limit: req.Limit, Offset: req.Offset}
	if len(items) > req.Limit {
		items = items[:req.Limit]
		page.HasMore = true
	}
	if items == nil {
		items = []T{}
	}
	page.Items = items
	return page, nil
}
