package domain

import "math"

// MaxOffset is the largest number of rows a page request may skip.
const MaxOffset = math.MaxInt32

// PageRequest selects a zero-based page of results.
type PageRequest struct {
	Page int
	Size int
}

// Offset returns the number of rows to skip, saturating at MaxOffset.
func (p PageRequest) Offset() int {
	if p.Page < 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > MaxOffset/p.Size {
		return MaxOffset
	}
	return p.Page * p.Size
}

// InRange reports whether the page starts within MaxOffset.
func (p PageRequest) InRange() bool {
	return p.Size <= 0 || p.Page <= MaxOffset/p.Size
}

// Normalize clamps the request into a usable range.
func (p PageRequest) Normalize(defaultSize, maxSize int) PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = defaultSize
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	return p
}

// Page is one slice of a larger, ordered result set.
type Page[T any] struct {
	Items      []T
	Page       int
	Size       int
	TotalItems int64
}

// TotalPages returns the number of pages needed for TotalItems.
func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}

// MapPage converts the items of a page, keeping its position.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{
		Items:      items,
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
	}
}
