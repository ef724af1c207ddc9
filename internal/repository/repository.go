package repository

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres, firestore) inside this directory.

import (
	"errors"
	"strings"

	"paperlib/internal/model"
)

// ErrNotFound is returned by implementations when a paper does not exist.
var ErrNotFound = errors.New("paper not found")

// OrderField is a sortable paper attribute.
type OrderField string

const (
	OrderByUploadDate    OrderField = "uploadDate"
	OrderByPreviewCount  OrderField = "previewCount"
	OrderByDownloadCount OrderField = "downloadCount"
	OrderByTitle         OrderField = "title"
)

// ParseOrderField returns the field named s, or false if it is not sortable.
func ParseOrderField(s string) (OrderField, bool) {
	switch f := OrderField(s); f {
	case OrderByUploadDate, OrderByPreviewCount, OrderByDownloadCount, OrderByTitle:
		return f, true
	}
	return "", false
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection accepts "asc" or "desc" in any case.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(strings.ToLower(s)); d {
	case Asc, Desc:
		return d, true
	}
	return "", false
}

// PrefixUpperBound is appended to a search term to close the prefix range.
// U+F8FF sorts after every code point likely to appear in a title.
const PrefixUpperBound = "\uf8ff"

// ListQuery describes one page of papers.
//
// When TitlePrefix is set the query becomes a prefix scan over title and is
// always ordered by title ascending; OrderBy and Direction are ignored.
// StartAfter is the already-resolved cursor paper; nil means first page.
type ListQuery struct {
	OrderBy     OrderField
	Direction   Direction
	Limit       int
	TitlePrefix string
	StartAfter  *model.Paper
}

// Effective returns the order actually applied by the query.
func (q ListQuery) Effective() (OrderField, Direction) {
	if q.TitlePrefix != "" {
		return OrderByTitle, Asc
	}
	field, dir := q.OrderBy, q.Direction
	if field == "" {
		field = OrderByUploadDate
	}
	if dir == "" {
		dir = Desc
	}
	return field, dir
}
