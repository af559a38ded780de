package domain

import (
	"cmp"
	"slices"
)

type Order int

const (
	// OrderRecent sorts newest first (created_at DESC, id DESC).
	OrderRecent Order = iota
	// OrderInOrder sorts oldest first (created_at ASC, id ASC).
	OrderInOrder
)

func compareCreated(a, b Review) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// InOrder returns a copy of rs sorted by creation time ascending.
func InOrder(rs []Review) []Review {
	out := slices.Clone(rs)
	slices.SortStableFunc(out, compareCreated)
	return out
}

// Recent returns a copy of rs sorted by creation time descending.
func Recent(rs []Review) []Review {
	out := slices.Clone(rs)
	slices.SortStableFunc(out, func(a, b Review) int { return compareCreated(b, a) })
	return out
}

// Sort applies o to rs.
func Sort(rs []Review, o Order) []Review {
	if o == OrderInOrder {
		return InOrder(rs)
	}
	return Recent(rs)
}

// Limit keeps at most n reviews; n <= 0 means no limit.
func Limit(rs []Review, n int) []Review {
	if n <= 0 || len(rs) <= n {
		return rs
	}
	return rs[:n]
}
