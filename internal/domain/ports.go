package domain

import "context"

type ReviewRepository interface {
	// Write paths
	Create(ctx context.Context, r *Review) error
	UpdateContent(ctx context.Context, r Review) error
	DeleteForReviewable(ctx context.Context, ref Ref) (int64, error)

	// Read paths
	Get(ctx context.Context, id int64) (Review, error)
	List(ctx context.Context, f ReviewFilter) ([]Review, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// ReviewFilter selects reviews. Zero-valued fields do not filter.
type ReviewFilter struct {
	UserID         *int64
	ReviewableType string
	ReviewableID   *int64
	Role           string
	Order          Order
	Limit          int
}

// Match reports whether r satisfies every set field of f.
func (f ReviewFilter) Match(r Review) bool {
	if f.UserID != nil && (r.UserID == nil || *r.UserID != *f.UserID) {
		return false
	}
	if f.ReviewableType != "" && r.Reviewable.Type != f.ReviewableType {
		return false
	}
	if f.ReviewableID != nil && r.Reviewable.ID != *f.ReviewableID {
		return false
	}
	if f.Role != "" && r.Role != f.Role {
		return false
	}
	return true
}
