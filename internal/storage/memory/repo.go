// Package memory is a process-local review store used when no MySQL DSN is
// configured and by tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"reviewable/internal/domain"
)

type Repo struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]domain.Review
}

func New() *Repo { return &Repo{rows: map[int64]domain.Review{}} }

func (r *Repo) Create(ctx context.Context, rv *domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	rv.ID = r.nextID
	r.rows[rv.ID] = clone(*rv)
	return nil
}

func (r *Repo) UpdateContent(ctx context.Context, rv domain.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.rows[rv.ID]
	if !ok {
		return fmt.Errorf("review %d: %w", rv.ID, domain.ErrNotFound)
	}
	cur.Title, cur.Body, cur.UpdatedAt = rv.Title, rv.Body, rv.UpdatedAt
	r.rows[rv.ID] = cur
	return nil
}

func (r *Repo) DeleteForReviewable(ctx context.Context, ref domain.Ref) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, rv := range r.rows {
		if rv.Reviewable == ref {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return domain.Review{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	rv, ok := r.rows[id]
	if !ok {
		return domain.Review{}, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
	}
	return clone(rv), nil
}

func (r *Repo) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]domain.Review, 0, len(r.rows))
	for _, rv := range r.rows {
		if f.Match(rv) {
			out = append(out, clone(rv))
		}
	}
	r.mu.RUnlock()
	return domain.Limit(domain.Sort(out, f.Order), f.Limit), nil
}

func clone(rv domain.Review) domain.Review {
	if rv.UserID != nil {
		uid := *rv.UserID
		rv.UserID = &uid
	}
	return rv
}
