package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"reviewable/internal/domain"
)

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, rv *domain.Review) error {
	res, err := r.db.ExecContext(ctx, insertReviewSQL,
		rv.Title,
		rv.Body,
		rv.Reviewable.Type,
		rv.Reviewable.ID,
		valInt64(rv.UserID),
		rv.Role,
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = id
	return nil
}

func (r *Repo) UpdateContent(ctx context.Context, rv domain.Review) error {
	res, err := r.db.ExecContext(ctx, updateContentSQL, rv.Title, rv.Body, rv.UpdatedAt, rv.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 for unchanged rows too; tell the two apart.
		if _, err := r.Get(ctx, rv.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repo) DeleteForReviewable(ctx context.Context, ref domain.Ref) (int64, error) {
	res, err := r.db.ExecContext(ctx, deleteForReviewableSQL, ref.Type, ref.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *Repo) Get(ctx context.Context, id int64) (domain.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, getReviewSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Review{}, fmt.Errorf("review %d: %w", id, domain.ErrNotFound)
		}
		return domain.Review{}, err
	}
	return rv, nil
}

func (r *Repo) List(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	q, args, err := listQuery(f).ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// listQuery builds the finder SELECT; it hits idx_reviews_reviewable or
// idx_reviews_user depending on which filters are set.
func listQuery(f domain.ReviewFilter) sq.SelectBuilder {
	b := sq.Select(reviewColumns...).From("reviews")
	if f.UserID != nil {
		b = b.Where(sq.Eq{"user_id": *f.UserID})
	}
	if f.ReviewableType != "" {
		b = b.Where(sq.Eq{"reviewable_type": f.ReviewableType})
	}
	if f.ReviewableID != nil {
		b = b.Where(sq.Eq{"reviewable_id": *f.ReviewableID})
	}
	if f.Role != "" {
		b = b.Where(sq.Eq{"role": f.Role})
	}
	if f.Order == domain.OrderInOrder {
		b = b.OrderBy("created_at ASC", "id ASC")
	} else {
		b = b.OrderBy("created_at DESC", "id DESC")
	}
	if f.Limit > 0 {
		b = b.Limit(uint64(f.Limit))
	}
	return b
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReview(s scanner) (domain.Review, error) {
	var (
		rv     domain.Review
		body   sql.NullString
		userID sql.NullInt64
	)
	if err := s.Scan(
		&rv.ID,
		&rv.Title,
		&body,
		&rv.Reviewable.Type,
		&rv.Reviewable.ID,
		&userID,
		&rv.Role,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	); err != nil {
		return domain.Review{}, err
	}
	if body.Valid {
		rv.Body = body.String
	}
	if userID.Valid {
		uid := userID.Int64
		rv.UserID = &uid
	}
	return rv, nil
}
