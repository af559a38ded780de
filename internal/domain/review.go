package domain

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/jinzhu/inflection"
)

// DefaultRole is the role used when a type declares no roles.
const DefaultRole = "reviews"

// TitleMaxLen mirrors the reviews.title column width.
const TitleMaxLen = 50

// Ref is a polymorphic reference to a reviewable target.
type Ref struct {
	Type string `json:"type"`
	ID   int64  `json:"id"`
}

func (r Ref) ReviewableType() string { return r.Type }
func (r Ref) ReviewableID() int64     { return r.ID }

func (r Ref) String() string { return fmt.Sprintf("%s#%d", r.Type, r.ID) }

type Review struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	Reviewable Ref       `json:"reviewable"`
	UserID     *int64    `json:"user_id,omitempty"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsReviewType reports whether candidate names the same role as r once both
// are singularized. The comparison is case-sensitive.
func (r Review) IsReviewType(candidate string) bool {
	return inflection.Singular(candidate) == inflection.Singular(r.Role)
}

// Validate checks the bounds the reviews table enforces.
func (r Review) Validate() error {
	if n := utf8.RuneCountInString(r.Title); n > TitleMaxLen {
		return fmt.Errorf("title has %d characters, max %d: %w", n, TitleMaxLen, ErrTitleTooLong)
	}
	return nil
}

// ContentPatch carries the fields an owner may change after creation.
type ContentPatch struct {
	Title *string
	Body  *string
}

func (p ContentPatch) Apply(r *Review) {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Body != nil {
		r.Body = *p.Body
	}
}
