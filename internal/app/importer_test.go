package app_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewable/internal/app"
	"reviewable/internal/domain"
	"reviewable/internal/reviewable"
)

const seedYAML = `
reviewables:
  - type: Article
    id: 1
    reviews:
      - title: Great
        body: Loved it
        user_id: 7
        created_at: 2024-01-01T10:00:00Z
      - role: endorsements
        title: Nice
      - role: shoutouts
        title: not declared
  - type: Article
    id: 2
    reviews:
      - title: "` + "0123456789012345678901234567890123456789012345678901" + `"
  - type: Secret
    id: 1
    reviews:
      - title: never stored
`

func TestParseSeed(t *testing.T) {
	s, err := app.ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	require.Len(t, s.Reviewables, 3)
	require.Equal(t, "Article", s.Reviewables[0].Type)
	require.Equal(t, int64(7), *s.Reviewables[0].Reviews[0].UserID)
	require.True(t, s.Reviewables[0].Reviews[0].CreatedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	_, err = app.ParseSeed(strings.NewReader("reviewables:\n  - type: Article\n    rating: 5\n"))
	require.Error(t, err)

	_, err = app.ParseSeed(strings.NewReader("reviewables:\n  - id: 1\n"))
	require.Error(t, err)

	empty, err := app.ParseSeed(strings.NewReader(""))
	require.NoError(t, err)
	require.ErrorIs(t, empty.Validate(), app.ErrEmptySeed)
}

func TestImporter_Import(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)
	reg := reviewable.NewRegistry(svc)
	reg.Declare("Article", "reviews", "endorsements")

	s, err := app.ParseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)

	rep, err := app.NewImporter(reg, 2, 0).Import(ctx, s)
	require.NoError(t, err)
	require.NotEmpty(t, rep.Batch)
	require.Equal(t, 2, rep.Added)
	require.Equal(t, 2, rep.Skipped)
	require.Equal(t, 1, rep.Failed)

	got, err := svc.FindReviewsForReviewable(ctx, "Article", 1, "reviews")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Great", got[0].Title)
	require.Equal(t, "Loved it", got[0].Body)
	require.Equal(t, int64(7), *got[0].UserID)
	require.True(t, got[0].CreatedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))

	end, err := svc.FindReviewsForReviewable(ctx, "Article", 1, "endorsements")
	require.NoError(t, err)
	require.Len(t, end, 1)

	secret, err := svc.FindReviews(ctx, domain.ReviewFilter{ReviewableType: "Secret"})
	require.NoError(t, err)
	require.Empty(t, secret)
}

func TestImporter_Replace(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(nil)
	reg := reviewable.NewRegistry(svc)
	c := reg.Declare("Article")
	acc, _ := c.Role("reviews")
	require.NoError(t, acc.Add(ctx, domain.Ref{Type: "Article", ID: 1}, &domain.Review{Title: "stale"}))

	s := app.Seed{Reviewables: []app.SeedTarget{{
		Type: "Article", ID: 1, Replace: true,
		Reviews: []app.SeedReview{{Title: "fresh"}},
	}}}
	rep, err := app.NewImporter(reg, 1, 1000).Import(ctx, s)
	require.NoError(t, err)
	require.Equal(t, int64(1), rep.Removed)
	require.Equal(t, 1, rep.Added)

	got, err := svc.FindReviewsForReviewable(ctx, "Article", 1, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "fresh", got[0].Title)
}

func TestImporter_CanceledContext(t *testing.T) {
	svc, _ := newService(nil)
	reg := reviewable.NewRegistry(svc)
	reg.Declare("Article")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := app.Seed{Reviewables: []app.SeedTarget{{Type: "Article", ID: 1, Reviews: []app.SeedReview{{}}}}}
	rep, err := app.NewImporter(reg, 1, 0).Import(ctx, s)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, rep.Added)
}
