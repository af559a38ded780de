package reviewable_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"reviewable/internal/domain"
)

func TestAdd_StampsRoleAndTarget(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()
	c := reg.Declare("Article", "reviews", "endorsements")
	e, _ := c.Role("endorsements")

	rv := &domain.Review{
		Title:      "Nice",
		Role:       "reviews",
		Reviewable: domain.Ref{Type: "Photo", ID: 77},
	}
	require.NoError(t, e.Add(ctx, article{id: 3}, rv))

	require.NotZero(t, rv.ID)
	require.Equal(t, "endorsements", rv.Role)
	require.Equal(t, domain.Ref{Type: "Article", ID: 3}, rv.Reviewable)
	require.True(t, rv.IsReviewType("endorsement"))
}

func TestAdd_RejectsForeignTarget(t *testing.T) {
	reg, _ := newRegistry()
	c := reg.Declare("Article")
	a, _ := c.Role("reviews")

	err := a.Add(context.Background(), photo{id: 1}, &domain.Review{})
	require.ErrorIs(t, err, domain.ErrNotReviewable)
}

func TestAccessors_RejectNilTarget(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()
	a, _ := reg.Declare("Article").Role("reviews")

	require.ErrorIs(t, a.Add(ctx, nil, &domain.Review{}), domain.ErrNotReviewable)
	_, err := a.Collection(ctx, nil)
	require.ErrorIs(t, err, domain.ErrNotReviewable)
	_, err = a.OrderedBySubmitted(ctx, photo{id: 1})
	require.ErrorIs(t, err, domain.ErrNotReviewable)

	c, _ := reg.Capability("Article")
	_, err = c.Destroy(ctx, nil)
	require.ErrorIs(t, err, domain.ErrNotReviewable)
}

func TestFindByUser_ScopedToTypeAndRole(t *testing.T) {
	ctx := context.Background()
	reg, _ := newRegistry()
	arts := reg.Declare("Article", "reviews", "endorsements")
	pics := reg.Declare("Photo")
	uid, other := int64(11), int64(12)

	ar, _ := arts.Role("reviews")
	ae, _ := arts.Role("endorsements")
	pr, _ := pics.Role("reviews")

	require.NoError(t, ar.Add(ctx, article{id: 1}, &domain.Review{Title: "a1", UserID: &uid}))
	require.NoError(t, ar.Add(ctx, article{id: 2}, &domain.Review{Title: "a2", UserID: &uid}))
	require.NoError(t, ar.Add(ctx, article{id: 2}, &domain.Review{Title: "x", UserID: &other}))
	require.NoError(t, ae.Add(ctx, article{id: 1}, &domain.Review{Title: "e1", UserID: &uid}))
	require.NoError(t, pr.Add(ctx, photo{id: 1}, &domain.Review{Title: "p1", UserID: &uid}))

	got, err := ar.FindByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		require.Equal(t, "Article", r.Reviewable.Type)
		require.Equal(t, "reviews", r.Role)
		require.Equal(t, uid, *r.UserID)
	}
	require.False(t, got[0].CreatedAt.Before(got[1].CreatedAt))

	got, err = ae.FindByUser(ctx, uid)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "e1", got[0].Title)
}

func TestDestroy_RemovesEveryRole(t *testing.T) {
	ctx := context.Background()
	reg, svc := newRegistry()
	c := reg.Declare("Article", "reviews", "endorsements")
	for _, a := range c.Accessors() {
		require.NoError(t, a.Add(ctx, article{id: 1}, &domain.Review{}))
	}

	n, err := c.Destroy(ctx, article{id: 1})
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	left, err := svc.FindReviews(ctx, domain.ReviewFilter{ReviewableType: "Article"})
	require.NoError(t, err)
	require.Empty(t, left)

	_, err = c.Destroy(ctx, photo{id: 1})
	require.ErrorIs(t, err, domain.ErrNotReviewable)
}

// Article accepts reviews and endorsements; each accessor only sees its own role.
func TestArticleScenario(t *testing.T) {
	ctx := context.Background()
	reg, svc := newRegistry()
	reg.RegisterType("Article", articleLoader(1))
	c := reg.Declare("Article", "reviews", "endorsements")

	a1, ok, err := reg.FindReviewable(ctx, "Article", 1)
	require.NoError(t, err)
	require.True(t, ok)

	addReview, ok := c.Accessor("add_review")
	require.True(t, ok)
	addEndorsement, ok := c.Accessor("add_endorsement")
	require.True(t, ok)

	require.NoError(t, addReview.Add(ctx, a1, &domain.Review{Title: "Great"}))
	require.NoError(t, addEndorsement.Add(ctx, a1, &domain.Review{Title: "Nice"}))

	reviews, err := addReview.Collection(ctx, a1)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.Equal(t, "Great", reviews[0].Title)
	require.Equal(t, "reviews", reviews[0].Role)

	endorsements, ok := c.Accessor("endorsements_reviews")
	require.True(t, ok)
	got, err := endorsements.Collection(ctx, a1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Nice", got[0].Title)
	require.Equal(t, "endorsements", got[0].Role)

	found, err := svc.FindReviewsForReviewable(ctx, "Article", a1.ReviewableID(), "reviews")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Great", found[0].Title)

	ordered, err := addReview.OrderedBySubmitted(ctx, a1)
	require.NoError(t, err)
	require.Equal(t, found, ordered)

	viaClass, err := addReview.FindFor(ctx, a1)
	require.NoError(t, err)
	require.Equal(t, found, viaClass)
}
