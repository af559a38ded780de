package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"reviewable/internal/domain"
)

func ids(rs []domain.Review) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestOrderings(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rs := []domain.Review{
		{ID: 1, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 2, CreatedAt: base},
		{ID: 3, CreatedAt: base.Add(time.Hour)},
	}

	require.Equal(t, []int64{2, 3, 1}, ids(domain.InOrder(rs)))
	require.Equal(t, []int64{1, 3, 2}, ids(domain.Recent(rs)))
	require.Equal(t, []int64{1, 3, 2}, ids(domain.Sort(rs, domain.OrderRecent)))

	// input untouched
	require.Equal(t, []int64{1, 2, 3}, ids(rs))
}

func TestLimit(t *testing.T) {
	rs := []domain.Review{{ID: 1}, {ID: 2}, {ID: 3}}

	require.Len(t, domain.Limit(rs, 2), 2)
	require.Len(t, domain.Limit(rs, 0), 3)
	require.Len(t, domain.Limit(rs, 10), 3)
}
