package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"reviewable/internal/adapters/observability"
	"reviewable/internal/domain"
)

// ReviewService is the access layer over the review collection. It also
// backs every reviewable capability, so reads made through a capability share
// the same cache.
type ReviewService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
	now      func() time.Time

	// writes counts invalidations; a read that saw it move while loading
	// drops what it just cached.
	writes atomic.Uint64
}

func NewReviewService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *ReviewService {
	return &ReviewService{repo: r, cache: c, cacheTTL: ttl, now: time.Now}
}

func roleOrDefault(role string) string {
	if role == "" {
		return domain.DefaultRole
	}
	return role
}

func targetKey(typeName string, id int64, role string) string {
	return fmt.Sprintf("reviews:for:%s:%d:%s", typeName, id, role)
}

// typeName "" means any reviewable type.
func userKey(userID int64, typeName, role string) string {
	if typeName == "" {
		typeName = "*"
	}
	return fmt.Sprintf("reviews:by:%d:%s:%s", userID, typeName, role)
}

// FindReviewsByUser returns every review by userID under role, newest first.
func (s *ReviewService) FindReviewsByUser(ctx context.Context, userID int64, role string) ([]domain.Review, error) {
	role = roleOrDefault(role)
	return s.cachedList(ctx, userKey(userID, "", role), domain.ReviewFilter{UserID: &userID, Role: role})
}

// FindReviewsByUserAndType narrows FindReviewsByUser to one reviewable type.
func (s *ReviewService) FindReviewsByUserAndType(ctx context.Context, userID int64, typeName, role string) ([]domain.Review, error) {
	role = roleOrDefault(role)
	return s.cachedList(ctx, userKey(userID, typeName, role), domain.ReviewFilter{
		UserID:         &userID,
		ReviewableType: typeName,
		Role:           role,
	})
}

// FindReviewsForReviewable returns the reviews of one target under role,
// newest first.
func (s *ReviewService) FindReviewsForReviewable(ctx context.Context, typeName string, targetID int64, role string) ([]domain.Review, error) {
	role = roleOrDefault(role)
	return s.cachedList(ctx, targetKey(typeName, targetID, role), domain.ReviewFilter{
		ReviewableType: typeName,
		ReviewableID:   &targetID,
		Role:           role,
	})
}

// FindReviews runs an uncached query; use it for the in-order listing and
// for limited reads.
func (s *ReviewService) FindReviews(ctx context.Context, f domain.ReviewFilter) ([]domain.Review, error) {
	rs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return rs, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id int64) (domain.Review, error) {
	return s.repo.Get(ctx, id)
}

func (s *ReviewService) cachedList(ctx context.Context, key string, f domain.ReviewFilter) ([]domain.Review, error) {
	var out []domain.Review
	if s.cache != nil {
		ok, err := s.cache.Get(ctx, key, &out)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		} else if ok {
			return out, nil
		}
	}

	gen := s.writes.Load()
	f.Order = domain.OrderRecent
	rs, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	// copy slice to avoid aliasing the repo's backing array
	out = append([]domain.Review(nil), rs...)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, out, s.ttlSeconds()); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("cache set failed")
		} else if s.writes.Load() != gen {
			// a write landed between List and Set; the entry may be stale
			if err := s.cache.Del(ctx, key); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("cache evict after racing write failed")
			}
		}
	}
	return out, nil
}

// CreateReview validates and persists r. Duplicates (same user, role and
// target) are allowed.
func (s *ReviewService) CreateReview(ctx context.Context, r *domain.Review) error {
	r.Role = roleOrDefault(r.Role)
	if err := r.Validate(); err != nil {
		return err
	}
	now := s.now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	if err := s.repo.Create(ctx, r); err != nil {
		observability.ObserveWrite("create", r.Role, err)
		return fmt.Errorf("create review for %s: %w", r.Reviewable, err)
	}
	observability.ObserveWrite("create", r.Role, nil)
	log.Debug().Int64("id", r.ID).Str("target", r.Reviewable.String()).Str("role", r.Role).Msg("review created")

	s.invalidate(ctx, *r)
	return nil
}

// UpdateContent changes title and body of review id. Only the authoring user
// may edit; the last write wins.
func (s *ReviewService) UpdateContent(ctx context.Context, id, actorID int64, p domain.ContentPatch) (domain.Review, error) {
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Review{}, err
	}
	if r.UserID == nil || *r.UserID != actorID {
		return domain.Review{}, fmt.Errorf("review %d, actor %d: %w", id, actorID, domain.ErrNotOwner)
	}
	p.Apply(&r)
	if err := r.Validate(); err != nil {
		return domain.Review{}, err
	}
	r.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateContent(ctx, r); err != nil {
		observability.ObserveWrite("update", r.Role, err)
		return domain.Review{}, fmt.Errorf("update review %d: %w", id, err)
	}
	observability.ObserveWrite("update", r.Role, nil)

	s.invalidate(ctx, r)
	return r, nil
}

// DestroyReviewable deletes every review attached to ref.
func (s *ReviewService) DestroyReviewable(ctx context.Context, ref domain.Ref) (int64, error) {
	// read first so the cache entries of every role and author can be dropped
	existing, err := s.repo.List(ctx, domain.ReviewFilter{ReviewableType: ref.Type, ReviewableID: &ref.ID})
	if err != nil {
		return 0, fmt.Errorf("list reviews for %s: %w", ref, err)
	}

	n, err := s.repo.DeleteForReviewable(ctx, ref)
	if err != nil {
		observability.ObserveWrite("destroy", "", err)
		return 0, fmt.Errorf("destroy reviews for %s: %w", ref, err)
	}
	observability.ObserveWrite("destroy", "", nil)
	log.Debug().Str("target", ref.String()).Int64("deleted", n).Msg("reviewable destroyed")

	for _, r := range existing {
		s.invalidate(ctx, r)
	}
	return n, nil
}

// ttlSeconds never returns 0: a zero expiry means "keep forever" to redis.
func (s *ReviewService) ttlSeconds() int {
	if secs := int(s.cacheTTL / time.Second); secs > 1 {
		return secs
	}
	return 1
}

func (s *ReviewService) invalidate(ctx context.Context, r domain.Review) {
	s.writes.Add(1)
	if s.cache == nil {
		return
	}
	keys := []string{targetKey(r.Reviewable.Type, r.Reviewable.ID, r.Role)}
	if r.UserID != nil {
		keys = append(keys,
			userKey(*r.UserID, "", r.Role),
			userKey(*r.UserID, r.Reviewable.Type, r.Role),
		)
	}
	for _, k := range keys {
		if err := s.cache.Del(ctx, k); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Str("key", k).Msg("cache invalidation failed")
		}
	}
}

// WithClock replaces the time source used for created_at/updated_at.
func (s *ReviewService) WithClock(now func() time.Time) *ReviewService {
	s.now = now
	return s
}
