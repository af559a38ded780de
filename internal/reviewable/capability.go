package reviewable

import (
	"context"
	"fmt"

	"github.com/jinzhu/inflection"

	"reviewable/internal/domain"
)

// Names are the accessor names a role exposes, as a host would spell them.
type Names struct {
	Collection         string
	FindFor            string
	FindByUser         string
	OrderedBySubmitted string
	Add                string
}

func namesFor(role string) Names {
	coll := role + "_reviews"
	if role == domain.DefaultRole {
		coll = domain.DefaultRole
	}
	return Names{
		Collection:         coll,
		FindFor:            "find_" + coll + "_for",
		FindByUser:         "find_" + coll + "_by_user",
		OrderedBySubmitted: coll + "_ordered_by_submitted",
		Add:                "add_" + inflection.Singular(role),
	}
}

// Accessors are the per-role handles of a Capability.
type Accessors struct {
	Role  string
	Names Names

	// Collection returns the reviews of target under Role, newest first.
	Collection func(ctx context.Context, target Target) ([]domain.Review, error)
	// FindFor returns the reviews of any instance of the declared type.
	FindFor func(ctx context.Context, target Target) ([]domain.Review, error)
	// FindByUser returns every review of Role on the declared type by userID.
	FindByUser func(ctx context.Context, userID int64) ([]domain.Review, error)
	// OrderedBySubmitted returns the reviews of target, newest first.
	OrderedBySubmitted func(ctx context.Context, target Target) ([]domain.Review, error)
	// Add stamps Role and the target reference on r and persists it.
	Add func(ctx context.Context, target Target, r *domain.Review) error
}

// Capability is a reviewable declaration for one type.
type Capability struct {
	typeName  string
	roles     []string
	opts      Options
	accessors map[string]*Accessors
	store     Store
}

func newCapability(typeName string, roles []string, opts Options, store Store) *Capability {
	c := &Capability{
		typeName:  typeName,
		roles:     roles,
		opts:      opts,
		accessors: make(map[string]*Accessors, len(roles)),
		store:     store,
	}
	for _, role := range roles {
		c.accessors[role] = c.build(role)
	}
	return c
}

func (c *Capability) build(role string) *Accessors {
	forTarget := func(ctx context.Context, t Target) ([]domain.Review, error) {
		if err := c.check(t); err != nil {
			return nil, err
		}
		return c.store.FindReviewsForReviewable(ctx, c.typeName, t.ReviewableID(), role)
	}
	return &Accessors{
		Role:               role,
		Names:              namesFor(role),
		Collection:         forTarget,
		FindFor:            forTarget,
		OrderedBySubmitted: forTarget,
		FindByUser: func(ctx context.Context, userID int64) ([]domain.Review, error) {
			return c.store.FindReviewsByUserAndType(ctx, userID, c.typeName, role)
		},
		Add: func(ctx context.Context, t Target, r *domain.Review) error {
			if err := c.check(t); err != nil {
				return err
			}
			r.Role = role
			r.Reviewable = domain.Ref{Type: c.typeName, ID: t.ReviewableID()}
			return c.store.CreateReview(ctx, r)
		},
	}
}

func (c *Capability) check(t Target) error {
	if t == nil {
		return fmt.Errorf("nil target for %s capability: %w", c.typeName, domain.ErrNotReviewable)
	}
	if got := t.ReviewableType(); got != c.typeName {
		return fmt.Errorf("%s target used with %s capability: %w", got, c.typeName, domain.ErrNotReviewable)
	}
	return nil
}

func (c *Capability) TypeName() string { return c.typeName }

// Roles returns the declared roles in declaration order.
func (c *Capability) Roles() []string { return append([]string(nil), c.roles...) }

// Options returns the declaration config and whether one was given.
func (c *Capability) Options() (Options, bool) { return c.opts, c.opts != nil }

// Role returns the accessors for role.
func (c *Capability) Role(role string) (*Accessors, bool) {
	a, ok := c.accessors[role]
	return a, ok
}

// Accessors returns one entry per declared role, in declaration order.
func (c *Capability) Accessors() []*Accessors {
	out := make([]*Accessors, 0, len(c.roles))
	for _, r := range c.roles {
		out = append(out, c.accessors[r])
	}
	return out
}

// Accessor looks up accessors by their collection or add name, e.g.
// "endorsements_reviews" or "add_endorsement".
func (c *Capability) Accessor(name string) (*Accessors, bool) {
	for _, r := range c.roles {
		a := c.accessors[r]
		if a.Names.Collection == name || a.Names.Add == name {
			return a, true
		}
	}
	return nil, false
}

// Destroy deletes every review of target, across all roles.
func (c *Capability) Destroy(ctx context.Context, t Target) (int64, error) {
	if err := c.check(t); err != nil {
		return 0, err
	}
	return c.store.DestroyReviewable(ctx, domain.Ref{Type: c.typeName, ID: t.ReviewableID()})
}
