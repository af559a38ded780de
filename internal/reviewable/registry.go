package reviewable

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"reviewable/internal/domain"
)

// Target is implemented by any entity that can receive reviews.
type Target interface {
	ReviewableType() string
	ReviewableID() int64
}

// Loader loads an instance of a registered type by id. It returns
// domain.ErrNotFound when no such instance exists.
type Loader func(ctx context.Context, id int64) (Target, error)

// Store is the persistence surface the capability writes and reads through.
type Store interface {
	CreateReview(ctx context.Context, r *domain.Review) error
	FindReviewsForReviewable(ctx context.Context, typeName string, targetID int64, role string) ([]domain.Review, error)
	FindReviewsByUserAndType(ctx context.Context, userID int64, typeName, role string) ([]domain.Review, error)
	DestroyReviewable(ctx context.Context, ref domain.Ref) (int64, error)
}

// Options is the optional declaration config. Only its presence is kept.
type Options map[string]any

// Registry maps type names to loaders and to their reviewable declarations.
// It is populated at startup and read concurrently afterwards.
type Registry struct {
	store Store

	mu      sync.RWMutex
	loaders map[string]Loader
	decls   map[string]*Capability
}

func NewRegistry(store Store) *Registry {
	return &Registry{
		store:   store,
		loaders: map[string]Loader{},
		decls:   map[string]*Capability{},
	}
}

// RegisterType adds name to the type registry. Registration alone does not
// make a type reviewable.
func (r *Registry) RegisterType(name string, load Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[name] = load
}

// Declare makes typeName reviewable under roles. Blank roles are dropped and
// an empty list falls back to domain.DefaultRole. Declaring again replaces
// the previous role set.
func (r *Registry) Declare(typeName string, roles ...string) *Capability {
	return r.DeclareWithOptions(typeName, nil, roles...)
}

func (r *Registry) DeclareWithOptions(typeName string, opts Options, roles ...string) *Capability {
	c := newCapability(typeName, normalizeRoles(roles), opts, r.store)

	r.mu.Lock()
	prev, replaced := r.decls[typeName]
	r.decls[typeName] = c
	r.mu.Unlock()

	ev := log.Debug().Str("type", typeName).Strs("roles", c.roles)
	if replaced {
		ev = ev.Strs("previous_roles", prev.roles)
	}
	ev.Msg("reviewable declared")

	// "review" and "reviews" both singularize to add_review
	owner := make(map[string]string, len(c.roles))
	for _, a := range c.Accessors() {
		if first, taken := owner[a.Names.Add]; taken {
			log.Warn().
				Str("type", typeName).
				Str("accessor", a.Names.Add).
				Str("resolves_to", first).
				Str("shadowed", a.Role).
				Msg("roles share an add accessor name")
			continue
		}
		owner[a.Names.Add] = a.Role
	}
	return c
}

// Capability returns the declaration for typeName, if any.
func (r *Registry) Capability(typeName string) (*Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.decls[typeName]
	return c, ok
}

// IsReviewable reports whether typeName is both registered and declared.
func (r *Registry) IsReviewable(typeName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, registered := r.loaders[typeName]
	_, declared := r.decls[typeName]
	return registered && declared
}

// Types lists the declared type names.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.decls))
	for name := range r.decls {
		out = append(out, name)
	}
	return out
}

// Ready reports whether startup wiring left the registry usable: at least
// one declared type, and a loader for every declared type.
func (r *Registry) Ready() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.decls) == 0 {
		return errors.New("no reviewable types declared")
	}
	for name := range r.decls {
		if _, ok := r.loaders[name]; !ok {
			return fmt.Errorf("reviewable type %s has no registered loader", name)
		}
	}
	return nil
}

// FindReviewable resolves typeName and loads the instance with id. Names that
// are not registered, or registered but not declared reviewable, resolve to
// nothing. A missing instance also resolves to nothing; other loader errors
// are returned.
func (r *Registry) FindReviewable(ctx context.Context, typeName string, id int64) (Target, bool, error) {
	r.mu.RLock()
	load, registered := r.loaders[typeName]
	_, declared := r.decls[typeName]
	r.mu.RUnlock()

	if !registered || !declared {
		log.Debug().Str("type", typeName).Bool("registered", registered).Msg("refusing to resolve non-reviewable type")
		return nil, false, nil
	}

	t, err := load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s#%d: %w", typeName, id, err)
	}
	if t == nil {
		return nil, false, nil
	}
	return t, true, nil
}

func normalizeRoles(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	if len(out) == 0 {
		return []string{domain.DefaultRole}
	}
	return out
}
