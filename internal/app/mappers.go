package app

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"reviewable/internal/domain"
)

/********** seed file shape **********/

// Seed is the importer's input document.
type Seed struct {
	Reviewables []SeedTarget `yaml:"reviewables"`
}

type SeedTarget struct {
	Type    string       `yaml:"type"`
	ID      int64        `yaml:"id"`
	Replace bool         `yaml:"replace"`
	Reviews []SeedReview `yaml:"reviews"`
}

type SeedReview struct {
	Role      string     `yaml:"role"`
	Title     string     `yaml:"title"`
	Body      string     `yaml:"body"`
	UserID    *int64     `yaml:"user_id"`
	CreatedAt *time.Time `yaml:"created_at"`
}

// ParseSeed decodes a YAML seed document. Unknown keys are rejected so typos
// in role or field names do not import silently.
func ParseSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Seed{}, nil
		}
		return Seed{}, fmt.Errorf("parse seed: %w", err)
	}
	for i, t := range s.Reviewables {
		if strings.TrimSpace(t.Type) == "" {
			return Seed{}, fmt.Errorf("parse seed: reviewables[%d]: type is required", i)
		}
	}
	return s, nil
}

// ErrEmptySeed is reported by Seed.Validate.
var ErrEmptySeed = errors.New("seed has no reviewables")

// Validate reports documents that would import nothing.
func (s Seed) Validate() error {
	if len(s.Reviewables) == 0 {
		return fmt.Errorf("import: %w", ErrEmptySeed)
	}
	return nil
}

/********** seed → domain **********/

func (t SeedTarget) ref() domain.Ref { return domain.Ref{Type: t.Type, ID: t.ID} }

func mapSeedReview(in SeedReview) domain.Review {
	rv := domain.Review{
		Title: strings.TrimSpace(in.Title),
		Body:  in.Body,
	}
	if in.UserID != nil {
		uid := *in.UserID
		rv.UserID = &uid
	}
	if in.CreatedAt != nil {
		rv.CreatedAt = in.CreatedAt.UTC()
	}
	return rv
}

func roleOf(in SeedReview) string {
	if r := strings.TrimSpace(in.Role); r != "" {
		return r
	}
	return domain.DefaultRole
}
