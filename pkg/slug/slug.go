// Package slug derives URL-safe identifiers that are unique among the
// active children of a parent scope.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultRoot is used when the label slugifies to nothing.
	DefaultRoot = "project"

	// maxAttempts bounds the numbered-candidate probe before falling back
	// to a random suffix.
	maxAttempts = 50

	randomSuffixLen = 8
)

var (
	unsafeChars  = regexp.MustCompile(`[^a-z0-9]+`)
	asciiFolding = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify lowercases, ASCII-transliterates and hyphenates a label. The
// result may be empty if the label has no usable characters.
func Slugify(label string) string {
	folded, _, err := transform.String(asciiFolding, label)
	if err != nil {
		folded = label
	}
	s := strings.ToLower(folded)
	s = unsafeChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// SiblingChecker reports whether an active (non-deleted) sibling with the
// given slug already exists in the scope.
type SiblingChecker interface {
	ExistsBySlug(ctx context.Context, scopeID uuid.UUID, slug string) (bool, error)
}

// Allocator proposes slugs that are unique within a parent scope. The
// storage layer's uniqueness constraint stays the authoritative guard; the
// allocator only reduces how often an insert bounces off it.
type Allocator struct {
	checker SiblingChecker
}

// NewAllocator creates an allocator over the given sibling checker.
func NewAllocator(checker SiblingChecker) *Allocator {
	return &Allocator{checker: checker}
}

// Allocate returns a slug for label that no active sibling in scope holds.
// Candidates are probed in order: root, root-2, root-3, ... After
// maxAttempts collisions it falls back to root plus a random suffix,
// returned without a re-check. The residual collision probability of the
// fallback is accepted; a concurrent insert is caught by the storage
// uniqueness constraint either way.
func (a *Allocator) Allocate(ctx context.Context, scopeID uuid.UUID, label string) (string, error) {
	root := Slugify(label)
	if root == "" {
		root = DefaultRoot
	}

	for i := 1; i <= maxAttempts; i++ {
		candidate := root
		if i > 1 {
			candidate = Slugify(fmt.Sprintf("%s %d", root, i))
		}

		exists, err := a.checker.ExistsBySlug(ctx, scopeID, candidate)
		if err != nil {
			return "", fmt.Errorf("check slug %q: %w", candidate, err)
		}
		if !exists {
			return candidate, nil
		}
	}

	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:randomSuffixLen]
	return fmt.Sprintf("%s-%s", root, suffix), nil
}
