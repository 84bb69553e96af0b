// Package slug derives URL-safe identifiers from titles and names and
// resolves collisions against an existing set.
package slug

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSuffix bounds the numeric suffix Resolve will try before giving up.
const MaxSuffix = 1000

var (
	// ErrEmpty is returned when a name contains no letters or digits.
	ErrEmpty = errors.New("slug: name has no letters or digits")
	// ErrExhausted is returned when every suffix up to MaxSuffix is taken.
	ErrExhausted = errors.New("slug: no free suffix")
)

// ExistsFunc reports whether a slug is already taken.
type ExistsFunc func(ctx context.Context, slug string) (bool, error)

// Make converts s to a lowercase, hyphen-separated slug. Accented letters are
// folded to their base form and other scripts are transliterated to ASCII;
// anything left outside [a-z0-9] becomes a separator.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(unidecode.Unidecode(folded)))

	var b strings.Builder
	prev := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// Resolve returns base if it is free, otherwise the first of base-1, base-2,
// ... that exists reports as free.
func Resolve(ctx context.Context, base string, exists ExistsFunc) (string, error) {
	if base == "" {
		return "", ErrEmpty
	}
	candidate := base
	for n := 1; ; n++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("slug: check %q: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		if n > MaxSuffix {
			return "", ErrExhausted
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// For is Make followed by Resolve.
func For(ctx context.Context, name string, exists ExistsFunc) (string, error) {
	return Resolve(ctx, Make(name), exists)
}
