// Package version derives the Version Identifier stamped onto each archived
// report: a calendar date, optionally followed by a short hash.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// DateLayout is the date component of every identifier. Year-first and fixed
// width, so a reverse lexical sort of identifiers is newest first.
const DateLayout = "2006-01-02"

// Separator joins the date and the optional hash suffix.
const Separator = "_"

// ID is a Version Identifier such as "2024-06-01" or "2024-06-01_a1b2c3d".
type ID string

// String returns the identifier text.
func (id ID) String() string { return string(id) }

// Date returns the date component of the identifier, or the zero time if the
// identifier does not parse.
func (id ID) Date() time.Time {
	d, _, err := Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	return d
}

// Hash returns the hash suffix, or "" when the identifier has none.
func (id ID) Hash() string {
	_, h, err := Parse(string(id))
	if err != nil {
		return ""
	}
	return h
}

// Parse splits an identifier into its date and hash suffix.
func Parse(s string) (time.Time, string, error) {
	if len(s) < len(DateLayout) {
		return time.Time{}, "", fmt.Errorf("version: %q is too short", s)
	}
	date, err := time.Parse(DateLayout, s[:len(DateLayout)])
	if err != nil {
		return time.Time{}, "", fmt.Errorf("version: parse date in %q: %w", s, err)
	}
	rest := s[len(DateLayout):]
	if rest == "" {
		return date, "", nil
	}
	if !strings.HasPrefix(rest, Separator) || len(rest) == len(Separator) {
		return time.Time{}, "", fmt.Errorf("version: malformed suffix in %q", s)
	}
	return date, rest[len(Separator):], nil
}

// HashFunc returns a short hash for the primary file being versioned.
type HashFunc func(primary string) (string, error)

// Namer assigns identifiers. The zero value names by the current local date.
type Namer struct {
	Now   func() time.Time // clock; defaults to time.Now
	Fixed string           // date override in DateLayout; replaces the clock
	Hash  HashFunc         // optional suffix source; nil disables the suffix
}

// Name returns the identifier for primary. It never fails: an unusable Fixed
// date falls back to the clock and a failing hash source to the bare date.
func (n Namer) Name(primary string) ID {
	date := n.date()
	if n.Hash == nil {
		return ID(date)
	}
	h, err := n.Hash(primary)
	h = sanitize(h)
	if err != nil || h == "" {
		return ID(date)
	}
	return ID(date + Separator + h)
}

func (n Namer) date() string {
	if n.Fixed != "" {
		if _, err := time.Parse(DateLayout, n.Fixed); err == nil {
			return n.Fixed
		}
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return now().Format(DateLayout)
}

// sanitize keeps only characters that are safe inside a file name and cannot
// be confused with the separator.
func sanitize(h string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(h) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ShortHasher is satisfied by *git.Runner.
type ShortHasher interface {
	ShortHash(length int) (string, error)
}

// GitHash uses the short commit hash of the working tree's HEAD.
func GitHash(src ShortHasher, length int) HashFunc {
	return func(string) (string, error) {
		return src.ShortHash(length)
	}
}

// ContentHash hashes the primary file's bytes with sha256 and keeps the first
// length hex characters.
func ContentHash(length int) HashFunc {
	return func(primary string) (string, error) {
		f, err := os.Open(primary)
		if err != nil {
			return "", fmt.Errorf("version: open %s: %w", primary, err)
		}
		defer f.Close()

		h := sha256.New()
		if _, err := io.Copy(h, f); err != nil {
			return "", fmt.Errorf("version: hash %s: %w", primary, err)
		}
		sum := hex.EncodeToString(h.Sum(nil))
		if length > 0 && length < len(sum) {
			sum = sum[:length]
		}
		return sum, nil
	}
}
