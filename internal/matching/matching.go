// Package matching suggests categories for imported transactions from
// user-defined description patterns.
package matching

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/finsight/internal/apperr"
)

var ErrNotFound = fmt.Errorf("category rule %w", apperr.ErrNotFound)

// Rule assigns Category to transactions whose description contains Pattern,
// ignoring case.
type Rule struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Pattern   string
	Category  string
	CreatedAt time.Time
}

// Rules is a set of rules ordered so the first match is the best one.
type Rules []*Rule

// NewRules orders rules by pattern length, longest first, newest first on
// ties.
func NewRules(rules []*Rule) Rules {
	sorted := slices.Clone(rules)
	slices.SortStableFunc(sorted, func(a, b *Rule) int {
		if c := cmp.Compare(len(b.Pattern), len(a.Pattern)); c != 0 {
			return c
		}

		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return sorted
}

// Match returns the category of the best rule matching description.
func (rs Rules) Match(description string) (string, bool) {
	desc := strings.ToLower(description)

	for _, r := range rs {
		if strings.Contains(desc, strings.ToLower(r.Pattern)) {
			return r.Category, true
		}
	}

	return "", false
}
