// Package match implements wildcard pattern matching and ordered
// first-match rule resolution. A pattern is a literal string in which "*"
// matches zero or more characters; matching is case-insensitive and
// anchored over the entire subject.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/pkg/models"
)

// Matcher is a compiled wildcard pattern.
type Matcher struct {
	pattern string
	re      *regexp.Regexp
}

// Compile builds a Matcher from a wildcard pattern. Every character
// except "*" is treated literally; regex metacharacters in the literal
// portions are escaped so they cannot leak into the matching engine.
func Compile(pattern string) (*Matcher, error) {
	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}

	// Anchor both ends: "ErCore*" must not match "MyErCore-UI".
	re, err := regexp.Compile("(?i)^" + strings.Join(parts, ".*") + "$")
	if err != nil {
		return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
	}

	return &Matcher{pattern: pattern, re: re}, nil
}

// MustCompile is like Compile but panics on error. Useful for built-in
// patterns known to be valid.
func MustCompile(pattern string) *Matcher {
	m, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return m
}

// Match reports whether the subject matches the whole pattern.
func (m *Matcher) Match(subject string) bool {
	return m.re.MatchString(subject)
}

// Pattern returns the source pattern the Matcher was compiled from.
func (m *Matcher) Pattern() string {
	return m.pattern
}

// Resolve returns the value of the first rule whose pattern matches the
// subject, or fallback when no rule matches. Rules are evaluated strictly
// in the order given; callers must list specific patterns before any
// catch-all "*" or the specific rules become unreachable.
func Resolve(subject string, rules []models.Rule, fallback string) string {
	value, _ := ResolveRule(subject, rules, fallback)
	return value
}

// ResolveRule is Resolve plus the pattern of the winning rule, empty when
// the fallback was used. Rules with uncompilable patterns are skipped.
func ResolveRule(subject string, rules []models.Rule, fallback string) (value, pattern string) {
	for _, rule := range rules {
		m, err := Compile(rule.Pattern)
		if err != nil {
			logging.Warn("skipping unparseable rule pattern", "pattern", rule.Pattern, "error", err)
			continue
		}
		if m.Match(subject) {
			return rule.Value, rule.Pattern
		}
	}
	return fallback, ""
}
