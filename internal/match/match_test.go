package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamboard/teamboard/pkg/models"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		subject string
		want    bool
	}{
		{
			name:    "Wildcard suffix matches",
			pattern: "ErCore*",
			subject: "ErCore-UI",
			want:    true,
		},
		{
			name:    "Case-insensitive match",
			pattern: "ErCore*",
			subject: "ercore",
			want:    true,
		},
		{
			name:    "Anchored at the start",
			pattern: "ErCore*",
			subject: "MyErCore",
			want:    false,
		},
		{
			name:    "Incomplete literal does not match",
			pattern: "ErCore*",
			subject: "ErCor",
			want:    false,
		},
		{
			name:    "Anchored at the end",
			pattern: "*-service",
			subject: "billing-service-v2",
			want:    false,
		},
		{
			name:    "Wildcard prefix matches",
			pattern: "*-service",
			subject: "billing-service",
			want:    true,
		},
		{
			name:    "Interior wildcard",
			pattern: "er*ui",
			subject: "ErCore-UI",
			want:    true,
		},
		{
			name:    "Catch-all matches everything",
			pattern: "*",
			subject: "anything at all",
			want:    true,
		},
		{
			name:    "Catch-all matches the empty string",
			pattern: "*",
			subject: "",
			want:    true,
		},
		{
			name:    "No wildcard is exact match",
			pattern: "ErCore",
			subject: "ErCore",
			want:    true,
		},
		{
			name:    "No wildcard rejects superstring",
			pattern: "ErCore",
			subject: "ErCore-UI",
			want:    false,
		},
		{
			name:    "Regex metacharacters are literal",
			pattern: "repo.name+x*",
			subject: "repo.name+x-extra",
			want:    true,
		},
		{
			name:    "Escaped dot does not match any character",
			pattern: "repo.name",
			subject: "repoXname",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.subject),
				"pattern %q against %q", tt.pattern, tt.subject)
		})
	}
}

func TestMatcherPattern(t *testing.T) {
	m := MustCompile("ErCore*")
	assert.Equal(t, "ErCore*", m.Pattern())
}

func TestResolve(t *testing.T) {
	rules := []models.Rule{
		{Pattern: "ErCore*", Value: "ERC"},
		{Pattern: "*-service", Value: "SVC"},
		{Pattern: "*", Value: "TSK"},
	}

	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{
			name:    "First rule wins",
			subject: "ErCore-UI",
			want:    "ERC",
		},
		{
			name:    "Second rule when first misses",
			subject: "billing-service",
			want:    "SVC",
		},
		{
			name:    "Catch-all picks up the rest",
			subject: "random-repo",
			want:    "TSK",
		},
		{
			name:    "Catch-all even for empty subject",
			subject: "",
			want:    "TSK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.subject, rules, "DEFAULT"))
		})
	}
}

func TestResolveFallback(t *testing.T) {
	rules := []models.Rule{
		{Pattern: "ErCore*", Value: "ERC"},
	}

	// Without a catch-all the fallback value is returned.
	assert.Equal(t, "DEFAULT", Resolve("unrelated", rules, "DEFAULT"))

	// An empty rule list always falls back.
	assert.Equal(t, "DEFAULT", Resolve("anything", nil, "DEFAULT"))
}

func TestResolveOrderMatters(t *testing.T) {
	// A catch-all placed first shadows every later rule. Resolve must
	// not reorder to rescue the caller.
	shadowed := []models.Rule{
		{Pattern: "*", Value: "TSK"},
		{Pattern: "ErCore*", Value: "ERC"},
	}
	assert.Equal(t, "TSK", Resolve("ErCore-UI", shadowed, "DEFAULT"))
}

func TestResolveRule(t *testing.T) {
	rules := []models.Rule{
		{Pattern: "ErCore*", Value: "ERC"},
		{Pattern: "*", Value: "TSK"},
	}

	value, pattern := ResolveRule("ErCore-API", rules, "DEFAULT")
	assert.Equal(t, "ERC", value)
	assert.Equal(t, "ErCore*", pattern)

	value, pattern = ResolveRule("other", rules[:1], "DEFAULT")
	assert.Equal(t, "DEFAULT", value)
	assert.Equal(t, "", pattern)
}
