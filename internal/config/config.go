// Package config provides centralized configuration management for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teamboard/teamboard/pkg/models"
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub  GitHubConfig
	Collect CollectConfig
	Rules   RulesConfig
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// CollectConfig holds parameters of a collection run.
type CollectConfig struct {
	// Owners are the GitHub users/orgs whose repositories are scanned
	Owners []string

	// RepoPatterns are wildcard patterns a repository name must match
	// to be included; an empty list includes everything
	RepoPatterns []string

	// PageDelay is the courtesy delay between successful page fetches
	PageDelay time.Duration

	// DuplicatePolicy selects how the by-code feature index treats
	// duplicate codes: "last-wins" or "first-wins"
	DuplicatePolicy string

	// Output is the path the dashboard JSON is written to
	Output string
}

// RulesConfig holds the ordered rule sets used to assign per-repository
// metadata. Rules are evaluated first-match-wins, so specific patterns
// must come before the catch-all.
type RulesConfig struct {
	Prefix        []models.Rule
	Color         []models.Rule
	DefaultPrefix string
	DefaultColor  string
}

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPageDelay       = 100 * time.Millisecond
	DefaultDuplicatePolicy = "last-wins"
	DefaultOutput          = "data/dashboard.json"
	defaultPrefix          = "TSK"
	defaultColor           = "#9aa0a6"
)

// defaultPrefixRules assigns feature-code prefixes by repository name.
var defaultPrefixRules = []models.Rule{
	{Pattern: "ErCore*", Value: "ERC"},
	{Pattern: "*", Value: defaultPrefix},
}

// defaultColorRules assigns dashboard display colors by repository name.
var defaultColorRules = []models.Rule{
	{Pattern: "ErCore*", Value: "#4f8ef7"},
	{Pattern: "*", Value: defaultColor},
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables. The token is accepted under
	// two names; the first non-empty wins.
	v.BindEnv("github.token", "GITHUB_TOKEN", "GH_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("collect.owners", "COLLECT_OWNERS")
	v.BindEnv("collect.repo_patterns", "COLLECT_REPO_PATTERNS")
	v.BindEnv("collect.page_delay_ms", "COLLECT_PAGE_DELAY_MS")
	v.BindEnv("collect.duplicate_policy", "COLLECT_DUPLICATE_POLICY")
	v.BindEnv("collect.output", "COLLECT_OUTPUT")
	v.BindEnv("rules.prefix", "COLLECT_PREFIX_RULES")
	v.BindEnv("rules.color", "COLLECT_COLOR_RULES")

	v.SetDefault("collect.page_delay_ms", int(DefaultPageDelay/time.Millisecond))
	v.SetDefault("collect.duplicate_policy", DefaultDuplicatePolicy)
	v.SetDefault("collect.output", DefaultOutput)

	prefixRules, err := parseRules(v.GetString("rules.prefix"), defaultPrefixRules)
	if err != nil {
		return nil, fmt.Errorf("invalid COLLECT_PREFIX_RULES: %w", err)
	}
	colorRules, err := parseRules(v.GetString("rules.color"), defaultColorRules)
	if err != nil {
		return nil, fmt.Errorf("invalid COLLECT_COLOR_RULES: %w", err)
	}

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Collect: CollectConfig{
			Owners:          splitList(v.GetString("collect.owners")),
			RepoPatterns:    splitList(v.GetString("collect.repo_patterns")),
			PageDelay:       time.Duration(v.GetInt("collect.page_delay_ms")) * time.Millisecond,
			DuplicatePolicy: v.GetString("collect.duplicate_policy"),
			Output:          v.GetString("collect.output"),
		},
		Rules: RulesConfig{
			Prefix:        prefixRules,
			Color:         colorRules,
			DefaultPrefix: defaultPrefix,
			DefaultColor:  defaultColor,
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if len(config.Collect.Owners) == 0 {
		missingVars = append(missingVars, "COLLECT_OWNERS")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	switch config.Collect.DuplicatePolicy {
	case "last-wins", "first-wins":
	default:
		return fmt.Errorf("invalid COLLECT_DUPLICATE_POLICY %q: must be last-wins or first-wins",
			config.Collect.DuplicatePolicy)
	}

	return nil
}

// splitList splits a comma-separated environment value into trimmed,
// non-empty entries.
func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseRules parses an ordered rule list of the form
// "pattern=value,pattern=value". An empty input yields the fallback
// rules. Order is preserved: the first matching rule wins downstream.
func parseRules(value string, fallback []models.Rule) ([]models.Rule, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	var rules []models.Rule
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pattern, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("rule %q is not of the form pattern=value", part)
		}
		pattern = strings.TrimSpace(pattern)
		val = strings.TrimSpace(val)
		if pattern == "" || val == "" {
			return nil, fmt.Errorf("rule %q has an empty pattern or value", part)
		}
		rules = append(rules, models.Rule{Pattern: pattern, Value: val})
	}
	return rules, nil
}
