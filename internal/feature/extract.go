// Package feature extracts tracked feature records from issue titles and
// derives per-project statistics from them.
//
// A feature code is a short alphabetic prefix followed by four digits
// (e.g. "ERC0042"), matched case-insensitively anywhere in an issue
// title. Codes are the natural key within a project but are not
// guaranteed unique across issues, so the canonical extraction result is
// an ordered list retaining every occurrence; Index derives a by-code map
// under an explicit duplicate policy.
package feature

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/pkg/models"
)

// DuplicatePolicy selects how Index treats multiple features sharing a
// code.
type DuplicatePolicy string

const (
	// LastWins keeps the last occurrence, mirroring overwrite-on-store.
	LastWins DuplicatePolicy = "last-wins"
	// FirstWins keeps the first occurrence.
	FirstWins DuplicatePolicy = "first-wins"
)

// ParsePolicy converts a configuration string into a DuplicatePolicy.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case LastWins, FirstWins:
		return DuplicatePolicy(s), nil
	case "":
		return LastWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// Extractor scans issue titles for feature codes with a fixed prefix.
type Extractor struct {
	prefix string
	re     *regexp.Regexp
}

// NewExtractor builds an Extractor for the given feature-code prefix.
// The prefix is escaped before being embedded in the matching engine, so
// the contract holds even for prefixes containing metacharacters.
func NewExtractor(prefix string) (*Extractor, error) {
	if prefix == "" {
		return nil, fmt.Errorf("feature prefix must not be empty")
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(prefix) + `\d{4}`)
	if err != nil {
		return nil, fmt.Errorf("failed to compile feature pattern for prefix %q: %w", prefix, err)
	}
	return &Extractor{prefix: prefix, re: re}, nil
}

// Extract returns one FeatureRecord per issue whose title contains a
// feature code, in input order, retaining duplicates. Issues without a
// matching title are skipped; Extract never fails.
func (e *Extractor) Extract(issues []models.Issue) []models.FeatureRecord {
	features := make([]models.FeatureRecord, 0, len(issues))
	for _, issue := range issues {
		code := e.re.FindString(issue.Title)
		if code == "" {
			continue
		}

		// Strip every occurrence of the code pattern, not just the
		// first, so titles like "ERC0001 ERC0001 fix" come out clean.
		title := strings.TrimSpace(e.re.ReplaceAllString(issue.Title, ""))

		features = append(features, models.FeatureRecord{
			Code:        strings.ToUpper(code),
			Title:       title,
			Status:      issue.State,
			IssueNumber: issue.Number,
			URL:         issue.HTMLURL,
			CreatedAt:   issue.CreatedAt,
			UpdatedAt:   issue.UpdatedAt,
			Assignee:    issue.Assignee,
		})
	}
	return features
}

// Prefix returns the prefix the Extractor was built with.
func (e *Extractor) Prefix() string {
	return e.prefix
}

// Index derives a by-code map from an ordered feature list. Duplicate
// codes are resolved by the policy; each collision is logged because it
// usually means two issues claim the same unit of work.
func Index(features []models.FeatureRecord, policy DuplicatePolicy) map[string]models.FeatureRecord {
	byCode := make(map[string]models.FeatureRecord, len(features))
	for _, f := range features {
		prev, exists := byCode[f.Code]
		if exists {
			logging.Warn("duplicate feature code",
				"code", f.Code,
				"existing_issue", prev.IssueNumber,
				"incoming_issue", f.IssueNumber,
				"policy", string(policy))
			if policy == FirstWins {
				continue
			}
		}
		byCode[f.Code] = f
	}
	return byCode
}
