// Package collector runs a best-effort collection pass: it discovers
// repositories, derives feature records and statistics per project, and
// assembles the dashboard document. Individual failures degrade single
// projects instead of aborting the run; only a run that collects nothing
// at all is a failure.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/teamboard/teamboard/internal/config"
	"github.com/teamboard/teamboard/internal/feature"
	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/internal/match"
	"github.com/teamboard/teamboard/pkg/models"
)

// maxRecentActivity caps the recent-activity feed.
const maxRecentActivity = 20

// GitHubService is the slice of the GitHub client the collector needs.
type GitHubService interface {
	ListRepositories(ctx context.Context, owner string) ([]models.Repository, error)
	ListIssues(ctx context.Context, owner, repo string) ([]models.Issue, error)
}

// Collector assembles the dashboard document from repository metadata.
// Collaborators are injected; there is no ambient state.
type Collector struct {
	github GitHubService
	cfg    *config.Config
	now    func() time.Time
}

// New returns a Collector using the given GitHub service and config.
func New(github GitHubService, cfg *config.Config) *Collector {
	return &Collector{
		github: github,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Run executes one collection pass. The returned document is always
// well-formed; the returned error is non-nil only for a catastrophic run
// that collected nothing, in which case the document is the minimal
// fallback with its Error field populated.
func (c *Collector) Run(ctx context.Context) (*models.Dashboard, error) {
	doc := &models.Dashboard{
		LastUpdate:     c.now().UTC(),
		Projects:       []models.ProjectEntry{},
		RecentActivity: []models.ActivityEntry{},
	}

	repos, discoverErr := c.discover(ctx)
	if len(repos) == 0 && discoverErr != nil {
		doc.Summary = &models.Summary{}
		doc.Error = fmt.Sprintf("collection failed: %v", discoverErr)
		return doc, fmt.Errorf("collection failed: %w", discoverErr)
	}

	var activity []models.ActivityEntry
	for _, repo := range repos {
		entry, repoActivity := c.collectProject(ctx, repo)
		doc.Projects = append(doc.Projects, entry)
		activity = append(activity, repoActivity...)
	}

	doc.RecentActivity = capActivity(activity)
	doc.Summary = feature.Summarize(doc.Projects)

	logging.Info("collection complete",
		"projects", doc.Summary.Projects,
		"features", doc.Summary.TotalFeatures,
		"progress_pct", doc.Summary.ProgressPct)
	return doc, nil
}

// discover lists repositories for every configured owner and keeps those
// matching the configured wildcard patterns. Owner-level failures are
// logged and skipped; the last failure is reported so a run that found
// nothing can distinguish "no matches" from "API unreachable".
func (c *Collector) discover(ctx context.Context) ([]models.Repository, error) {
	var (
		matched []models.Repository
		lastErr error
	)

	for _, owner := range c.cfg.Collect.Owners {
		repos, err := c.github.ListRepositories(ctx, owner)
		if err != nil {
			logging.Error("failed to list repositories, skipping owner",
				"owner", owner, "error", err)
			lastErr = err
			// Partial pages collected before the failure still count.
		}

		for _, repo := range repos {
			if c.includeRepo(repo.Name) {
				matched = append(matched, repo)
			}
		}
		logging.Info("discovered repositories",
			"owner", owner, "total", len(repos), "matched", len(matched))
	}

	return matched, lastErr
}

// includeRepo applies the configured repository patterns. An empty
// pattern list includes everything.
func (c *Collector) includeRepo(name string) bool {
	if len(c.cfg.Collect.RepoPatterns) == 0 {
		return true
	}
	for _, pattern := range c.cfg.Collect.RepoPatterns {
		m, err := match.Compile(pattern)
		if err != nil {
			logging.Warn("skipping unparseable repo pattern", "pattern", pattern, "error", err)
			continue
		}
		if m.Match(name) {
			return true
		}
	}
	return false
}

// collectProject builds one dashboard entry. Any failure while fetching
// or processing the repository produces a degraded entry carrying the
// error and zero-valued stats, so the dashboard shows the project as
// present-but-broken instead of missing.
func (c *Collector) collectProject(ctx context.Context, repo models.Repository) (models.ProjectEntry, []models.ActivityEntry) {
	prefix, pattern := match.ResolveRule(repo.Name, c.cfg.Rules.Prefix, c.cfg.Rules.DefaultPrefix)
	color := match.Resolve(repo.Name, c.cfg.Rules.Color, c.cfg.Rules.DefaultColor)

	entry := models.ProjectEntry{
		Config: models.ProjectConfig{
			Prefix:  prefix,
			Color:   color,
			Pattern: pattern,
		},
		Info:     repo,
		Features: []models.FeatureRecord{},
	}

	issues, err := c.github.ListIssues(ctx, repo.Owner, repo.Name)
	if err != nil {
		logging.Error("failed to fetch issues, degrading project",
			"repository", repo.FullName(), "error", err)
		entry.Error = err.Error()
		return entry, nil
	}

	// The issues endpoint returns pull requests too; features and
	// activity both come from real issues only.
	issues = withoutPullRequests(issues)

	extractor, err := feature.NewExtractor(prefix)
	if err != nil {
		logging.Error("failed to build feature extractor, degrading project",
			"repository", repo.FullName(), "prefix", prefix, "error", err)
		entry.Error = err.Error()
		return entry, nil
	}

	entry.Features = extractor.Extract(issues)
	entry.Stats = feature.Aggregate(entry.Features)

	// The canonical feature list keeps every occurrence; deriving the
	// by-code index here surfaces duplicate codes in the log under the
	// configured policy.
	if policy, perr := feature.ParsePolicy(c.cfg.Collect.DuplicatePolicy); perr == nil {
		feature.Index(entry.Features, policy)
	}

	logging.Debug("collected project",
		"repository", repo.FullName(),
		"issues", len(issues),
		"features", entry.Stats.Total)
	return entry, activityFor(repo, issues)
}

func withoutPullRequests(issues []models.Issue) []models.Issue {
	result := issues[:0:0]
	for _, issue := range issues {
		if !issue.IsPullRequest {
			result = append(result, issue)
		}
	}
	return result
}

func activityFor(repo models.Repository, issues []models.Issue) []models.ActivityEntry {
	activity := make([]models.ActivityEntry, 0, len(issues))
	for _, issue := range issues {
		activity = append(activity, models.ActivityEntry{
			Repo:        repo.FullName(),
			IssueNumber: issue.Number,
			Title:       issue.Title,
			State:       issue.State,
			UpdatedAt:   issue.UpdatedAt,
			URL:         issue.HTMLURL,
		})
	}
	return activity
}

// capActivity sorts most-recent-first and truncates to the feed cap.
func capActivity(activity []models.ActivityEntry) []models.ActivityEntry {
	sort.SliceStable(activity, func(i, j int) bool {
		return activity[i].UpdatedAt.After(activity[j].UpdatedAt)
	})
	if len(activity) > maxRecentActivity {
		activity = activity[:maxRecentActivity]
	}
	if activity == nil {
		activity = []models.ActivityEntry{}
	}
	return activity
}

// WriteDocument writes the dashboard JSON to path, creating the parent
// directory if absent.
func WriteDocument(doc *models.Dashboard, path string) error {
	content, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write dashboard: %w", err)
	}
	return nil
}

// Fallback builds the minimal valid document written when a run fails
// before collecting anything, so downstream consumers always find a
// well-formed file.
func Fallback(err error) *models.Dashboard {
	return &models.Dashboard{
		LastUpdate:     time.Now().UTC(),
		Projects:       []models.ProjectEntry{},
		RecentActivity: []models.ActivityEntry{},
		Summary:        &models.Summary{},
		Error:          err.Error(),
	}
}
