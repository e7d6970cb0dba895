// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Repository is an immutable snapshot of a GitHub repository's metadata,
// fetched once per collection run. Identity is (Owner, Name).
type Repository struct {
	// Owner is the user or organization that owns the repository
	Owner string `json:"owner"`

	// Name is the repository name without the owner prefix
	Name string `json:"name"`

	// Description is the repository's short description, may be empty
	Description string `json:"description,omitempty"`

	// PushedAt is the timestamp of the most recent push
	PushedAt time.Time `json:"pushed_at"`

	// Stars is the stargazer count at fetch time
	Stars int `json:"stars"`

	// Forks is the fork count at fetch time
	Forks int `json:"forks"`

	// OpenIssues is the open issue count at fetch time
	OpenIssues int `json:"open_issues"`

	// Language is the repository's primary language, may be empty
	Language string `json:"language,omitempty"`
}

// FullName returns the repository in "owner/name" form.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Issue represents a GitHub issue with the fields the dashboard cares about.
// Identity is (owner, repo, Number); owner and repo travel alongside the
// issue in the structures that hold it.
type Issue struct {
	// Number is the issue number in GitHub (e.g., 42)
	Number int `json:"number"`

	// Title is the issue's title or summary
	Title string `json:"title"`

	// State is "open" or "closed"
	State string `json:"state"`

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the issue was last updated
	UpdatedAt time.Time `json:"updated_at"`

	// HTMLURL is the browser-facing URL of the issue
	HTMLURL string `json:"html_url"`

	// Assignee is the login of the assignee, empty when unassigned
	Assignee string `json:"assignee,omitempty"`

	// Labels is a slice of label names attached to the issue
	Labels []string `json:"labels,omitempty"`

	// IsPullRequest reports whether this record is actually a pull
	// request; the GitHub issues API returns both
	IsPullRequest bool `json:"is_pull_request,omitempty"`
}

// Issue states recognized throughout the dashboard. Anything else is
// carried through untouched but counted in no stats bucket.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// FeatureRecord is a tracked unit of work extracted from an issue title
// containing a feature code (a short prefix followed by four digits).
// Code is the natural key within a project but is not guaranteed unique
// across issues.
type FeatureRecord struct {
	// Code is the normalized (uppercase) feature code, e.g. "ERC0001"
	Code string `json:"code"`

	// Title is the issue title with the code token stripped and trimmed
	Title string `json:"title"`

	// Status mirrors the source issue's state
	Status string `json:"status"`

	// IssueNumber is the number of the issue the feature came from
	IssueNumber int `json:"issue_number"`

	// URL is the source issue's browser URL
	URL string `json:"url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Assignee is the source issue's assignee login, empty when unassigned
	Assignee string `json:"assignee,omitempty"`
}

// ProjectStats holds derived per-project counters. It is recomputed on
// every run and never persisted independently of its source features.
// Completed+InProgress may be less than Total when features carry states
// outside the open/closed lifecycle.
type ProjectStats struct {
	Total       int `json:"total"`
	Completed   int `json:"completed"`
	InProgress  int `json:"in_progress"`
	ProgressPct int `json:"progress_pct"`
}

// Rule pairs a wildcard pattern with the value assigned to subjects that
// match it. Rules are evaluated in order, first match wins, so callers
// must list specific patterns before any catch-all "*".
type Rule struct {
	Pattern string `json:"pattern"`
	Value   string `json:"value"`
}

// MemberRecord describes one member's assignment within a project.
type MemberRecord struct {
	// Role is the member's role within the project, e.g. "lead"
	Role string `json:"role,omitempty"`

	// AssignedDate is when the member was assigned, in YYYY-MM-DD form
	AssignedDate string `json:"assigned_date,omitempty"`

	// Tasks is an ordered list of free-form task descriptions
	Tasks []string `json:"tasks,omitempty"`
}

// HistoryEntry is one append-only log line in a project's member history.
type HistoryEntry struct {
	At     time.Time `json:"at"`
	Member string    `json:"member,omitempty"`
	Change string    `json:"change"`
}

// ProjectAssignment aggregates per-member assignments for a project plus
// free-form notes and an append-only change log.
type ProjectAssignment struct {
	// Members maps member id to that member's assignment
	Members map[string]MemberRecord `json:"members,omitempty"`

	// Notes holds free-form project notes
	Notes string `json:"notes,omitempty"`

	// MemberHistory is the append-only log of past membership changes.
	// Merged records always carry a non-nil (possibly empty) history.
	MemberHistory []HistoryEntry `json:"memberHistory"`
}

// ProjectConfig is the per-project metadata assigned by the rule sets.
type ProjectConfig struct {
	// Prefix is the feature-code prefix used to extract features
	Prefix string `json:"prefix"`

	// Color is the display color assigned to the project
	Color string `json:"color"`

	// Pattern is the rule pattern that assigned the prefix, recorded for
	// operator forensics
	Pattern string `json:"pattern,omitempty"`
}

// ProjectEntry is one project in the dashboard document. A degraded entry
// carries an Error message and zero-valued stats instead of being omitted.
type ProjectEntry struct {
	Config   ProjectConfig   `json:"config"`
	Info     Repository      `json:"info"`
	Features []FeatureRecord `json:"features"`
	Stats    ProjectStats    `json:"stats"`
	Error    string          `json:"error,omitempty"`
}

// ActivityEntry is one line of the recent-activity feed.
type ActivityEntry struct {
	Repo        string    `json:"repo"`
	IssueNumber int       `json:"issue_number"`
	Title       string    `json:"title"`
	State       string    `json:"state"`
	UpdatedAt   time.Time `json:"updated_at"`
	URL         string    `json:"url"`
}

// Summary aggregates totals across all collected projects.
type Summary struct {
	Projects      int `json:"projects"`
	TotalFeatures int `json:"total_features"`
	Completed     int `json:"completed"`
	InProgress    int `json:"in_progress"`
	ProgressPct   int `json:"progress_pct"`
}

// Dashboard is the JSON document written at the end of a collection run.
// It is always well-formed: a catastrophic run still produces a document
// with empty projects and a populated Error field.
type Dashboard struct {
	// LastUpdate is the run timestamp in RFC 3339 form
	LastUpdate time.Time `json:"lastUpdate"`

	// Projects is ordered the way repositories were discovered
	Projects []ProjectEntry `json:"projects"`

	// RecentActivity is most-recent-first and capped
	RecentActivity []ActivityEntry `json:"recentActivity"`

	Summary *Summary `json:"summary,omitempty"`

	// Error is set only when the run could not collect anything
	Error string `json:"error,omitempty"`
}
