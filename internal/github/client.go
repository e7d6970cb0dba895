// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	gh "github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/teamboard/teamboard/internal/config"
	"github.com/teamboard/teamboard/internal/logging"
	"github.com/teamboard/teamboard/internal/paging"
	"github.com/teamboard/teamboard/pkg/models"
)

// defaultPageSize is the per_page value requested from the listing
// endpoints; a shorter page signals end-of-data.
const defaultPageSize = 100

// Client encapsulates the GitHub API client.
type Client struct {
	client    *gh.Client
	pageSize  int
	pageDelay time.Duration
}

// NewClient creates a new GitHub API client from the given configuration.
// It initializes the client with the appropriate base URL, authenticates
// with the GitHub API, and tests the connection. It returns the configured
// client or an error if initialization fails.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	token := cfg.GitHub.Token
	if token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	// Get domain from config, default to github.com
	domain := cfg.GitHub.Domain
	if domain == "" {
		domain = "github.com"
	}

	// Construct API URL based on domain
	var apiURL string
	if domain == "github.com" {
		apiURL = "https://api.github.com/"
	} else {
		apiURL = fmt.Sprintf("https://%s/api/v3/", domain)
	}

	logging.Info("github configuration",
		"domain", domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(token))

	// Create the oauth2 client
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	client := gh.NewClient(tc)

	// If not using default GitHub.com, set custom API endpoint
	if domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}

		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	// Test the token
	testCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user, _, err := client.Users.Get(testCtx, "")
	if err != nil {
		logging.Error("failed to test github token", "error", err)
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful",
		"username", user.GetLogin())

	return &Client{
		client:    client,
		pageSize:  defaultPageSize,
		pageDelay: cfg.Collect.PageDelay,
	}, nil
}

// ListRepositories retrieves all repositories visible for a user or
// organization, draining the paginated listing endpoint.
func (c *Client) ListRepositories(ctx context.Context, owner string) ([]models.Repository, error) {
	fetcher := newFetcher[*gh.Repository](c)

	raw, err := fetcher.FetchAll(ctx, func(page int) ([]*gh.Repository, error) {
		opts := &gh.RepositoryListOptions{
			Sort: "pushed",
			ListOptions: gh.ListOptions{
				Page:    page,
				PerPage: c.pageSize,
			},
		}
		repos, _, lerr := c.client.Repositories.List(ctx, owner, opts)
		return repos, lerr
	})
	if err != nil {
		// Partial pages are still converted; the caller decides how
		// to degrade.
		return convertRepositories(owner, raw), fmt.Errorf("failed to list repositories for %s: %w", owner, err)
	}

	return convertRepositories(owner, raw), nil
}

// GetRepository fetches the metadata snapshot of a single repository.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (models.Repository, error) {
	repo, _, err := c.client.Repositories.Get(ctx, owner, name)
	if err != nil {
		return models.Repository{}, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}
	return convertRepository(owner, repo), nil
}

// ListIssues retrieves all issues of a repository across both states.
// Pull requests come back too (the issues API returns both); they are
// flagged, not dropped, so callers can filter where it matters.
func (c *Client) ListIssues(ctx context.Context, owner, repo string) ([]models.Issue, error) {
	fetcher := newFetcher[*gh.Issue](c)

	raw, err := fetcher.FetchAll(ctx, func(page int) ([]*gh.Issue, error) {
		opts := &gh.IssueListByRepoOptions{
			State:     "all",
			Sort:      "updated",
			Direction: "desc",
			ListOptions: gh.ListOptions{
				Page:    page,
				PerPage: c.pageSize,
			},
		}
		issues, _, lerr := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
		return issues, lerr
	})
	if err != nil {
		return convertIssues(raw), fmt.Errorf("failed to fetch issues for %s/%s: %w", owner, repo, err)
	}

	return convertIssues(raw), nil
}

// newFetcher builds a paging fetcher wired with the client's timing and
// the API error classification. A plain function because methods cannot
// carry type parameters.
func newFetcher[T any](c *Client) *paging.Fetcher[T] {
	f := paging.NewFetcher[T](c.pageSize)
	f.PageDelay = c.pageDelay
	f.Permanent = IsNotRetryable
	return f
}

// IsNotRetryable reports whether an API error belongs to the
// permission/not-found class. Those never succeed on retry, so pagination
// aborts immediately instead of burning the retry budget.
func IsNotRetryable(err error) bool {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		code := ghErr.Response.StatusCode
		return code == http.StatusForbidden || code == http.StatusNotFound
	}
	return false
}

func convertRepositories(owner string, raw []*gh.Repository) []models.Repository {
	result := make([]models.Repository, 0, len(raw))
	for _, repo := range raw {
		result = append(result, convertRepository(owner, repo))
	}
	return result
}

func convertRepository(owner string, repo *gh.Repository) models.Repository {
	if repo.GetOwner().GetLogin() != "" {
		owner = repo.GetOwner().GetLogin()
	}
	return models.Repository{
		Owner:       owner,
		Name:        repo.GetName(),
		Description: repo.GetDescription(),
		PushedAt:    repo.GetPushedAt().Time,
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		OpenIssues:  repo.GetOpenIssuesCount(),
		Language:    repo.GetLanguage(),
	}
}

func convertIssues(raw []*gh.Issue) []models.Issue {
	result := make([]models.Issue, 0, len(raw))
	for _, issue := range raw {
		labelNames := make([]string, 0, len(issue.Labels))
		for _, label := range issue.Labels {
			labelNames = append(labelNames, label.GetName())
		}

		result = append(result, models.Issue{
			Number:        issue.GetNumber(),
			Title:         issue.GetTitle(),
			State:         issue.GetState(),
			CreatedAt:     issue.GetCreatedAt(),
			UpdatedAt:     issue.GetUpdatedAt(),
			HTMLURL:       issue.GetHTMLURL(),
			Assignee:      issue.GetAssignee().GetLogin(),
			Labels:        labelNames,
			IsPullRequest: issue.PullRequestLinks != nil,
		})
	}
	return result
}
