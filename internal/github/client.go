package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"
)

// GitHubClientInterface defines the interface for GitHub operations
type GitHubClientInterface interface {
	CreateCheckRun(ctx context.Context, repo Repo, name, headSHA string) (int64, error)
	CompleteCheckRun(ctx context.Context, repo Repo, checkRunID int64, name string, opts CheckRunResult) error
	ListComments(ctx context.Context, repo Repo, number int) ([]*github.IssueComment, error)
	CreateComment(ctx context.Context, repo Repo, number int, body string) error
	EditComment(ctx context.Context, repo Repo, commentID int64, body string) error
}

// Repo is an owner/name pair.
type Repo struct {
	Owner string
	Name  string
}

func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}

// CheckRunResult is the terminal state written to a check run.
type CheckRunResult struct {
	DetailsURL string
	Conclusion string
	Title      string
	Summary    string
}

type GitHubClient struct {
	client *github.Client
	now    func() time.Time
}

func NewGitHubClient(token string) *GitHubClient {
	ctx := context.Background()
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	return NewGitHubClientFrom(github.NewClient(tc))
}

// NewGitHubClientFrom wraps an existing go-github client.
func NewGitHubClientFrom(client *github.Client) *GitHubClient {
	return &GitHubClient{client: client, now: time.Now}
}

// CreateCheckRun creates an in-progress check run on headSHA and returns its id.
func (c *GitHubClient) CreateCheckRun(ctx context.Context, repo Repo, name, headSHA string) (int64, error) {
	opts := github.CreateCheckRunOptions{
		Name:    name,
		HeadSHA: headSHA,
		Status:  github.String("in_progress"),
	}

	check, _, err := c.client.Checks.CreateCheckRun(ctx, repo.Owner, repo.Name, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to create check run: %w", err)
	}
	return check.GetID(), nil
}

// CompleteCheckRun marks the check run completed with the given result.
func (c *GitHubClient) CompleteCheckRun(ctx context.Context, repo Repo, checkRunID int64, name string, res CheckRunResult) error {
	opts := github.UpdateCheckRunOptions{
		Name:        name,
		Status:      github.String("completed"),
		Conclusion:  github.String(res.Conclusion),
		CompletedAt: &github.Timestamp{Time: c.now()},
		Output: &github.CheckRunOutput{
			Title:   github.String(res.Title),
			Summary: github.String(res.Summary),
		},
	}
	if res.DetailsURL != "" {
		opts.DetailsURL = github.String(res.DetailsURL)
	}

	if _, _, err := c.client.Checks.UpdateCheckRun(ctx, repo.Owner, repo.Name, checkRunID, opts); err != nil {
		return fmt.Errorf("failed to update check run %d: %w", checkRunID, err)
	}
	return nil
}

// ListComments returns every comment on the issue or pull request.
func (c *GitHubClient) ListComments(ctx context.Context, repo Repo, number int) ([]*github.IssueComment, error) {
	var all []*github.IssueComment
	opts := &github.IssueListCommentsOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		comments, resp, err := c.client.Issues.ListComments(ctx, repo.Owner, repo.Name, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list comments on #%d: %w", number, err)
		}

		all = append(all, comments...)

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// CreateComment posts a new comment on the issue or pull request.
func (c *GitHubClient) CreateComment(ctx context.Context, repo Repo, number int, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	if _, _, err := c.client.Issues.CreateComment(ctx, repo.Owner, repo.Name, number, comment); err != nil {
		return fmt.Errorf("failed to create comment on #%d: %w", number, err)
	}
	return nil
}

// EditComment replaces the body of an existing comment.
func (c *GitHubClient) EditComment(ctx context.Context, repo Repo, commentID int64, body string) error {
	comment := &github.IssueComment{Body: github.String(body)}
	if _, _, err := c.client.Issues.EditComment(ctx, repo.Owner, repo.Name, commentID, comment); err != nil {
		return fmt.Errorf("failed to edit comment %d: %w", commentID, err)
	}
	return nil
}
