package github

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v39/github"
)

// Event is the triggering workflow event, reduced to what a deploy run needs.
type Event struct {
	Name        string
	Repo        Repo
	SHA         string
	PullRequest *PullRequest // nil unless the event carries a pull request
}

// PullRequest represents the pull request that triggered the run.
type PullRequest struct {
	Number  int
	HeadRef string
	HeadSHA string
}

// IsPullRequest reports whether the event was triggered by a pull request.
func (e *Event) IsPullRequest() bool {
	return e != nil && e.PullRequest != nil
}

// LoadEvent reads the event payload at path. repository is "owner/name" as in
// GITHUB_REPOSITORY. A missing path yields an event without a pull request.
func LoadEvent(name, path, repository, sha string) (*Event, error) {
	event := &Event{Name: name, SHA: sha}
	if owner, repo, ok := strings.Cut(repository, "/"); ok {
		event.Repo = Repo{Owner: owner, Name: repo}
	}

	if path == "" {
		return event, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event payload: %w", err)
	}

	var payload github.PullRequestEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse event payload: %w", err)
	}

	if payload.Repo != nil && event.Repo.Owner == "" {
		event.Repo = Repo{Owner: payload.Repo.GetOwner().GetLogin(), Name: payload.Repo.GetName()}
	}

	if pr := payload.GetPullRequest(); pr != nil {
		event.PullRequest = &PullRequest{
			Number:  pr.GetNumber(),
			HeadRef: pr.GetHead().GetRef(),
			HeadSHA: pr.GetHead().GetSHA(),
		}
		if event.PullRequest.Number == 0 {
			event.PullRequest.Number = payload.GetNumber()
		}
	}

	return event, nil
}
