package deploy

import (
	"fmt"
	"regexp"
)

// PullRequest is the part of the triggering pull request the resolver needs.
type PullRequest struct {
	Number  int
	HeadRef string
	HeadSHA string
}

// ShortSHA is the first 7 characters of the head commit.
func (pr *PullRequest) ShortSHA() string {
	if len(pr.HeadSHA) <= 7 {
		return pr.HeadSHA
	}
	return pr.HeadSHA[:7]
}

// Channel is either the production marker or a named preview channel.
type Channel struct {
	Production bool
	ID         string
	// Sanitized is set when the requested id contained characters the hosting
	// API rejects and was rewritten.
	Sanitized bool
	Requested string
}

const maxBranchChars = 20

var invalidChannelChars = regexp.MustCompile(`[^a-zA-Z0-9_\-.]`)

// ResolveChannel decides the hosting target. "live" selects production, any
// other non-empty value is used as the channel id, and an empty value derives
// the id from pr.
func ResolveChannel(configured string, pr *PullRequest) (Channel, error) {
	if configured == ProductionChannel {
		return Channel{Production: true, ID: ProductionChannel}, nil
	}

	requested := configured
	if requested == "" {
		if pr == nil {
			return Channel{}, Errorf(KindConfiguration, "resolve channel",
				"channelId is empty and the run was not triggered by a pull request")
		}
		requested = channelForPullRequest(pr)
	}

	id := invalidChannelChars.ReplaceAllString(requested, "_")
	return Channel{ID: id, Sanitized: id != requested, Requested: requested}, nil
}

func channelForPullRequest(pr *PullRequest) string {
	branch := pr.HeadRef
	if len(branch) > maxBranchChars {
		branch = branch[:maxBranchChars]
	}
	if branch == "" {
		return fmt.Sprintf("pr%d", pr.Number)
	}
	return fmt.Sprintf("pr%d-%s", pr.Number, branch)
}
