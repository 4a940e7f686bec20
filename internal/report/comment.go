package report

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
	"github.com/reillywatson/firebase-deploy/internal/github"
)

// Commenter posts the preview URLs on the pull request.
type Commenter interface {
	EmitComment(ctx context.Context, info deploy.ChannelInfo, shortSHA string) error
}

// PRCommenter creates or updates a single bot comment per set of sites.
type PRCommenter struct {
	client github.GitHubClientInterface
	repo   github.Repo
	number int
	log    zerolog.Logger
}

func NewPRCommenter(client github.GitHubClientInterface, repo github.Repo, number int, log zerolog.Logger) *PRCommenter {
	return &PRCommenter{client: client, repo: repo, number: number, log: log}
}

// EmitComment edits the previous comment for the same sites when one exists.
// Lookup and edit failures fall back to creating a new comment; only a failed
// create is returned.
func (c *PRCommenter) EmitComment(ctx context.Context, info deploy.ChannelInfo, shortSHA string) error {
	sites := make([]string, 0, len(info.Sites))
	for _, s := range info.Sites {
		sites = append(sites, s.Site)
	}
	signature := github.DeploySignature(sites)

	body := github.PreviewComment{
		URLsMarkdown: deploy.URLsMarkdown(info.URLs),
		ExpireTime:   info.ExpireTime,
		ShortSHA:     shortSHA,
		Signature:    signature,
	}.Render()

	comments, err := c.client.ListComments(ctx, c.repo, c.number)
	if err != nil {
		c.log.Warn().Err(err).Msg("Error checking for previous comments")
	}

	if id, ok := github.FindBotComment(comments, signature); ok {
		err := c.client.EditComment(ctx, c.repo, id, body)
		if err == nil {
			return nil
		}
		c.log.Warn().Err(err).Int64("comment_id", id).Msg("Error updating comment, creating a new one")
	}

	if err := c.client.CreateComment(ctx, c.repo, c.number, body); err != nil {
		return deploy.Wrap(deploy.KindReporting, "create comment", err)
	}
	return nil
}
