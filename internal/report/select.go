package report

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/reillywatson/firebase-deploy/internal/github"
)

// SelectSink returns a check-run sink when a client is available and the job
// log sink otherwise. When the check run cannot be created it still returns
// the log sink, together with the error so the caller can warn.
func SelectSink(ctx context.Context, client github.GitHubClientInterface, repo github.Repo, headSHA string, log zerolog.Logger) (Sink, error) {
	if client == nil {
		return NewLogSink(log), nil
	}
	sink, err := NewCheckRunSink(ctx, client, repo, headSHA)
	if err != nil {
		return NewLogSink(log), err
	}
	return sink, nil
}

// SelectCommenter returns nil when there is no client or comments are disabled.
func SelectCommenter(client github.GitHubClientInterface, disabled bool, repo github.Repo, number int, log zerolog.Logger) Commenter {
	if client == nil || disabled {
		return nil
	}
	return NewPRCommenter(client, repo, number, log)
}
