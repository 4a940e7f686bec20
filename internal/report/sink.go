// Package report delivers deployment reports to the status surface chosen at
// startup: a GitHub check run, Cloud Logging, or the job log.
package report

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
	"github.com/reillywatson/firebase-deploy/internal/github"
)

// Sink receives each report as it is produced.
type Sink interface {
	Emit(ctx context.Context, r deploy.Report) error
}

// LogSink writes reports to the job log.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(_ context.Context, r deploy.Report) error {
	event := s.log.Info()
	if r.Conclusion != deploy.ConclusionSuccess {
		event = s.log.Error()
	}
	event.
		Str("conclusion", string(r.Conclusion)).
		Str("details_url", r.DetailsURL).
		Str("summary", r.Output.Summary).
		Msg(r.Output.Title)
	return nil
}

// CheckRunName is the name of the check run created for pull requests.
const CheckRunName = "Deploy Preview"

// CheckRunSink reports into a check run created when the sink is built.
type CheckRunSink struct {
	client github.GitHubClientInterface
	repo   github.Repo
	id     int64
}

// NewCheckRunSink creates an in-progress check run on headSHA.
func NewCheckRunSink(ctx context.Context, client github.GitHubClientInterface, repo github.Repo, headSHA string) (*CheckRunSink, error) {
	id, err := client.CreateCheckRun(ctx, repo, CheckRunName, headSHA)
	if err != nil {
		return nil, deploy.Wrap(deploy.KindReporting, "create check run", err)
	}
	return &CheckRunSink{client: client, repo: repo, id: id}, nil
}

func (s *CheckRunSink) Emit(ctx context.Context, r deploy.Report) error {
	err := s.client.CompleteCheckRun(ctx, s.repo, s.id, CheckRunName, github.CheckRunResult{
		DetailsURL: r.DetailsURL,
		Conclusion: checkConclusion(r.Conclusion),
		Title:      r.Output.Title,
		Summary:    r.Output.Summary,
	})
	if err != nil {
		return deploy.Wrap(deploy.KindReporting, "update check run", err)
	}
	return nil
}

// checkConclusion maps to the conclusions the checks API accepts.
func checkConclusion(c deploy.Conclusion) string {
	if c == deploy.ConclusionNotStarted {
		return string(deploy.ConclusionFailure)
	}
	return string(c)
}

// MultiSink emits to every sink in order and joins their errors.
type MultiSink []Sink

func (m MultiSink) Emit(ctx context.Context, r deploy.Report) error {
	var errs []error
	for _, s := range m {
		if err := s.Emit(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
