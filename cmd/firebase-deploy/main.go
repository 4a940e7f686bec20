package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-githubactions"

	"github.com/reillywatson/firebase-deploy/internal/config"
	"github.com/reillywatson/firebase-deploy/internal/deploy"
	"github.com/reillywatson/firebase-deploy/internal/github"
	"github.com/reillywatson/firebase-deploy/internal/pipeline"
	"github.com/reillywatson/firebase-deploy/internal/report"
)

func main() {
	// Local runs can keep inputs in a .env file
	_ = godotenv.Load()

	action := githubactions.New()

	cfg, err := config.Load()
	if err != nil {
		action.Fatalf("%v", err)
	}
	log := newLogger(cfg.GitHub.Debug)

	if err := cfg.Validate(); err != nil {
		action.Fatalf("%v", err)
	}

	event, err := github.LoadEvent(cfg.GitHub.EventName, cfg.GitHub.EventPath, cfg.GitHub.Repository, cfg.GitHub.SHA)
	if err != nil {
		action.Fatalf("%v", deploy.Wrap(deploy.KindConfiguration, "load event", err))
	}

	var pr *deploy.PullRequest
	if event.IsPullRequest() {
		pr = &deploy.PullRequest{
			Number:  event.PullRequest.Number,
			HeadRef: event.PullRequest.HeadRef,
			HeadSHA: event.PullRequest.HeadSHA,
		}
	}

	rc, unsupported, err := pipeline.NewRunConfig(cfg, pr)
	if len(unsupported) > 0 {
		action.Warningf("Ignoring unsupported deploy contexts: %q", unsupported)
	}
	if err != nil {
		action.Fatalf("%v", err)
	}

	ctx := context.Background()

	// Check runs and comments need both a token and a pull request.
	var ghClient github.GitHubClientInterface
	var headSHA string
	var number int
	if cfg.RepoToken != "" && event.IsPullRequest() {
		ghClient = github.NewGitHubClient(cfg.RepoToken)
		headSHA = event.PullRequest.HeadSHA
		number = event.PullRequest.Number
	}

	sink, err := report.SelectSink(ctx, ghClient, event.Repo, headSHA, log)
	if err != nil {
		action.Warningf("Falling back to log reporting: %v", err)
	}

	p := &pipeline.Pipeline{
		Deployer:  deploy.NewFirebaseClient(deploy.ExecRunner{}, cfg.EntryPoint, log),
		Sink:      sink,
		Commenter: report.SelectCommenter(ghClient, cfg.DisableComment, event.Repo, number, log),
		Actions:   action,
		Log:       log,
	}
	if cfg.CloudLogging {
		labels := map[string]string{"repository": event.Repo.String(), "event": event.Name}
		p.Audit = func(ctx context.Context, projectID, credentialsFile string) (report.Sink, func() error, error) {
			sink, err := report.NewCloudLoggingSink(ctx, projectID, credentialsFile, labels)
			if err != nil {
				return nil, nil, err
			}
			return sink, sink.Close, nil
		}
	}

	outcome, err := p.Run(ctx, rc)
	if err != nil {
		action.Fatalf("%v", err)
	}
	if !outcome.Success {
		action.Fatalf("%s", outcome.FailureMessage())
	}
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
