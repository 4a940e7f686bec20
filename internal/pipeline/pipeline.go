// Package pipeline sequences the deploy steps of one run and reports each
// step's outcome as soon as it is known.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/reillywatson/firebase-deploy/internal/config"
	"github.com/reillywatson/firebase-deploy/internal/credentials"
	"github.com/reillywatson/firebase-deploy/internal/deploy"
	"github.com/reillywatson/firebase-deploy/internal/report"
)

// ManifestFile must exist in the entry point before anything is deployed.
const ManifestFile = "firebase.json"

// Actions is the workflow-command surface of the runner.
type Actions interface {
	SetOutput(k, v string)
	Warningf(msg string, args ...any)
	Group(title string)
	EndGroup()
}

// AuditOpener opens an extra sink once credentials exist. The returned close
// function is called when the run ends.
type AuditOpener func(ctx context.Context, projectID, credentialsFile string) (report.Sink, func() error, error)

// RunConfig is the per-run context shared by all steps.
type RunConfig struct {
	Contexts       deploy.ContextSet
	Mode           deploy.Mode
	ChannelID      string
	ProjectID      string
	Target         string
	Expires        string
	ToolVersion    string
	EntryPoint     string
	ServiceAccount string
	PullRequest    *deploy.PullRequest
}

// NewRunConfig validates the requested contexts. Unsupported context tokens
// are returned even when err is non-nil so the caller can warn about them.
func NewRunConfig(cfg *config.Config, pr *deploy.PullRequest) (RunConfig, []string, error) {
	sel, err := deploy.SelectContexts(cfg.Context)
	if err != nil {
		return RunConfig{}, sel.Unsupported, err
	}

	return RunConfig{
		Contexts:       sel.Contexts,
		Mode:           cfg.Mode(),
		ChannelID:      cfg.ChannelID,
		ProjectID:      cfg.ProjectID,
		Target:         cfg.Target,
		Expires:        cfg.Expires,
		ToolVersion:    cfg.FirebaseToolsVersion,
		EntryPoint:     cfg.EntryPoint,
		ServiceAccount: cfg.FirebaseServiceAccount,
		PullRequest:    pr,
	}, sel.Unsupported, nil
}

// Pipeline runs deploy steps strictly in order and stops at the first error.
type Pipeline struct {
	Deployer  deploy.Deployer
	Sink      report.Sink
	Commenter report.Commenter // nil disables PR comments
	Actions   Actions
	Audit     AuditOpener // optional
	Log       zerolog.Logger

	// CredentialsDir is where the credentials file is written (os.TempDir when empty).
	CredentialsDir string
}

type step struct {
	kind deploy.StepKind
	run  func(ctx context.Context, creds deploy.Credentials, rc RunConfig) (*deploy.Report, error)
}

// Run executes the run. A non-nil error means the run aborted; the returned
// Outcome then holds the reports emitted before the abort plus the failure report.
func (p *Pipeline) Run(ctx context.Context, rc RunConfig) (deploy.Outcome, error) {
	var reports []deploy.Report
	sink := p.Sink

	abort := func(err error) (deploy.Outcome, error) {
		failure := deploy.FailureReport(rc.Mode, err)
		p.emit(ctx, sink, failure)
		return deploy.Outcome{Reports: append(reports, failure), Success: false}, err
	}

	p.Actions.Group("Verifying " + ManifestFile + " exists")
	err := checkManifest(rc.EntryPoint)
	p.Actions.EndGroup()
	if err != nil {
		return abort(err)
	}

	p.Actions.Group("Setting up CLI credentials")
	creds, err := credentials.Materialize(rc.ServiceAccount, p.CredentialsDir)
	p.Actions.EndGroup()
	if err != nil {
		return abort(err)
	}
	defer func() {
		if err := creds.Remove(); err != nil {
			p.Log.Warn().Err(err).Msg("Failed to remove credentials file")
		}
	}()

	if p.Audit != nil {
		projectID := rc.ProjectID
		if projectID == "" {
			projectID = creds.ProjectID
		}
		audit, closeAudit, err := p.Audit(ctx, projectID, creds.Path)
		if err != nil {
			p.Actions.Warningf("Cloud Logging disabled: %v", err)
		} else {
			sink = report.MultiSink{sink, audit}
			defer func() {
				if err := closeAudit(); err != nil {
					p.Log.Warn().Err(err).Msg("Failed to close audit sink")
				}
			}()
		}
	}

	for _, s := range p.steps(rc) {
		p.Actions.Group("Deploying " + s.kind.String())
		r, err := s.run(ctx, creds.Credentials(), rc)
		p.Actions.EndGroup()
		if err != nil {
			return abort(err)
		}
		if r == nil {
			continue
		}
		reports = append(reports, *r)
		p.emit(ctx, sink, *r)
	}

	outcome := deploy.Finalize(reports)
	if len(reports) == 0 {
		p.emit(ctx, sink, outcome.Reports[0])
	}
	return outcome, nil
}

// steps returns the applicable steps in execution order: production hosting,
// preview hosting, functions. Functions only deploy in production mode.
func (p *Pipeline) steps(rc RunConfig) []step {
	var steps []step
	if rc.Contexts.Has(deploy.ContextHosting) {
		if rc.Mode == deploy.ModeProduction {
			steps = append(steps, step{kind: deploy.StepProductionHosting, run: p.productionHosting})
		} else {
			steps = append(steps, step{kind: deploy.StepPreviewHosting, run: p.previewHosting})
		}
	}
	if rc.Contexts.Has(deploy.ContextFunctions) {
		if rc.Mode == deploy.ModeProduction {
			steps = append(steps, step{kind: deploy.StepFunctions, run: p.functions})
		} else {
			p.Log.Info().Msg("Skipping functions deploy: functions only deploy to the live channel")
		}
	}
	return steps
}

func (p *Pipeline) productionHosting(ctx context.Context, creds deploy.Credentials, rc RunConfig) (*deploy.Report, error) {
	result := p.Deployer.DeployProduction(ctx, creds, deploy.ProductionParams{
		ProjectID:   rc.ProjectID,
		Target:      rc.Target,
		ToolVersion: rc.ToolVersion,
	})
	r, err := deploy.Interpret(deploy.StepProductionHosting, result, deploy.InterpretParams{ProjectID: rc.ProjectID, Target: rc.Target})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Pipeline) functions(ctx context.Context, creds deploy.Credentials, rc RunConfig) (*deploy.Report, error) {
	result := p.Deployer.DeployFunctions(ctx, creds, deploy.FunctionsParams{
		ProjectID:   rc.ProjectID,
		ToolVersion: rc.ToolVersion,
	})
	r, err := deploy.Interpret(deploy.StepFunctions, result, deploy.InterpretParams{ProjectID: rc.ProjectID, Target: rc.Target})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (p *Pipeline) previewHosting(ctx context.Context, creds deploy.Credentials, rc RunConfig) (*deploy.Report, error) {
	channel, err := deploy.ResolveChannel(rc.ChannelID, rc.PullRequest)
	if errors.Is(err, deploy.ErrConfiguration) {
		// No channel to deploy to; the run ends as not_started.
		p.Actions.Warningf("Skipping preview deploy: %v", err)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if channel.Sanitized {
		p.Actions.Warningf("ChannelId %q contains unsupported characters. Using %q instead.", channel.Requested, channel.ID)
	}

	result := p.Deployer.DeployPreview(ctx, creds, deploy.PreviewParams{
		ProjectID:   rc.ProjectID,
		Expires:     rc.Expires,
		ChannelID:   channel.ID,
		Target:      rc.Target,
		ToolVersion: rc.ToolVersion,
	})
	r, err := deploy.Interpret(deploy.StepPreviewHosting, result, deploy.InterpretParams{ProjectID: rc.ProjectID, Target: rc.Target})
	if err != nil {
		return nil, err
	}

	// Interpret succeeded, so the result is a *Success with at least one URL.
	info, err := deploy.ChannelInfoFrom(result.(*deploy.Success))
	if err != nil {
		return nil, err
	}
	p.Actions.SetOutput("urls", strings.Join(info.URLs, "\n"))
	p.Actions.SetOutput("expire_time", info.ExpireTime)
	p.Actions.SetOutput("details_url", info.URLs[0])

	if p.Commenter != nil && rc.PullRequest != nil {
		p.Actions.Group("Commenting on PR")
		if err := p.Commenter.EmitComment(ctx, info, rc.PullRequest.ShortSHA()); err != nil {
			p.Actions.Warningf("Failed to comment on pull request: %v", err)
		}
		p.Actions.EndGroup()
	}
	return &r, nil
}

// emit delivers r; sink failures never change the run's outcome.
func (p *Pipeline) emit(ctx context.Context, sink report.Sink, r deploy.Report) {
	if err := sink.Emit(ctx, r); err != nil {
		p.Actions.Warningf("Failed to report deploy status: %v", err)
	}
}

func checkManifest(entryPoint string) error {
	path := filepath.Join(entryPoint, ManifestFile)
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return nil
	}
	return deploy.Errorf(deploy.KindConfiguration, "check manifest",
		"%s file not found in %q. If your %s file is not in the root of your repo, edit the entryPoint option of this GitHub action.",
		ManifestFile, entryPoint, ManifestFile)
}
