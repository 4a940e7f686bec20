package deploy

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Deployer runs the three deploy steps. Implementations never return a Go
// error: every failure is reported as a *Failure result.
type Deployer interface {
	DeployProduction(ctx context.Context, creds Credentials, p ProductionParams) Result
	DeployPreview(ctx context.Context, creds Credentials, p PreviewParams) Result
	DeployFunctions(ctx context.Context, creds Credentials, p FunctionsParams) Result
}

// Command describes one external process invocation.
type Command struct {
	Dir  string
	Env  []string
	Name string
	Args []string
}

// CommandRunner interface for testing
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (stdout, stderr []byte, err error)
}

// ExecRunner executes actual system commands
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Command) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

const (
	deployAgent        = "action-hosting-deploy"
	defaultToolVersion = "latest"
)

// FirebaseClient deploys through `npx firebase-tools`.
type FirebaseClient struct {
	runner  CommandRunner
	workDir string
	environ func() []string
	log     zerolog.Logger
}

// NewFirebaseClient creates a client that runs the CLI inside workDir.
func NewFirebaseClient(runner CommandRunner, workDir string, log zerolog.Logger) *FirebaseClient {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &FirebaseClient{
		runner:  runner,
		workDir: workDir,
		environ: os.Environ,
		log:     log,
	}
}

// DeployProduction publishes hosting content to the live channel.
func (c *FirebaseClient) DeployProduction(ctx context.Context, creds Credentials, p ProductionParams) Result {
	only := "hosting"
	if p.Target != "" {
		only += ":" + p.Target
	}
	return c.exec(ctx, creds, p.ProjectID, p.ToolVersion, false, "deploy", "--only", only)
}

// DeployPreview publishes hosting content to a preview channel.
func (c *FirebaseClient) DeployPreview(ctx context.Context, creds Credentials, p PreviewParams) Result {
	args := []string{"hosting:channel:deploy", p.ChannelID}
	if p.Target != "" {
		args = append(args, "--only", p.Target)
	}
	if p.Expires != "" {
		args = append(args, "--expires", p.Expires)
	}
	return c.exec(ctx, creds, p.ProjectID, p.ToolVersion, true, args...)
}

// DeployFunctions deploys Cloud Functions for the project.
func (c *FirebaseClient) DeployFunctions(ctx context.Context, creds Credentials, p FunctionsParams) Result {
	return c.exec(ctx, creds, p.ProjectID, p.ToolVersion, false, "deploy", "--only", "functions")
}

func (c *FirebaseClient) exec(ctx context.Context, creds Credentials, projectID, toolVersion string, withSites bool, args ...string) Result {
	if toolVersion == "" {
		toolVersion = defaultToolVersion
	}

	full := append([]string{"firebase-tools@" + toolVersion}, args...)
	if projectID != "" {
		full = append(full, "--project", projectID)
	}
	full = append(full, "--json")

	cmd := Command{
		Dir:  c.workDir,
		Env:  append(c.environ(), "FIREBASE_DEPLOY_AGENT="+deployAgent, "GOOGLE_APPLICATION_CREDENTIALS="+creds.File),
		Name: "npx",
		Args: full,
	}

	c.log.Debug().Str("dir", cmd.Dir).Strs("args", cmd.Args).Msg("Running deploy tool")
	stdout, stderr, err := c.runner.Run(ctx, cmd)

	result := ParseOutput(stdout, withSites)
	if err == nil {
		return result
	}

	c.log.Debug().Err(err).Bytes("stdout", stdout).Bytes("stderr", stderr).Msg("Deploy tool exited with error")

	// A non-zero exit with a parseable error envelope keeps the tool's message.
	if failure, ok := result.(*Failure); ok && lastJSONObject(stdout) != nil {
		return failure
	}
	msg := fmt.Sprintf("deploy tool failed: %v", err)
	if s := strings.TrimSpace(string(stderr)); s != "" {
		msg += ": " + truncate(s, 500)
	}
	return &Failure{Message: msg}
}
