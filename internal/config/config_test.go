package config

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
)

// clearEnv unsets every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "INPUT_") || strings.HasPrefix(key, "GITHUB_") || key == "RUNNER_DEBUG" {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "hosting", cfg.Context)
	assert.Equal(t, ".", cfg.EntryPoint)
	assert.Equal(t, "latest", cfg.FirebaseToolsVersion)
	assert.Equal(t, "", cfg.ChannelID)
	assert.Equal(t, deploy.ModePreview, cfg.Mode())
	assert.False(t, cfg.DisableComment)
	assert.False(t, cfg.CloudLogging)
	assert.False(t, cfg.GitHub.Debug)
}

func TestLoad_FromInputs(t *testing.T) {
	clearEnv(t)
	t.Setenv("INPUT_PROJECTID", "demo")
	t.Setenv("INPUT_CONTEXT", "hosting|functions")
	t.Setenv("INPUT_CHANNELID", "live")
	t.Setenv("INPUT_EXPIRES", "30d")
	t.Setenv("INPUT_ENTRYPOINT", "./web")
	t.Setenv("INPUT_TARGET", "blog")
	t.Setenv("INPUT_FIREBASETOOLSVERSION", "13.0.0")
	t.Setenv("INPUT_FIREBASESERVICEACCOUNT", `{"type":"service_account"}`)
	t.Setenv("INPUT_REPOTOKEN", "input-token")
	t.Setenv("INPUT_DISABLECOMMENT", "true")
	t.Setenv("INPUT_CLOUDLOGGING", "true")
	t.Setenv("GITHUB_REPOSITORY", "octo/site")
	t.Setenv("GITHUB_EVENT_NAME", "pull_request")
	t.Setenv("GITHUB_EVENT_PATH", "/tmp/event.json")
	t.Setenv("GITHUB_SHA", "abc")
	t.Setenv("RUNNER_DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.ProjectID)
	assert.Equal(t, "hosting|functions", cfg.Context)
	assert.Equal(t, deploy.ModeProduction, cfg.Mode())
	assert.Equal(t, "30d", cfg.Expires)
	assert.Equal(t, "./web", cfg.EntryPoint)
	assert.Equal(t, "blog", cfg.Target)
	assert.Equal(t, "13.0.0", cfg.FirebaseToolsVersion)
	assert.Equal(t, "input-token", cfg.RepoToken)
	assert.True(t, cfg.DisableComment)
	assert.True(t, cfg.CloudLogging)
	assert.Equal(t, "octo/site", cfg.GitHub.Repository)
	assert.Equal(t, "pull_request", cfg.GitHub.EventName)
	assert.Equal(t, "/tmp/event.json", cfg.GitHub.EventPath)
	assert.Equal(t, "abc", cfg.GitHub.SHA)
	assert.True(t, cfg.GitHub.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_GitHubTokenWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("INPUT_REPOTOKEN", "input-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.RepoToken)
}

func TestLoad_RepoTokenInputWithoutGitHubToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("INPUT_REPOTOKEN", "input-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "input-token", cfg.RepoToken)
	assert.Empty(t, cfg.GitHub.Token)
}

func TestLoad_GitHubTokenOnly(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "env-token")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.RepoToken)
}

func TestValidate_MissingServiceAccount(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, deploy.ErrConfiguration))
}
