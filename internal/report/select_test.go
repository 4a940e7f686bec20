package report

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reillywatson/firebase-deploy/internal/deploy"
)

func TestSelectSink_NoClientUsesLog(t *testing.T) {
	sink, err := SelectSink(context.Background(), nil, testRepo, "", zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &LogSink{}, sink)
}

func TestSelectSink_CheckRun(t *testing.T) {
	client := &MockGitHubClient{checkID: 7}

	sink, err := SelectSink(context.Background(), client, testRepo, "abc", zerolog.Nop())
	require.NoError(t, err)
	require.IsType(t, &CheckRunSink{}, sink)

	require.NoError(t, sink.Emit(context.Background(), deploy.NotStartedReport))
	require.Len(t, client.updates, 1)
	assert.Equal(t, "failure", client.updates[0].Conclusion)
}

func TestSelectSink_FallsBackToLogWhenCheckRunFails(t *testing.T) {
	client := &MockGitHubClient{createErr: errors.New("forbidden")}

	sink, err := SelectSink(context.Background(), client, testRepo, "abc", zerolog.Nop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, deploy.ErrReporting))
	assert.IsType(t, &LogSink{}, sink)
	assert.NoError(t, sink.Emit(context.Background(), deploy.NotStartedReport))
}

func TestSelectCommenter(t *testing.T) {
	client := &MockGitHubClient{}

	assert.Nil(t, SelectCommenter(nil, false, testRepo, 42, zerolog.Nop()))
	assert.Nil(t, SelectCommenter(client, true, testRepo, 42, zerolog.Nop()))

	commenter := SelectCommenter(client, false, testRepo, 42, zerolog.Nop())
	require.NotNil(t, commenter)
	assert.IsType(t, &PRCommenter{}, commenter)
}
