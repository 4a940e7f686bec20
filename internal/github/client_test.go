package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/go-github/v39/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGitHubClient(t *testing.T, handler http.Handler) *GitHubClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	gh := github.NewClient(nil)
	baseURL, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	gh.BaseURL = baseURL

	client := NewGitHubClientFrom(gh)
	client.now = func() time.Time { return time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC) }
	return client
}

var testRepo = Repo{Owner: "octo", Name: "site"}

func TestGitHubClient_CreateCheckRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/site/check-runs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Deploy Preview", body["name"])
		assert.Equal(t, "abc1234def", body["head_sha"])
		assert.Equal(t, "in_progress", body["status"])

		fmt.Fprint(w, `{"id": 99}`)
	})

	id, err := newTestGitHubClient(t, mux).CreateCheckRun(context.Background(), testRepo, "Deploy Preview", "abc1234def")
	require.NoError(t, err)
	assert.Equal(t, int64(99), id)
}

func TestGitHubClient_CompleteCheckRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/site/check-runs/99", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "completed", body["status"])
		assert.Equal(t, "success", body["conclusion"])
		assert.Equal(t, "https://demo.web.app/", body["details_url"])
		assert.Equal(t, "2026-10-14T12:00:00Z", body["completed_at"])

		output := body["output"].(map[string]any)
		assert.Equal(t, "Production deploy succeeded", output["title"])
		assert.Equal(t, "[demo.web.app](https://demo.web.app/)", output["summary"])

		fmt.Fprint(w, `{"id": 99}`)
	})

	err := newTestGitHubClient(t, mux).CompleteCheckRun(context.Background(), testRepo, 99, "Deploy Preview", CheckRunResult{
		DetailsURL: "https://demo.web.app/",
		Conclusion: "success",
		Title:      "Production deploy succeeded",
		Summary:    "[demo.web.app](https://demo.web.app/)",
	})
	require.NoError(t, err)
}

func TestGitHubClient_ListCommentsPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/site/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id": 3}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next"`, r.URL.Path))
		fmt.Fprint(w, `[{"id": 1}, {"id": 2}]`)
	})

	comments, err := newTestGitHubClient(t, mux).ListComments(context.Background(), testRepo, 42)
	require.NoError(t, err)
	require.Len(t, comments, 3)
	assert.Equal(t, int64(3), comments[2].GetID())
}

func TestGitHubClient_CreateAndEditComment(t *testing.T) {
	var created, edited string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/site/issues/42/comments", func(w http.ResponseWriter, r *http.Request) {
		var c github.IssueComment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		created = c.GetBody()
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 7}`)
	})
	mux.HandleFunc("/repos/octo/site/issues/comments/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var c github.IssueComment
		require.NoError(t, json.NewDecoder(r.Body).Decode(&c))
		edited = c.GetBody()
		fmt.Fprint(w, `{"id": 7}`)
	})

	client := newTestGitHubClient(t, mux)
	require.NoError(t, client.CreateComment(context.Background(), testRepo, 42, "first"))
	require.NoError(t, client.EditComment(context.Background(), testRepo, 7, "second"))

	assert.Equal(t, "first", created)
	assert.Equal(t, "second", edited)
}

func TestGitHubClient_APIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/site/check-runs", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "Resource not accessible by integration"}`)
	})

	_, err := newTestGitHubClient(t, mux).CreateCheckRun(context.Background(), testRepo, "Deploy Preview", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create check run")
}
