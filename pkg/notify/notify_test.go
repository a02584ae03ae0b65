package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/cerebratechai/skillctl/pkg/backoff"
	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = backoff.Config{Attempts: 3, InitialDelay: 1, MaxDelay: 2, BackoffType: "fixed"}

func TestResolveEnv(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/hook")
	t.Setenv("SLACK_WEBHOOK_URL", "")
	t.Setenv("GITHUB_REPOSITORY", "")

	cfg := Config{SlackWebhookURL: "https://slack.example/hook"}.ResolveEnv()
	assert.Equal(t, "https://discord.example/hook", cfg.DiscordWebhookURL)
	assert.Equal(t, "https://slack.example/hook", cfg.SlackWebhookURL)
	assert.Equal(t, DefaultRepository, cfg.Repository)
}

func TestPayloads(t *testing.T) {
	info := ReleaseInfo{Tag: "v1.4.0", SkillCount: 212, Repository: "acme/skills"}

	discord, err := json.Marshal(DiscordPayload(info))
	require.NoError(t, err)
	assert.JSONEq(t, `{"embeds":[{
		"title":"New Release: v1.4.0",
		"description":"Claude Skills collection has been updated!",
		"color":5814783,
		"fields":[
			{"name":"Total Skills","value":"212","inline":true},
			{"name":"Repository","value":"acme/skills","inline":true}
		],
		"footer":{"text":"Claude Skills Collection"}
	}]}`, string(discord))

	slack, err := json.Marshal(SlackPayload(info))
	require.NoError(t, err)
	assert.JSONEq(t, `{"blocks":[
		{"type":"header","text":{"type":"plain_text","text":"New Release: v1.4.0"}},
		{"type":"section","fields":[
			{"type":"mrkdwn","text":"*Total Skills:*\n212"},
			{"type":"mrkdwn","text":"*Repository:*\nacme/skills"}
		]}
	]}`, string(slack))
}

func TestNotifyAll(t *testing.T) {
	t.Setenv("DISCORD_WEBHOOK_URL", "")
	t.Setenv("SLACK_WEBHOOK_URL", "")

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Contains(t, r.Header.Get("User-Agent"), "skillctl/")
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "New Release: v2.0.0")

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := New(Config{DiscordWebhookURL: server.URL, Retry: fastRetry})
	results := n.NotifyAll(context.Background(), ReleaseInfo{Tag: "v2.0.0", Repository: n.Repository()})

	require.Len(t, results, 2)
	assert.Equal(t, "Discord", results[0].Channel)
	assert.NoError(t, results[0].Err)
	assert.False(t, results[0].Skipped)
	assert.Equal(t, int32(2), calls.Load())

	assert.Equal(t, "Slack", results[1].Channel)
	assert.True(t, results[1].Skipped)
}

func TestNotifyClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer server.Close()

	n := New(Config{SlackWebhookURL: server.URL, DiscordWebhookURL: "", Retry: fastRetry})
	res := n.send(context.Background(), "Slack", server.URL, SlackPayload(ReleaseInfo{}))

	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "webhook returned status 400: invalid_payload")
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&statusError{code: 503}))
	assert.True(t, isRetryable(&statusError{code: 429}))
	assert.False(t, isRetryable(&statusError{code: 404}))
	assert.False(t, isRetryable(context.Canceled))
	assert.True(t, isRetryable(errors.New("connection reset by peer")))
	assert.False(t, isRetryable(nil))
}

func TestGatherReleaseInfo(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"01-foundations/a/SKILL.md", "02-x/b/SKILL.md"} {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# A\n"), 0o644))
	}

	fake := gitutil.NewFakeRunner()
	fake.Errors["describe --tags --abbrev=0"] = errors.New("no names found")
	fake.Outputs["log -1 --pretty=format:%s"] = "feat: add b"

	info := GatherReleaseInfo(context.Background(), gitutil.New(fake), root, "acme/skills")
	assert.Equal(t, ReleaseInfo{Tag: "unknown", SkillCount: 2, CommitMessage: "feat: add b", Repository: "acme/skills"}, info)
}

func TestWebhookSecretStaysOutOfErrors(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL + "/api/webhooks/123/SECRETTOKEN"
	server.Close()

	var logs bytes.Buffer
	logger.SetOutput(&logs)
	defer logger.SetOutput(os.Stderr)

	n := New(Config{DiscordWebhookURL: endpoint, Retry: fastRetry})
	results := n.NotifyAll(context.Background(), ReleaseInfo{Tag: "v2.0.0"})

	require.Error(t, results[0].Err)
	assert.NotContains(t, results[0].Err.Error(), "SECRETTOKEN")
	assert.Contains(t, results[0].Err.Error(), "Post "+server.URL)
	assert.Contains(t, logs.String(), "retrying Discord webhook")
	assert.NotContains(t, logs.String(), "SECRETTOKEN")

	err := redact(errors.New("plain"), endpoint)
	assert.EqualError(t, err, "plain")
}
