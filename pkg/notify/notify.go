// Package notify announces catalogue releases to Discord and Slack webhooks.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cerebratechai/skillctl/pkg/backoff"
	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/logger"
	"github.com/cerebratechai/skillctl/pkg/skills"
	"github.com/cerebratechai/skillctl/pkg/version"
	"github.com/pkg/errors"
)

// DefaultRepository is reported when GITHUB_REPOSITORY is unset
const DefaultRepository = "cerebratechai/claude-skills"

// EmbedColor is the Discord embed color
const EmbedColor = 5814783

// Config holds webhook destinations. Empty URLs fall back to the
// DISCORD_WEBHOOK_URL and SLACK_WEBHOOK_URL environment variables.
type Config struct {
	DiscordWebhookURL string         `mapstructure:"discord_webhook_url"`
	SlackWebhookURL   string         `mapstructure:"slack_webhook_url"`
	Repository        string         `mapstructure:"repository"`
	Timeout           time.Duration  `mapstructure:"timeout"`
	Retry             backoff.Config `mapstructure:"retry"`
}

// ResolveEnv fills empty fields from the environment
func (c Config) ResolveEnv() Config {
	if c.DiscordWebhookURL == "" {
		c.DiscordWebhookURL = os.Getenv("DISCORD_WEBHOOK_URL")
	}
	if c.SlackWebhookURL == "" {
		c.SlackWebhookURL = os.Getenv("SLACK_WEBHOOK_URL")
	}
	if c.Repository == "" {
		c.Repository = os.Getenv("GITHUB_REPOSITORY")
	}
	if c.Repository == "" {
		c.Repository = DefaultRepository
	}
	return c
}

// ReleaseInfo describes the release being announced
type ReleaseInfo struct {
	Tag           string
	SkillCount    int
	CommitMessage string
	Repository    string
}

// GatherReleaseInfo reads the latest tag and commit subject from git and counts skill files below root
func GatherReleaseInfo(ctx context.Context, git *gitutil.Client, root, repository string) ReleaseInfo {
	info := ReleaseInfo{Tag: "unknown", Repository: repository}

	if tag, err := git.LatestTag(ctx); err == nil && tag != "" {
		info.Tag = tag
	} else if err != nil {
		logger.G(ctx).WithError(err).Debug("no release tag found")
	}

	if subject, err := git.LastCommitSubject(ctx); err == nil {
		info.CommitMessage = subject
	}

	if paths, err := skills.NewScanner().Find(root); err == nil {
		info.SkillCount = len(paths)
	} else {
		logger.G(ctx).WithError(err).Warn("failed to count skill files")
	}

	return info
}

// DiscordPayload builds the Discord embed payload
func DiscordPayload(info ReleaseInfo) map[string]any {
	return map[string]any{
		"embeds": []map[string]any{{
			"title":       "New Release: " + info.Tag,
			"description": "Claude Skills collection has been updated!",
			"color":       EmbedColor,
			"fields": []map[string]any{
				{"name": "Total Skills", "value": strconv.Itoa(info.SkillCount), "inline": true},
				{"name": "Repository", "value": info.Repository, "inline": true},
			},
			"footer": map[string]any{"text": "Claude Skills Collection"},
		}},
	}
}

// SlackPayload builds the Slack blocks payload
func SlackPayload(info ReleaseInfo) map[string]any {
	return map[string]any{
		"blocks": []map[string]any{
			{
				"type": "header",
				"text": map[string]any{"type": "plain_text", "text": "New Release: " + info.Tag},
			},
			{
				"type": "section",
				"fields": []map[string]any{
					{"type": "mrkdwn", "text": fmt.Sprintf("*Total Skills:*\n%d", info.SkillCount)},
					{"type": "mrkdwn", "text": "*Repository:*\n" + info.Repository},
				},
			},
		},
	}
}

// Result is the outcome of a single webhook delivery
type Result struct {
	Channel string
	Skipped bool
	Err     error
}

// Notifier posts release payloads to webhooks
type Notifier struct {
	cfg    Config
	client *http.Client
}

// New creates a notifier. Environment fallbacks are applied to cfg.
func New(cfg Config) *Notifier {
	cfg = cfg.ResolveEnv()
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.Attempts == 0 {
		cfg.Retry = backoff.DefaultConfig()
	}
	return &Notifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Repository returns the repository name announced by this notifier
func (n *Notifier) Repository() string {
	return n.cfg.Repository
}

// NotifyAll sends the release to every channel in order: Discord, then Slack
func (n *Notifier) NotifyAll(ctx context.Context, info ReleaseInfo) []Result {
	return []Result{
		n.send(ctx, "Discord", n.cfg.DiscordWebhookURL, DiscordPayload(info)),
		n.send(ctx, "Slack", n.cfg.SlackWebhookURL, SlackPayload(info)),
	}
}

func (n *Notifier) send(ctx context.Context, channel, endpoint string, payload map[string]any) Result {
	res := Result{Channel: channel}
	if endpoint == "" {
		res.Skipped = true
		return res
	}

	body, err := json.Marshal(payload)
	if err != nil {
		res.Err = errors.Wrap(err, "failed to encode payload")
		return res
	}

	res.Err = backoff.Do(ctx, n.cfg.Retry, channel+" webhook", isRetryable, func() error {
		return n.post(ctx, endpoint, body)
	})
	return res
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("webhook returned status %d", e.code)
	}
	return fmt.Sprintf("webhook returned status %d: %s", e.code, e.body)
}

func (n *Notifier) post(ctx context.Context, endpoint string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(redact(err, endpoint), "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := n.client.Do(req)
	if err != nil {
		return redact(err, endpoint)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &statusError{code: resp.StatusCode, body: string(bytes.TrimSpace(snippet))}
}

// redact drops the webhook path and query, which carry the secret token, from
// errors that quote the request URL
func redact(err error, endpoint string) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	host := "webhook"
	if u, perr := url.Parse(endpoint); perr == nil && u.Host != "" {
		host = u.Scheme + "://" + u.Host
	}
	return errors.Wrapf(urlErr.Err, "%s %s", urlErr.Op, host)
}

// isRetryable retries transport failures, rate limiting and server errors
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}

	// transport failures
	return true
}
