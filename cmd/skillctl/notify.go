package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cerebratechai/skillctl/pkg/gitutil"
	"github.com/cerebratechai/skillctl/pkg/notify"
	"github.com/cerebratechai/skillctl/pkg/presenter"
)

var notifyCmd = withTracing(&cobra.Command{
	Use:   "notify",
	Short: "Announce the latest release on Discord and Slack",
	Long: `Post the latest tag, skill count and last commit to the Discord and Slack webhooks
configured in notify.* or DISCORD_WEBHOOK_URL and SLACK_WEBHOOK_URL. Channels without a
webhook are skipped and delivery failures are reported without failing the command.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		cfg, err := notifyConfig()
		if err != nil {
			return err
		}
		notifier := notify.New(cfg)

		info := notify.GatherReleaseInfo(ctx, gitutil.NewForDir(rootDir()), rootDir(), notifier.Repository())
		presenter.Section("Release Info")
		presenter.Info(fmt.Sprintf("  Tag: %s", info.Tag))
		presenter.Info(fmt.Sprintf("  Skills: %d", info.SkillCount))
		presenter.Info(fmt.Sprintf("  Repository: %s", info.Repository))

		for _, res := range notifier.NotifyAll(ctx, info) {
			switch {
			case res.Skipped:
				presenter.Warning(fmt.Sprintf("%s webhook not configured, skipping", res.Channel))
			case res.Err != nil:
				presenter.Error(res.Err, fmt.Sprintf("Failed to send %s notification", res.Channel))
			default:
				presenter.Success(fmt.Sprintf("%s notification sent successfully", res.Channel))
			}
		}

		presenter.Success("Release notification process completed")
		return nil
	},
})
