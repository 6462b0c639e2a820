package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/conv"
	tele "gopkg.in/telebot.v3"
)

// Notifier posts a short run summary to one Telegram chat. It only sends,
// so the bot is created offline and never polls for updates.
type Notifier struct {
	sender *sender
	chat   *tele.Chat
	// quiet suppresses summaries of runs that did nothing
	quiet bool
}

func NewNotifier(cfg *config.TelegramConfig) (*Notifier, error) {
	return newNotifier(cfg, "")
}

func newNotifier(cfg *config.TelegramConfig, apiURL string) (*Notifier, error) {
	b, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   cfg.Token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Notifier{
		sender: newSender(b),
		chat:   &tele.Chat{ID: cfg.ChatID},
		quiet:  true,
	}, nil
}

func (n *Notifier) Notify(ctx context.Context, s core.RunSummary) error {
	if n.quiet && len(s.Acted) == 0 && len(s.Failed) == 0 && s.FlushErr == nil {
		return nil
	}
	return n.sender.sendMarkdown(ctx, n.chat, formatSummary(s), len(s.Failed) == 0 && s.FlushErr == nil)
}

func formatSummary(s core.RunSummary) string {
	var sb strings.Builder

	title := "**" + core.BotName + " run**"
	if s.DryRun {
		title += " (dry run)"
	}
	fmt.Fprintf(&sb, "%s `%s`\n", title, s.RunID)
	fmt.Fprintf(&sb, "source: %s, fetched %d, admitted %d, took %s\n",
		s.Source, s.Fetched, s.Admitted, s.Duration().Round(time.Millisecond))

	if len(s.Acted) > 0 {
		verb := "reposted"
		if s.DryRun {
			verb = "would repost"
		}
		fmt.Fprintf(&sb, "%s: %s\n", verb, idList(s.Acted))
	}
	if len(s.Failed) > 0 {
		fmt.Fprintf(&sb, "**failed**: %s\n", idList(s.Failed))
	}
	if len(s.Pending) > 0 {
		fmt.Fprintf(&sb, "left for next run: %d\n", len(s.Pending))
	}

	if len(s.Rejected) > 0 {
		keys := make([]string, 0, len(s.Rejected))
		for o := range s.Rejected {
			keys = append(keys, string(o))
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s %d", conv.EscapeMarkdown(k), s.Rejected[core.Outcome(k)]))
		}
		fmt.Fprintf(&sb, "rejected: %s\n", strings.Join(parts, ", "))
	}

	if s.FlushErr != nil {
		fmt.Fprintf(&sb, "**ledger not saved**: %s\n", conv.EscapeMarkdown(s.FlushErr.Error()))
	}
	return sb.String()
}

func idList(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = "`" + id + "`"
	}
	return strings.Join(quoted, ", ")
}
