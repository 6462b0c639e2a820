package poller

import (
	"context"
	"fmt"

	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/pkg/conv"
	"github.com/sandevgo/rtbot/pkg/log"
)

const previewLen = 50

type Reposter interface {
	Repost(ctx context.Context, userID, itemID string) error
}

type Recorder interface {
	Record(id string, outcome core.Outcome)
}

// ExecResult splits the admitted items by what happened to them.
type ExecResult struct {
	Acted   []string
	Failed  []string
	Pending []string
}

// Executor reposts admitted items in order until the cap is reached.
type Executor struct {
	reposter Reposter
	recorder Recorder
	userID   string
	limit    int
	dryRun   bool
}

func NewExecutor(reposter Reposter, recorder Recorder, userID string, limit int, dryRun bool) *Executor {
	return &Executor{
		reposter: reposter,
		recorder: recorder,
		userID:   userID,
		limit:    limit,
		dryRun:   dryRun,
	}
}

func (e *Executor) Execute(ctx context.Context, items []core.Item) ExecResult {
	logger := log.FromCtx(ctx)
	var res ExecResult

	for i, item := range items {
		if len(res.Acted) >= e.limit {
			for _, rest := range items[i:] {
				res.Pending = append(res.Pending, rest.ID)
			}
			logger.Info().Int("limit", e.limit).Int("pending", len(res.Pending)).Msg("repost cap reached")
			break
		}

		text := conv.OneLine(item.Text, previewLen)

		if e.dryRun {
			logger.Info().Str("id", item.ID).Str("text", text).Msg("[DRY RUN] would repost")
		} else {
			if err := e.reposter.Repost(ctx, e.userID, item.ID); err != nil {
				logger.Error().
					Err(fmt.Errorf("%w: %w", core.ErrAction, err)).
					Str("id", item.ID).
					Msg("repost failed")
				res.Failed = append(res.Failed, item.ID)
				continue
			}
			logger.Info().Str("id", item.ID).Str("text", text).Msg("reposted")
		}

		res.Acted = append(res.Acted, item.ID)
		e.recorder.Record(item.ID, core.OutcomeActed)
	}

	return res
}
