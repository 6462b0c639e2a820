package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/rtbot/internal/config"
	"github.com/sandevgo/rtbot/internal/core"
	"github.com/sandevgo/rtbot/internal/service/ledger"
	"github.com/sandevgo/rtbot/pkg/log"
)

// Loop runs fetch, filter, act and persist cycles, one at a time.
type Loop struct {
	cfg      config.RunConfig
	provider core.Provider
	source   Source
	matcher  Matcher
	ledger   *ledger.Ledger
	notifier core.Notifier
	now      func() time.Time

	me *core.User
}

func NewLoop(
	cfg config.RunConfig,
	provider core.Provider,
	source Source,
	led *ledger.Ledger,
	notifier core.Notifier,
) (*Loop, error) {
	matcher, err := NewMatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	return &Loop{
		cfg:      cfg,
		provider: provider,
		source:   source,
		matcher:  matcher,
		ledger:   led,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

// WithClock replaces the clock that defines "now" for the recency window.
func (l *Loop) WithClock(now func() time.Time) *Loop {
	l.now = now
	return l
}

// Authenticate resolves the caller's identity once and caches it.
func (l *Loop) Authenticate(ctx context.Context) (core.User, error) {
	if l.me != nil {
		return *l.me, nil
	}
	me, err := l.provider.Me(ctx)
	if err != nil {
		return core.User{}, err
	}
	l.me = &me
	log.FromCtx(ctx).Info().Str("user_id", me.ID).Str("username", me.Username).Msg("authenticated")
	return me, nil
}

// Run executes one cycle. A fetch failure returns an error and leaves the
// ledger store untouched; a flush failure is logged and reported in the
// summary only.
func (l *Loop) Run(ctx context.Context) (core.RunSummary, error) {
	runID := uuid.NewString()
	ctx = log.WithFields(ctx, "run_id", runID)
	logger := log.FromCtx(ctx)

	now := l.now().UTC()
	summary := core.RunSummary{
		RunID:     runID,
		Source:    l.cfg.SourceKind(),
		DryRun:    l.cfg.DryRun,
		StartedAt: now,
		Rejected:  make(map[core.Outcome]int),
	}

	me, err := l.Authenticate(ctx)
	if err != nil {
		return summary, err
	}

	l.ledger.Load(ctx)

	items, err := l.source.Fetch(ctx, me, now)
	if err != nil {
		logger.Error().Err(err).Msg("fetch failed, aborting run")
		return summary, err
	}
	summary.Fetched = len(items)
	logger.Info().
		Str("source", string(summary.Source)).
		Int("fetched", len(items)).
		Bool("dry_run", l.cfg.DryRun).
		Msg("fetched candidates")

	selfID := ""
	if l.cfg.SourceKind() == core.SourceTimeline {
		selfID = me.ID
	}
	pipeline := NewPipeline(l.ledger, selfID, l.cfg.Lookback(), l.matcher, now)

	seen := make(map[string]struct{}, len(items))
	var admitted []core.Item
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			summary.Rejected[core.OutcomeSkippedDuplicate]++
			continue
		}
		seen[item.ID] = struct{}{}

		d := pipeline.Admit(item)
		if d.Admit {
			admitted = append(admitted, item)
			continue
		}

		summary.Rejected[d.Outcome]++
		// an existing entry already says why this id was skipped
		if d.Outcome != core.OutcomeSkippedDuplicate {
			l.ledger.Record(item.ID, d.Outcome)
		}
		logger.Debug().Str("id", item.ID).Str("outcome", string(d.Outcome)).Str("reason", d.Reason).Msg("rejected")
	}
	summary.Admitted = len(admitted)

	exec := NewExecutor(l.provider, l.ledger, me.ID, l.cfg.MaxActions, l.cfg.DryRun)
	res := exec.Execute(ctx, admitted)
	summary.Acted = res.Acted
	summary.Failed = res.Failed
	summary.Pending = res.Pending

	if err := l.ledger.Flush(ctx); err != nil {
		summary.FlushErr = err
		logger.Error().Err(err).Msg("failed to persist ledger, this run's decisions may be lost")
	}

	summary.FinishedAt = l.now().UTC()
	logger.Info().
		Int("acted", len(res.Acted)).
		Int("failed", len(res.Failed)).
		Int("pending", len(res.Pending)).
		Int("ledger_changes", l.ledger.Changes()).
		Dur("took", summary.Duration()).
		Msg("run complete")

	if l.notifier != nil {
		if err := l.notifier.Notify(ctx, summary); err != nil {
			logger.Warn().Err(err).Msg("failed to send run summary")
		}
	}

	return summary, nil
}
