package poller

import (
	"time"

	"github.com/sandevgo/rtbot/internal/core"
)

const (
	ReasonDuplicate     = "already_processed"
	ReasonOwnAuthor     = "own_post"
	ReasonMissingTime   = "missing_created_at"
	ReasonStale         = "stale"
	ReasonNotOriginal   = "not_original"
	ReasonKeywordMissed = "keyword_mismatch"
)

// Decision is the pipeline verdict for one item.
type Decision struct {
	Admit   bool
	Outcome core.Outcome // set on reject
	Reason  string
}

func admit() Decision {
	return Decision{Admit: true}
}

func reject(outcome core.Outcome, reason string) Decision {
	return Decision{Outcome: outcome, Reason: reason}
}

type Dedup interface {
	Contains(id string) bool
}

// Pipeline applies the gates in a fixed order and stops at the first one
// that fails.
type Pipeline struct {
	dedup    Dedup
	selfID   string // empty disables the self-authorship gate
	lookback time.Duration
	matcher  Matcher
	now      time.Time
}

func NewPipeline(dedup Dedup, selfID string, lookback time.Duration, matcher Matcher, now time.Time) *Pipeline {
	return &Pipeline{
		dedup:    dedup,
		selfID:   selfID,
		lookback: lookback,
		matcher:  matcher,
		now:      now,
	}
}

func (p *Pipeline) Admit(item core.Item) Decision {
	if p.dedup.Contains(item.ID) {
		return reject(core.OutcomeSkippedDuplicate, ReasonDuplicate)
	}

	if p.selfID != "" && item.AuthorID == p.selfID {
		return reject(core.OutcomeSkippedOwnAuthor, ReasonOwnAuthor)
	}

	// The window start is inclusive.
	if item.CreatedAt == nil {
		return reject(core.OutcomeSkippedFiltered, ReasonMissingTime)
	}
	if item.CreatedAt.Before(p.now.Add(-p.lookback)) {
		return reject(core.OutcomeSkippedFiltered, ReasonStale)
	}

	if !item.IsOriginal() {
		return reject(core.OutcomeSkippedFiltered, ReasonNotOriginal)
	}

	if !p.matcher.Match(item.Text) {
		return reject(core.OutcomeNoMatch, ReasonKeywordMissed)
	}

	return admit()
}
