package core

import "time"

// RunSummary describes one completed fetch-filter-act cycle.
type RunSummary struct {
	RunID      string
	Source     SourceKind
	DryRun     bool
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	Admitted   int
	Acted      []string
	Failed     []string
	Pending    []string // admitted but left for a later run because of the cap
	Rejected   map[Outcome]int
	FlushErr   error
}

func (s RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
