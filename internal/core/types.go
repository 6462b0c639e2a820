package core

import (
	"fmt"
	"time"
)

const (
	BotName      = "rtbot"
	BotUserAgent = "rtbot/0.1"
	BotVersion   = "0.1.0"
)

// ReferenceKind tells whether a post is original or points at another post.
type ReferenceKind string

const (
	RefNone    ReferenceKind = "none"
	RefRetweet ReferenceKind = "retweet"
	RefReply   ReferenceKind = "reply"
	RefQuote   ReferenceKind = "quote"
)

// Item is one fetched post. Providers build it once from their wire format;
// nothing downstream sees raw responses.
type Item struct {
	ID        string
	Text      string
	AuthorID  string
	CreatedAt *time.Time // nil when the provider did not report it
	Reference ReferenceKind
}

func (i Item) IsOriginal() bool {
	return i.Reference == RefNone || i.Reference == ""
}

type User struct {
	ID       string
	Username string
	Name     string
}

type Outcome string

const (
	OutcomeActed            Outcome = "acted"
	OutcomeSkippedDuplicate Outcome = "skipped_duplicate"
	OutcomeSkippedFiltered  Outcome = "skipped_filtered"
	OutcomeSkippedOwnAuthor Outcome = "skipped_own_author"
	OutcomeNoMatch          Outcome = "no_match"
)

var outcomes = []Outcome{
	OutcomeActed,
	OutcomeSkippedDuplicate,
	OutcomeSkippedFiltered,
	OutcomeSkippedOwnAuthor,
	OutcomeNoMatch,
}

// Outcomes lists every outcome in a stable order.
func Outcomes() []Outcome {
	return append([]Outcome(nil), outcomes...)
}

func ParseOutcome(s string) (Outcome, error) {
	for _, o := range outcomes {
		if string(o) == s {
			return o, nil
		}
	}
	return "", fmt.Errorf("unknown outcome %q", s)
}

type LedgerEntry struct {
	ItemID     string    `json:"item_id"`
	Outcome    Outcome   `json:"outcome"`
	RecordedAt time.Time `json:"recorded_at"`
}

type SourceKind string

const (
	SourceSearch   SourceKind = "search"
	SourceTimeline SourceKind = "timeline"
	SourceNitter   SourceKind = "nitter"
)
