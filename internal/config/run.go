package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/rtbot/internal/core"
)

const (
	MatchRegex     = "regex"
	MatchSubstring = "substring"
)

// RunConfig is the immutable snapshot of the parameters of one cycle.
type RunConfig struct {
	Keywords    string `env:"KEYWORDS,required,notEmpty"`
	MatchMode   string `env:"MATCH_MODE" envDefault:"regex"`
	SearchQuery string `env:"SEARCH_QUERY"`
	Source      string `env:"SOURCE" envDefault:"search"`

	LookbackHours int  `env:"LOOKBACK_HOURS" envDefault:"3"`
	MaxResults    int  `env:"POLL_MAX_RESULTS" envDefault:"10"`
	MaxActions    int  `env:"MAX_RETWEETS_PER_RUN" envDefault:"1"`
	DryRun        bool `env:"DRY_RUN" envDefault:"true"`
}

func NewRunConfig() (*RunConfig, error) {
	c := &RunConfig{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c RunConfig) Validate() error {
	switch c.MatchMode {
	case MatchRegex:
		if _, err := regexp.Compile("(?i)" + c.Pattern()); err != nil {
			return fmt.Errorf("%w: KEYWORDS is not a valid pattern: %w", core.ErrConfiguration, err)
		}
	case MatchSubstring:
		if len(c.Terms()) == 0 {
			return fmt.Errorf("%w: KEYWORDS has no terms", core.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: MATCH_MODE %q is not one of regex, substring", core.ErrConfiguration, c.MatchMode)
	}

	switch c.SourceKind() {
	case core.SourceSearch:
		if _, err := c.Query(); err != nil {
			return err
		}
	case core.SourceTimeline, core.SourceNitter:
	default:
		return fmt.Errorf("%w: SOURCE %q is not one of search, timeline, nitter", core.ErrConfiguration, c.Source)
	}

	if c.LookbackHours <= 0 {
		return fmt.Errorf("%w: LOOKBACK_HOURS must be positive, got %d", core.ErrConfiguration, c.LookbackHours)
	}
	if c.MaxResults < 1 || c.MaxResults > 100 {
		return fmt.Errorf("%w: POLL_MAX_RESULTS must be within 1..100, got %d", core.ErrConfiguration, c.MaxResults)
	}
	if c.MaxActions < 0 {
		return fmt.Errorf("%w: MAX_RETWEETS_PER_RUN must not be negative, got %d", core.ErrConfiguration, c.MaxActions)
	}
	return nil
}

func (c RunConfig) SourceKind() core.SourceKind {
	return core.SourceKind(c.Source)
}

func (c RunConfig) Lookback() time.Duration {
	return time.Duration(c.LookbackHours) * time.Hour
}

// Pattern returns KEYWORDS with search-style " OR " separators turned into
// regex alternation, so "cover OR singing" and "cover|singing" are the same.
func (c RunConfig) Pattern() string {
	return strings.ReplaceAll(strings.TrimSpace(c.Keywords), " OR ", "|")
}

// Terms splits KEYWORDS into alternatives. Regex mode splits on "|" only;
// substring mode also accepts ",".
func (c RunConfig) Terms() []string {
	sep := func(r rune) bool { return r == '|' }
	if c.MatchMode == MatchSubstring {
		sep = func(r rune) bool { return r == '|' || r == ',' }
	}

	var terms []string
	for _, t := range strings.FieldsFunc(c.Pattern(), sep) {
		t = strings.Trim(strings.TrimSpace(t), "()")
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

// Query returns the provider search query, without the retweet exclusion.
// When SEARCH_QUERY is unset it is derived from KEYWORDS, which then has to
// be a plain alternation of literal terms.
func (c RunConfig) Query() (string, error) {
	if q := strings.TrimSpace(c.SearchQuery); q != "" {
		return q, nil
	}

	terms := c.Terms()
	if len(terms) == 0 {
		return "", fmt.Errorf("%w: KEYWORDS has no terms to search for", core.ErrConfiguration)
	}

	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if c.MatchMode == MatchRegex && regexp.QuoteMeta(t) != t {
			return "", fmt.Errorf("%w: SEARCH_QUERY is required when KEYWORDS uses regex syntax (%q)", core.ErrConfiguration, t)
		}
		if strings.ContainsAny(t, " \t") {
			t = `"` + t + `"`
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " OR "), nil
}
