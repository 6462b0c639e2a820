package poller

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sandevgo/rtbot/internal/config"
)

// Matcher decides whether free text satisfies the keyword expression.
// Matching is case-insensitive and empty text never matches.
type Matcher interface {
	Match(text string) bool
}

func NewMatcher(cfg config.RunConfig) (Matcher, error) {
	switch cfg.MatchMode {
	case config.MatchSubstring:
		terms := cfg.Terms()
		if len(terms) == 0 {
			return nil, fmt.Errorf("no keyword terms in %q", cfg.Keywords)
		}
		lower := make([]string, len(terms))
		for i, t := range terms {
			lower[i] = strings.ToLower(t)
		}
		return substringMatcher{terms: lower}, nil
	case config.MatchRegex, "":
		re, err := regexp.Compile("(?i)" + cfg.Pattern())
		if err != nil {
			return nil, fmt.Errorf("compile keywords: %w", err)
		}
		return regexMatcher{re: re}, nil
	default:
		return nil, fmt.Errorf("unknown match mode %q", cfg.MatchMode)
	}
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(text string) bool {
	if text == "" {
		return false
	}
	return m.re.MatchString(text)
}

type substringMatcher struct {
	terms []string
}

func (m substringMatcher) Match(text string) bool {
	if text == "" {
		return false
	}
	text = strings.ToLower(text)
	for _, t := range m.terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}
