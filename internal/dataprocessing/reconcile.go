package dataprocessing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
)

// Match is a candidate accepted by a Matcher together with its similarity
type Match struct {
	Candidate string
	Score     float64
}

// Matcher picks the best counterpart of query among candidates.
// Implementations are pure and return a NoMatchError when nothing qualifies.
type Matcher interface {
	Match(query string, candidates []string) (Match, error)
}

// NewMatcher builds the matcher selected by cfg.Strategy
func NewMatcher(cfg config.MatchingConfig) (Matcher, error) {
	switch cfg.Strategy {
	case config.MatchStrategyRatio, "":
		return NewRatioMatcher(cfg.Cutoff, cfg.MaxCandidates), nil
	case config.MatchStrategyExact:
		return ExactMatcher{}, nil
	case config.MatchStrategyNormalized:
		return NormalizedMatcher{Inner: NewRatioMatcher(cfg.Cutoff, cfg.MaxCandidates)}, nil
	default:
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown matching strategy %q", cfg.Strategy), nil)
	}
}

// RatioMatcher ranks candidates by SequenceMatcher ratio over code points.
// A candidate qualifies when its real quick ratio, quick ratio and ratio all
// reach Cutoff. Qualifying candidates are ordered by ratio, then by candidate
// text, both descending, and the best of the top N is returned.
type RatioMatcher struct {
	Cutoff float64
	N      int
}

// NewRatioMatcher returns a RatioMatcher, falling back to 0.6 and 3 for
// out-of-range arguments
func NewRatioMatcher(cutoff float64, n int) *RatioMatcher {
	if cutoff <= 0 || cutoff > 1 {
		cutoff = config.DefaultMatchCutoff
	}
	if n <= 0 {
		n = config.DefaultMatchCandidates
	}
	return &RatioMatcher{Cutoff: cutoff, N: n}
}

// CloseMatches returns up to N qualifying candidates, best first
func (m *RatioMatcher) CloseMatches(query string, candidates []string) []Match {
	sm := difflib.NewMatcher(nil, splitRunes(query))

	var matches []Match
	for _, candidate := range candidates {
		sm.SetSeq1(splitRunes(candidate))
		if sm.RealQuickRatio() >= m.Cutoff && sm.QuickRatio() >= m.Cutoff {
			if ratio := sm.Ratio(); ratio >= m.Cutoff {
				matches = append(matches, Match{Candidate: candidate, Score: ratio})
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Candidate > matches[j].Candidate
	})

	if len(matches) > m.N {
		matches = matches[:m.N]
	}
	return matches
}

// Match implements Matcher
func (m *RatioMatcher) Match(query string, candidates []string) (Match, error) {
	matches := m.CloseMatches(query, candidates)
	if len(matches) == 0 {
		return Match{}, apperrors.NewNoMatchError(query, len(candidates))
	}
	return matches[0], nil
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// ExactMatcher accepts only a candidate identical to the query
type ExactMatcher struct{}

// Match implements Matcher
func (ExactMatcher) Match(query string, candidates []string) (Match, error) {
	for _, candidate := range candidates {
		if candidate == query {
			return Match{Candidate: candidate, Score: 1}, nil
		}
	}
	return Match{}, apperrors.NewNoMatchError(query, len(candidates))
}

// NormalizedMatcher compares NFKC-normalized, case-folded, space-collapsed
// forms and returns the candidate's original spelling
type NormalizedMatcher struct {
	Inner Matcher
}

// Match implements Matcher
func (m NormalizedMatcher) Match(query string, candidates []string) (Match, error) {
	inner := m.Inner
	if inner == nil {
		inner = ExactMatcher{}
	}

	original := make(map[string]string, len(candidates))
	normalized := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		key := normalizeName(candidate)
		if _, seen := original[key]; !seen {
			original[key] = candidate
		}
		normalized = append(normalized, key)
	}

	match, err := inner.Match(normalizeName(query), normalized)
	if err != nil {
		if apperrors.TypeOf(err) == apperrors.ErrTypeNoMatch {
			return Match{}, apperrors.NewNoMatchError(query, len(candidates))
		}
		return Match{}, err
	}
	match.Candidate = original[match.Candidate]
	return match, nil
}

func normalizeName(s string) string {
	folded := cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(folded), " ")
}

// ReconcileStates rewrites each metadata row's name to its counterpart among
// the score names. Matching runs once per row against every score name.
func ReconcileStates(metas *StateMetas, scores []StateScore, matcher Matcher) (*StateMetas, error) {
	candidates := Names(scores)

	out := metas.clone()
	for i := range out.Records {
		meta := &out.Records[i]
		match, err := matcher.Match(meta.Name, candidates)
		if err != nil {
			if appErr, ok := err.(*apperrors.AppError); ok {
				appErr.WithContext("row", i+1)
			}
			return nil, fmt.Errorf("reconcile %q: %w", meta.Name, err)
		}
		meta.Name = match.Candidate
		meta.Fields[out.nameIndex] = match.Candidate
	}
	return out, nil
}
