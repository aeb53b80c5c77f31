package dataprocessing

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "spicongress/internal/errors"
)

// stateScorePattern is anchored at the start only; text after the closing
// parenthesis is ignored.
var stateScorePattern = regexp.MustCompile(`^(.*)\(SPI score: (\d+\.\d+)\)`)

// StateScore is one row of the social progress source
type StateScore struct {
	Name  string
	Score decimal.Decimal
}

// ExtractStateScore splits "Name (SPI score: 12.34)" into its name and score
func ExtractStateScore(text string) (StateScore, error) {
	m := stateScorePattern.FindStringSubmatch(text)
	if m == nil {
		return StateScore{}, apperrors.NewParseError(text, nil)
	}

	score, err := decimal.NewFromString(m[2])
	if err != nil {
		return StateScore{}, apperrors.NewParseError(text, err)
	}

	return StateScore{
		Name:  strings.TrimSpace(m[1]),
		Score: score,
	}, nil
}

// ParseStateScores extracts a StateScore from column of every row, stopping
// at the first row that does not parse
func ParseStateScores(table *Table, column string) ([]StateScore, error) {
	values, err := table.Column(column)
	if err != nil {
		return nil, apperrors.NewSchemaError("social progress", column)
	}

	scores := make([]StateScore, 0, len(values))
	for i, value := range values {
		score, err := ExtractStateScore(value)
		if err != nil {
			if appErr, ok := err.(*apperrors.AppError); ok {
				appErr.WithContext("row", i+1)
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		scores = append(scores, score)
	}
	return scores, nil
}

// Names returns the names of scores in order
func Names(scores []StateScore) []string {
	names := make([]string, len(scores))
	for i, s := range scores {
		names[i] = s.Name
	}
	return names
}
