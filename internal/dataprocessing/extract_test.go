package dataprocessing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "spicongress/internal/errors"
)

func TestExtractStateScore(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantName  string
		wantScore string
		wantErr   bool
	}{
		{name: "no space before paren", input: "California(SPI score: 85.50)", wantName: "California", wantScore: "85.50"},
		{name: "space before paren", input: "New York (SPI score: 80.25)", wantName: "New York", wantScore: "80.25"},
		{name: "surrounding whitespace", input: "  Rhode Island   (SPI score: 79.03)", wantName: "Rhode Island", wantScore: "79.03"},
		{name: "trailing text ignored", input: "Texas (SPI score: 70.10) est.", wantName: "Texas", wantScore: "70.10"},
		{name: "missing score", input: "Ohio (SPI score: )", wantErr: true},
		{name: "integer score", input: "Ohio (SPI score: 70)", wantErr: true},
		{name: "no parentheses", input: "Ohio SPI score: 70.10", wantErr: true},
		{name: "leading text before name is kept", input: "x Ohio(SPI score: 70.10)", wantName: "x Ohio", wantScore: "70.10"},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractStateScore(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrParse))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			assert.Equal(t, tt.wantScore, got.Score.StringFixed(2))
		})
	}
}

func TestExtractStateScoreValue(t *testing.T) {
	got, err := ExtractStateScore("California(SPI score: 85.50)")
	require.NoError(t, err)

	f, _ := got.Score.Float64()
	assert.Equal(t, 85.5, f)
	assert.Equal(t, "85.5", got.Score.String())
}

func TestParseStateScores(t *testing.T) {
	table := NewTable("state_and_score")
	table.Rows = [][]string{
		{"California(SPI score: 85.50)"},
		{"Texas (SPI score: 70.10)"},
	}

	scores, err := ParseStateScores(table, "state_and_score")
	require.NoError(t, err)
	assert.Equal(t, []string{"California", "Texas"}, Names(scores))

	t.Run("aborts on first malformed row", func(t *testing.T) {
		table.Rows = append(table.Rows, []string{"Ohio"}, []string{"also bad"})

		_, err := ParseStateScores(table, "state_and_score")
		require.Error(t, err)

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.ErrTypeParsing, appErr.Type)
		assert.Equal(t, 3, appErr.Context["row"])
		assert.Equal(t, "Ohio", appErr.Context["text"])
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := ParseStateScores(table, "composite")
		assert.True(t, errors.Is(err, apperrors.ErrValidation))
	})
}
