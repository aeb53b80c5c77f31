package dataprocessing

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
	"spicongress/internal/shared/testutil"
)

func newTestJoiner(t *testing.T, strict bool) (*Joiner, *testutil.BufferedSlogHandler) {
	logger, handler := testutil.NewTestLogger(t)
	return NewJoiner(config.Default().Columns, strict, logger), handler
}

func tableOf(columns []string, rows ...[]string) *Table {
	table := NewTable(columns...)
	table.Rows = rows
	return table
}

func TestHouseState(t *testing.T) {
	tests := map[string]string{
		"CA-12": "CA",
		"NY-3":  "NY",
		"AK":    "AK",
		"VA-AL": "VA",
		"a-b-c": "a",
	}
	for district, want := range tests {
		t.Run(district, func(t *testing.T) {
			assert.Equal(t, want, HouseState(district))
		})
	}
}

func TestEndToEndScenario(t *testing.T) {
	j, _ := newTestJoiner(t, false)

	src := Sources{
		SocialProgress: tableOf([]string{"state_and_score"}, []string{"California(SPI score: 85.50)"}),
		StateMetadata:  tableOf([]string{"name", "code"}, []string{"California", "CA"}),
		House:          tableOf([]string{"district", "crucial_vote_score", "party"}, []string{"CA-12", "0.9", "D"}),
		Senate:         tableOf([]string{"state", "crucial_vote_score", "party"}),
	}

	table, err := j.Build(src, NewRatioMatcher(0.6, 3))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	assert.Equal(t, "CA", table.Value(0, "state"))
	assert.Equal(t, "85.5", table.Value(0, config.SocialProgressIndexColumn))
	assert.Equal(t, "0.9", table.Value(0, config.ProgressivenessColumn))
	assert.Equal(t, "False", table.Value(0, config.SenateColumn))
	assert.False(t, table.HasColumn("crucial_vote_score"))
	assert.False(t, table.HasColumn("district"))
}

func TestBuildFromFixtures(t *testing.T) {
	files := testutil.WriteSources(t, t.TempDir())
	j, handler := newTestJoiner(t, true)

	var src Sources
	var err error
	src.SocialProgress, err = ReadTable(files.SocialProgress)
	require.NoError(t, err)
	src.StateMetadata, err = ReadTable(files.StateMetadata)
	require.NoError(t, err)
	src.House, err = ReadTable(files.House)
	require.NoError(t, err)
	src.Senate, err = ReadTable(files.Senate)
	require.NoError(t, err)

	table, err := j.Build(src, NewRatioMatcher(0.6, 3))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"name_x", "party", config.ProgressivenessColumn, "state", "senate", "term",
		"name_y", "code", "region", config.SocialProgressIndexColumn,
	}, table.Columns)
	require.Equal(t, 6, table.Len())

	assert.Equal(t, []string{"Ana Ruiz", "D", "0.9", "CA", "False", "", "California", "CA", "West", "85.5"}, table.Rows[0])
	assert.Equal(t, []string{"Di Fox", "D", "0.8", "CA", "True", "2", "California", "CA", "West", "85.5"}, table.Rows[3])
	assert.Equal(t, "80.25", table.Value(1, config.SocialProgressIndexColumn))
	assert.Equal(t, "I", table.Value(5, "party"))
	testutil.AssertNoErrors(t, handler)
}

func TestJoinStates(t *testing.T) {
	metaTable := tableOf([]string{"name", "code", "region"},
		[]string{"Texas", "TX", "South"},
		[]string{"California", "CA", "West"},
		[]string{"Guam", "GU", "Pacific"},
	)
	scores := []StateScore{
		mustScore(t, "California(SPI score: 85.50)"),
		mustScore(t, "Texas (SPI score: 70.10)"),
		mustScore(t, "United States (SPI score: 75.00)"),
	}

	t.Run("drops unmatched metadata and keeps left order", func(t *testing.T) {
		j, handler := newTestJoiner(t, false)
		metas, err := NewStateMetas(metaTable, j.Columns)
		require.NoError(t, err)

		states, err := j.JoinStates(metas, scores)
		require.NoError(t, err)

		assert.Equal(t, []string{"name", "code", "region", config.SocialProgressIndexColumn}, states.Columns)
		require.Len(t, states.Records, 2)
		assert.Equal(t, "Texas", states.Records[0].Meta.Name)
		assert.Equal(t, "California", states.Records[1].Meta.Name)
		assert.LessOrEqual(t, len(states.Records), min(len(metas.Records), len(scores)))

		testutil.AssertLogContains(t, handler, slog.LevelWarn, "without a score")
		assert.True(t, handler.ContainsAttr("names", "Guam"))
	})

	t.Run("strict coverage fails", func(t *testing.T) {
		j, _ := newTestJoiner(t, true)
		metas, err := NewStateMetas(metaTable, j.Columns)
		require.NoError(t, err)

		_, err = j.JoinStates(metas, scores)
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrJoin))

		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, []string{"Guam"}, appErr.Context["unmatched"])
	})

	t.Run("duplicate score names yield one row each", func(t *testing.T) {
		j, _ := newTestJoiner(t, false)
		metas, err := NewStateMetas(tableOf([]string{"name", "code"}, []string{"Texas", "TX"}), j.Columns)
		require.NoError(t, err)

		states, err := j.JoinStates(metas, append(scores, mustScore(t, "Texas (SPI score: 71.00)")))
		require.NoError(t, err)
		require.Len(t, states.Records, 2)
		assert.Equal(t, "70.1", states.row(states.Records[0])[2])
		assert.Equal(t, "71", states.row(states.Records[1])[2])
	})
}

func TestNewStateMetasValidation(t *testing.T) {
	cols := config.Default().Columns

	_, err := NewStateMetas(tableOf([]string{"name"}), cols)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = NewStateMetas(tableOf([]string{"name", "code"}, []string{"Texas", ""}), cols)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Contains(t, err.Error(), "row 1")
}

func TestChamberRecords(t *testing.T) {
	j, _ := newTestJoiner(t, false)

	house, err := j.HouseRecords(tableOf([]string{"name", "district", "party", "crucial_vote_score"},
		[]string{"Ana", "CA-12", "D", "0.9"},
		[]string{"Bo", "NY-3", "R", ""},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "party", "crucial_vote_score", "state", "senate"}, house.Columns)
	require.Equal(t, 2, house.Len())
	assert.Equal(t, "CA", house.Records[0].State)
	assert.Equal(t, "NY", house.Records[1].State)
	assert.False(t, house.Records[0].Senate)
	assert.Equal(t, PartyDemocrat, house.Records[0].Party)
	assert.True(t, house.Records[0].HasScore())
	assert.False(t, house.Records[1].HasScore())
	assert.Equal(t, []string{"Bo", "R", "", "NY", "False"}, house.Records[1].Fields)

	senate, err := j.SenateRecords(tableOf([]string{"name", "state", "party", "crucial_vote_score", "term"},
		[]string{"Di", "CA", "I", "0.8", "2"},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "state", "party", "crucial_vote_score", "term", "senate"}, senate.Columns)
	assert.True(t, senate.Records[0].Senate)
	assert.True(t, senate.Records[0].Party.Known())

	merged := MergeChambers(house, senate)
	assert.Equal(t, []string{"name", "party", "crucial_vote_score", "state", "senate", "term"}, merged.Columns)
	require.Equal(t, house.Len()+senate.Len(), merged.Len())
	assert.Equal(t, []string{"Di", "I", "0.8", "CA", "True", "2"}, merged.Records[2].Fields)
	assert.Equal(t, "", merged.Records[0].Fields[5])

	assert.Len(t, house.Records[0].Fields, 5, "merge leaves inputs untouched")
}

func TestChamberRecordErrors(t *testing.T) {
	j, _ := newTestJoiner(t, false)

	_, err := j.HouseRecords(tableOf([]string{"name", "party", "crucial_vote_score"}))
	assert.True(t, errors.Is(err, apperrors.ErrValidation))

	_, err = j.SenateRecords(tableOf([]string{"state", "party", "crucial_vote_score"},
		[]string{"CA", "D", "high"},
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrParse))
	assert.Contains(t, err.Error(), "senate row 1")
}

func TestJoinCongressKeepsEveryLegislator(t *testing.T) {
	j, _ := newTestJoiner(t, false)

	house, err := j.HouseRecords(tableOf([]string{"name", "district", "party", "crucial_vote_score"},
		[]string{"Ana", "CA-12", "D", "0.9"},
		[]string{"Pat", "PR-1", "D", "0.5"},
	))
	require.NoError(t, err)
	senate, err := j.SenateRecords(tableOf([]string{"name", "state", "party", "crucial_vote_score"}))
	require.NoError(t, err)

	metas, err := NewStateMetas(tableOf([]string{"name", "code"}, []string{"California", "CA"}), j.Columns)
	require.NoError(t, err)
	states, err := j.JoinStates(metas, []StateScore{mustScore(t, "California(SPI score: 85.50)")})
	require.NoError(t, err)

	chambers := MergeChambers(house, senate)
	congress := j.JoinCongress(chambers, states)

	assert.Equal(t, chambers.Len(), congress.Len())
	require.Len(t, congress.Unmatched(), 1)
	assert.Equal(t, "PR", congress.Unmatched()[0].Chamber.State)

	table := j.Flatten(congress)
	assert.Equal(t, []string{"Pat", "D", "0.5", "PR", "False", "", "", ""}, table.Rows[1])
	assert.Equal(t, "name_y", table.Columns[5])
}

func TestFormatIndex(t *testing.T) {
	tests := map[string]string{
		"85.00":  "85.0",
		"85":     "85.0",
		"85.50":  "85.5",
		"80.25":  "80.25",
		"0":      "0.0",
		"100.10": "100.1",
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, want, formatIndex(decimal.RequireFromString(input)))
		})
	}
}

func TestWholeScoreKeepsDecimalInJoinedTable(t *testing.T) {
	j, _ := newTestJoiner(t, false)

	src := Sources{
		SocialProgress: tableOf([]string{"state_and_score"}, []string{"Texas(SPI score: 85.00)"}),
		StateMetadata:  tableOf([]string{"name", "code"}, []string{"Texas", "TX"}),
		House:          tableOf([]string{"district", "crucial_vote_score", "party"}, []string{"TX-2", "0.4", "R"}),
		Senate:         tableOf([]string{"state", "crucial_vote_score", "party"}),
	}

	table, err := j.Build(src, NewRatioMatcher(0.6, 3))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "85.0", table.Value(0, config.SocialProgressIndexColumn))
}

func TestJoinLogsUnknownPartiesAndStatelessLegislators(t *testing.T) {
	j, handler := newTestJoiner(t, false)

	house, err := j.HouseRecords(tableOf([]string{"name", "district", "party", "crucial_vote_score"},
		[]string{"Ana", "CA-12", "L", "0.9"},
		[]string{"Pat", "PR-1", "D", "0.5"},
		[]string{"Lu", "GU-1", "L", "0.4"},
	))
	require.NoError(t, err)
	assert.False(t, house.Records[0].Party.Known())
	assert.Equal(t, Party("L"), house.Records[0].Party, "unknown codes are kept")

	warnings := handler.Find(slog.LevelWarn, "Unrecognized party code")
	require.Len(t, warnings, 1)
	assert.True(t, warnings[0].Has("party", "L"))
	assert.True(t, warnings[0].Has("rows", int64(2)))

	metas, err := NewStateMetas(tableOf([]string{"name", "code"}, []string{"California", "CA"}), j.Columns)
	require.NoError(t, err)
	states, err := j.JoinStates(metas, []StateScore{mustScore(t, "California(SPI score: 85.50)")})
	require.NoError(t, err)

	congress := j.JoinCongress(house, states)
	require.Len(t, congress.Unmatched(), 2)
	assert.True(t, handler.ContainsAttr("without_state", int64(2)))
	testutil.AssertLogContains(t, handler, slog.LevelDebug, "Legislators without a state")
}

func TestMergeColumns(t *testing.T) {
	tests := []struct {
		name      string
		left      []string
		right     []string
		leftKey   string
		rightKey  string
		want      []string
		wantRight []int
	}{
		{
			name:      "shared key appears once",
			left:      []string{"name", "code", "score"},
			right:     []string{"name", "score"},
			leftKey:   "name",
			rightKey:  "name",
			want:      []string{"name", "code", "score_x", "score_y"},
			wantRight: []int{1},
		},
		{
			name:      "distinct keys are both kept",
			left:      []string{"name", "state"},
			right:     []string{"name", "code"},
			leftKey:   "state",
			rightKey:  "code",
			want:      []string{"name_x", "state", "name_y", "code"},
			wantRight: []int{0, 1},
		},
		{
			name:      "key collision is suffixed",
			left:      []string{"state", "code"},
			right:     []string{"code", "state"},
			leftKey:   "state",
			rightKey:  "code",
			want:      []string{"state_x", "code_x", "code_y", "state_y"},
			wantRight: []int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, right := mergeColumns(tt.left, tt.right, tt.leftKey, tt.rightKey)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantRight, right)
		})
	}
}

func mustScore(t *testing.T, text string) StateScore {
	t.Helper()
	s, err := ExtractStateScore(text)
	require.NoError(t, err)
	return s
}
