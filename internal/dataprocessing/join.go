package dataprocessing

import (
	"fmt"
	"log/slog"
	"strings"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
	// scoreColumn is the score's name in the state join before it is renamed.
	scoreColumn = "score"
)

// Joiner merges the four sources into one row per legislator
type Joiner struct {
	Columns config.ColumnsConfig
	// StrictCoverage turns metadata rows without a score into a JoinError
	// instead of a logged drop.
	StrictCoverage bool

	logger *slog.Logger
}

// NewJoiner creates a Joiner. A nil logger uses slog.Default().
func NewJoiner(cols config.ColumnsConfig, strict bool, logger *slog.Logger) *Joiner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Joiner{
		Columns:        cols,
		StrictCoverage: strict,
		logger:         logger.With("component", "joiner"),
	}
}

// Sources holds the raw source tables of one run
type Sources struct {
	SocialProgress *Table
	StateMetadata  *Table
	House          *Table
	Senate         *Table
}

// Build runs extraction, reconciliation and the three joins, returning the
// flat legislator table
func (j *Joiner) Build(src Sources, matcher Matcher) (*Table, error) {
	scores, err := ParseStateScores(src.SocialProgress, j.Columns.Composite)
	if err != nil {
		return nil, err
	}

	metas, err := NewStateMetas(src.StateMetadata, j.Columns)
	if err != nil {
		return nil, err
	}

	metas, err = ReconcileStates(metas, scores, matcher)
	if err != nil {
		return nil, err
	}

	states, err := j.JoinStates(metas, scores)
	if err != nil {
		return nil, err
	}

	house, err := j.HouseRecords(src.House)
	if err != nil {
		return nil, err
	}

	senate, err := j.SenateRecords(src.Senate)
	if err != nil {
		return nil, err
	}

	return j.Flatten(j.JoinCongress(MergeChambers(house, senate), states)), nil
}

// JoinStates inner-joins metadata to scores on name. Metadata order is kept
// and each metadata row yields one record per score with the same name.
func (j *Joiner) JoinStates(metas *StateMetas, scores []StateScore) (*States, error) {
	byName := make(map[string][]int, len(scores))
	for i, s := range scores {
		byName[s.Name] = append(byName[s.Name], i)
	}

	columns, _ := mergeColumns(metas.Columns, []string{j.Columns.StateName, scoreColumn}, j.Columns.StateName, j.Columns.StateName)
	states := &States{
		Columns:    renameColumn(columns, scoreColumn, config.SocialProgressIndexColumn),
		codeColumn: j.Columns.StateCode,
	}

	var unmatched []string
	used := make(map[int]bool, len(scores))
	for _, meta := range metas.Records {
		idx, ok := byName[meta.Name]
		if !ok {
			unmatched = append(unmatched, meta.Name)
			continue
		}
		for _, i := range idx {
			used[i] = true
			states.Records = append(states.Records, StateRecord{Meta: meta, Score: scores[i]})
		}
	}

	if len(unmatched) > 0 {
		if j.StrictCoverage {
			return nil, apperrors.NewJoinError(
				fmt.Sprintf("%d state metadata rows have no score", len(unmatched)), unmatched)
		}
		j.logger.Warn("Dropped state metadata rows without a score",
			slog.Int("count", len(unmatched)),
			slog.String("names", strings.Join(unmatched, "; ")))
	}
	if extra := len(scores) - len(used); extra > 0 {
		j.logger.Debug("Scores without state metadata", slog.Int("count", extra))
	}

	j.logger.Info("Joined state metadata and scores",
		slog.Int("metadata_rows", len(metas.Records)),
		slog.Int("score_rows", len(scores)),
		slog.Int("joined_rows", len(states.Records)))

	return states, nil
}

// HouseRecords reads the House table. The state is the district prefix
// before the first '-', the district column is dropped and senate is false.
func (j *Joiner) HouseRecords(table *Table) (*Chamber, error) {
	cols := j.Columns
	if err := table.Require("house", cols.District, cols.Party, cols.ChamberScore); err != nil {
		return nil, err
	}

	districtIdx := table.ColumnIndex(cols.District)
	var keep []int
	for i := range table.Columns {
		if i != districtIdx {
			keep = append(keep, i)
		}
	}

	return j.chamber("house", table, keep, false, func(row []string) string {
		return HouseState(row[districtIdx])
	})
}

// SenateRecords reads the Senate table with senate forced true
func (j *Joiner) SenateRecords(table *Table) (*Chamber, error) {
	cols := j.Columns
	if err := table.Require("senate", cols.State, cols.Party, cols.ChamberScore); err != nil {
		return nil, err
	}

	keep := make([]int, len(table.Columns))
	for i := range keep {
		keep[i] = i
	}

	stateIdx := table.ColumnIndex(cols.State)
	return j.chamber("senate", table, keep, true, func(row []string) string {
		return strings.TrimSpace(row[stateIdx])
	})
}

// chamber lays out the kept source columns, then state and senate unless the
// source already has them, in which case they are overwritten in place
func (j *Joiner) chamber(source string, table *Table, keep []int, senate bool, stateOf func([]string) string) (*Chamber, error) {
	cols := j.Columns

	columns := make([]string, 0, len(keep)+2)
	for _, i := range keep {
		columns = append(columns, table.Columns[i])
	}
	stateAt := indexOf(columns, cols.State)
	if stateAt < 0 {
		columns = append(columns, cols.State)
		stateAt = len(columns) - 1
	}
	senateAt := indexOf(columns, config.SenateColumn)
	if senateAt < 0 {
		columns = append(columns, config.SenateColumn)
		senateAt = len(columns) - 1
	}

	partyIdx := table.ColumnIndex(cols.Party)
	scoreIdx := table.ColumnIndex(cols.ChamberScore)

	chamber := &Chamber{
		Columns:     columns,
		Records:     make([]ChamberRecord, 0, table.Len()),
		stateColumn: cols.State,
	}
	unknown := map[Party]int{}
	for i, row := range table.Rows {
		score, err := ParseFloat(row[scoreIdx])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", source, i+1, err)
		}

		fields := make([]string, len(columns))
		for k, src := range keep {
			fields[k] = row[src]
		}
		state := stateOf(row)
		fields[stateAt] = state
		fields[senateAt] = FormatBool(senate)

		party := Party(strings.TrimSpace(row[partyIdx]))
		if !party.Known() {
			unknown[party]++
		}
		chamber.Records = append(chamber.Records, ChamberRecord{
			State:  state,
			Senate: senate,
			Score:  score,
			Party:  party,
			Fields: fields,
		})
	}

	// Other codes still join; the party chart draws them gray
	for party, n := range unknown {
		j.logger.Warn("Unrecognized party code",
			slog.String("source", source),
			slog.String("party", string(party)),
			slog.Int("rows", n))
	}

	j.logger.Debug("Chamber records read", slog.String("source", source), slog.Int("rows", len(chamber.Records)))
	return chamber, nil
}

// HouseState returns the state code of a "STATE-DISTRICT" identifier
func HouseState(district string) string {
	state, _, _ := strings.Cut(strings.TrimSpace(district), "-")
	return state
}

// MergeChambers returns House rows followed by Senate rows. Columns are the
// House columns followed by Senate-only columns; cells a chamber lacks are null.
func MergeChambers(house, senate *Chamber) *Chamber {
	columns := append([]string(nil), house.Columns...)
	for _, col := range senate.Columns {
		if indexOf(columns, col) < 0 {
			columns = append(columns, col)
		}
	}

	merged := &Chamber{
		Columns:     columns,
		Records:     make([]ChamberRecord, 0, house.Len()+senate.Len()),
		stateColumn: house.stateColumn,
	}
	for _, part := range []*Chamber{house, senate} {
		positions := make([]int, len(part.Columns))
		for i, col := range part.Columns {
			positions[i] = indexOf(columns, col)
		}
		for _, rec := range part.Records {
			fields := make([]string, len(columns))
			for i, pos := range positions {
				fields[pos] = rec.Fields[i]
			}
			rec.Fields = fields
			merged.Records = append(merged.Records, rec)
		}
	}
	return merged
}

// JoinCongress left-joins legislators to states on state code. Every
// legislator is kept; one with several matching states yields one record each.
func (j *Joiner) JoinCongress(chamber *Chamber, states *States) *Congress {
	byCode := make(map[string][]int, len(states.Records))
	for i, rec := range states.Records {
		byCode[rec.Meta.Code] = append(byCode[rec.Meta.Code], i)
	}

	congress := &Congress{chamber: chamber, states: states}
	for _, rec := range chamber.Records {
		idx, ok := byCode[rec.State]
		if !ok {
			congress.Records = append(congress.Records, CongressRecord{Chamber: rec})
			continue
		}
		for _, i := range idx {
			congress.Records = append(congress.Records, CongressRecord{Chamber: rec, State: &states.Records[i]})
		}
	}

	missing := congress.Unmatched()
	j.logger.Info("Joined legislators to states",
		slog.Int("legislators", chamber.Len()),
		slog.Int("rows", len(congress.Records)),
		slog.Int("without_state", len(missing)))
	if len(missing) > 0 {
		codes := make([]string, len(missing))
		for i, rec := range missing {
			codes[i] = rec.Chamber.State
		}
		j.logger.Debug("Legislators without a state", slog.String("codes", strings.Join(codes, "; ")))
	}

	return congress
}

// Flatten lays the join out as a table: legislator columns, then state
// columns. Names present on both sides get _x and _y suffixes and the chamber
// score column becomes congressperson_progressiveness_score.
func (j *Joiner) Flatten(c *Congress) *Table {
	leftKey := c.chamber.stateColumn
	rightKey := c.states.codeColumn
	columns, rightKeep := mergeColumns(c.chamber.Columns, c.states.Columns, leftKey, rightKey)

	table := NewTable(renameColumn(columns, j.Columns.ChamberScore, config.ProgressivenessColumn)...)
	table.Rows = make([][]string, 0, len(c.Records))
	for _, rec := range c.Records {
		row := make([]string, 0, len(columns))
		row = append(row, rec.Chamber.Fields...)
		var stateRow []string
		if rec.State != nil {
			stateRow = c.states.row(*rec.State)
		}
		for _, i := range rightKeep {
			if stateRow == nil {
				row = append(row, "")
			} else {
				row = append(row, stateRow[i])
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// mergeColumns names the columns of a join of left and right on
// leftKey == rightKey. A shared key appears once; otherwise both keys are kept
// and every name found on both sides is suffixed. rightKeep lists the right
// column positions present in the result.
func mergeColumns(left, right []string, leftKey, rightKey string) (columns []string, rightKeep []int) {
	sameKey := leftKey == rightKey

	inLeft := make(map[string]bool, len(left))
	for _, col := range left {
		inLeft[col] = true
	}
	inRight := make(map[string]bool, len(right))
	for i, col := range right {
		if sameKey && col == rightKey {
			continue
		}
		inRight[col] = true
		rightKeep = append(rightKeep, i)
	}

	columns = make([]string, 0, len(left)+len(rightKeep))
	for _, col := range left {
		if inRight[col] && !(sameKey && col == leftKey) {
			col += leftSuffix
		}
		columns = append(columns, col)
	}
	for _, i := range rightKeep {
		col := right[i]
		if inLeft[col] {
			col += rightSuffix
		}
		columns = append(columns, col)
	}
	return columns, rightKeep
}

func indexOf(columns []string, name string) int {
	for i, col := range columns {
		if col == name {
			return i
		}
	}
	return -1
}
