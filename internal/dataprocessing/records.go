package dataprocessing

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"spicongress/internal/config"
	apperrors "spicongress/internal/errors"
)

var validate = validator.New()

// StateMeta is one row of the state metadata source
type StateMeta struct {
	Name string `validate:"required"`
	Code string `validate:"required"`
	// Fields holds the whole source row in StateMetas.Columns order.
	Fields []string
}

// StateMetas is the state metadata source with its column layout
type StateMetas struct {
	Columns   []string
	Records   []StateMeta
	nameIndex int
}

// NewStateMetas reads typed state rows from the metadata table
func NewStateMetas(table *Table, cols config.ColumnsConfig) (*StateMetas, error) {
	if err := table.Require("state metadata", cols.StateName, cols.StateCode); err != nil {
		return nil, err
	}

	nameIdx := table.ColumnIndex(cols.StateName)
	codeIdx := table.ColumnIndex(cols.StateCode)

	metas := &StateMetas{
		Columns:   append([]string(nil), table.Columns...),
		Records:   make([]StateMeta, 0, table.Len()),
		nameIndex: nameIdx,
	}
	for i, row := range table.Rows {
		meta := StateMeta{
			Name:   row[nameIdx],
			Code:   row[codeIdx],
			Fields: append([]string(nil), row...),
		}
		if err := validate.Struct(meta); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("state metadata row %d", i+1), err)
		}
		metas.Records = append(metas.Records, meta)
	}
	return metas, nil
}

func (m *StateMetas) clone() *StateMetas {
	out := &StateMetas{
		Columns:   m.Columns,
		Records:   make([]StateMeta, len(m.Records)),
		nameIndex: m.nameIndex,
	}
	for i, rec := range m.Records {
		rec.Fields = append([]string(nil), rec.Fields...)
		out.Records[i] = rec
	}
	return out
}

// Names returns the metadata names in row order
func (m *StateMetas) Names() []string {
	names := make([]string, len(m.Records))
	for i, rec := range m.Records {
		names[i] = rec.Name
	}
	return names
}

// StateRecord is a metadata row joined with its score
type StateRecord struct {
	Meta  StateMeta
	Score StateScore
}

// States is the inner join of metadata and scores. Columns are the metadata
// columns followed by the score column.
type States struct {
	Columns []string
	Records []StateRecord
	// codeColumn names the join key used by JoinCongress.
	codeColumn string
}

// row lays out r in Columns order
func (s *States) row(r StateRecord) []string {
	out := make([]string, 0, len(r.Meta.Fields)+1)
	out = append(out, r.Meta.Fields...)
	return append(out, formatIndex(r.Score.Score))
}

// formatIndex writes a score the way a float column is written: whole
// numbers keep one decimal ("85.0"), others their shortest form ("85.5")
func formatIndex(d decimal.Decimal) string {
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(1)
	}
	return d.String()
}

// Party is a legislator's party code
type Party string

const (
	PartyRepublican  Party = "R"
	PartyDemocrat    Party = "D"
	PartyIndependent Party = "I"
)

// Known reports whether p is one of R, D, I
func (p Party) Known() bool {
	switch p {
	case PartyRepublican, PartyDemocrat, PartyIndependent:
		return true
	}
	return false
}

// ChamberRecord is one legislator row from either chamber
type ChamberRecord struct {
	State  string
	Senate bool
	Score  float64
	Party  Party
	// Fields holds the row in Chamber.Columns order, state and senate cells
	// included.
	Fields []string
}

// HasScore reports whether the progressiveness score is present
func (r ChamberRecord) HasScore() bool {
	return !math.IsNaN(r.Score)
}

// Chamber is a set of legislator rows sharing a column layout
type Chamber struct {
	Columns []string
	Records []ChamberRecord
	// stateColumn names the state code column used as the join key.
	stateColumn string
}

// Len returns the number of legislators
func (c *Chamber) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// CongressRecord is a legislator left-joined with their state. State is nil
// when no state carries the legislator's code.
type CongressRecord struct {
	Chamber ChamberRecord
	State   *StateRecord
}

// Congress is the legislator-to-state join
type Congress struct {
	chamber *Chamber
	states  *States
	Records []CongressRecord
}

// Len returns the number of legislator rows
func (c *Congress) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Unmatched returns the legislators whose state code found no state
func (c *Congress) Unmatched() []CongressRecord {
	var out []CongressRecord
	for _, rec := range c.Records {
		if rec.State == nil {
			out = append(out, rec)
		}
	}
	return out
}
