package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"spicongress/internal/dataprocessing"
	apperrors "spicongress/internal/errors"
)

// DesignSpec names the table columns of the regression
type DesignSpec struct {
	Dependent   string
	Independent string
	Senate      string
	Party       string
}

// Design is a response vector and its design matrix
type Design struct {
	Y     []float64
	X     *mat.Dense
	Names []string
	// PartyLevels are the sorted party codes; the first is the baseline.
	PartyLevels []string
	// Dropped counts rows skipped for a null in any used column.
	Dropped int
}

// BuildDesign builds dependent ~ Intercept + senate + party + independent.
// Senate and party are treatment coded against False and the first sorted
// party; columns are ordered Intercept, senate[T.True], party[T.<level>]…,
// independent.
func BuildDesign(table *dataprocessing.Table, spec DesignSpec) (*Design, error) {
	if err := table.Require("joined table", spec.Dependent, spec.Independent, spec.Senate, spec.Party); err != nil {
		return nil, err
	}

	type obs struct {
		y, x   float64
		senate bool
		party  string
	}

	var rows []obs
	dropped := 0
	for i := 0; i < table.Len(); i++ {
		y, err := table.Float(i, spec.Dependent)
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i+1, spec.Dependent, err)
		}
		x, err := table.Float(i, spec.Independent)
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i+1, spec.Independent, err)
		}
		senateCell := table.Value(i, spec.Senate)
		party := strings.TrimSpace(table.Value(i, spec.Party))

		if math.IsNaN(y) || math.IsNaN(x) || dataprocessing.IsNull(senateCell) || party == "" {
			dropped++
			continue
		}

		senate, err := dataprocessing.ParseBool(senateCell)
		if err != nil {
			return nil, fmt.Errorf("row %d %s: %w", i+1, spec.Senate, err)
		}
		rows = append(rows, obs{y: y, x: x, senate: senate, party: party})
	}

	if len(rows) == 0 {
		return nil, apperrors.NewValidationError("no complete rows to fit", nil)
	}

	levels := uniqueSorted(rows, func(o obs) string { return o.party })

	names := []string{"Intercept", spec.Senate + "[T.True]"}
	for _, level := range levels[1:] {
		names = append(names, fmt.Sprintf("%s[T.%s]", spec.Party, level))
	}
	names = append(names, spec.Independent)

	x := mat.NewDense(len(rows), len(names), nil)
	y := make([]float64, len(rows))
	for i, o := range rows {
		y[i] = o.y
		x.Set(i, 0, 1)
		if o.senate {
			x.Set(i, 1, 1)
		}
		for j, level := range levels[1:] {
			if o.party == level {
				x.Set(i, 2+j, 1)
			}
		}
		x.Set(i, len(names)-1, o.x)
	}

	return &Design{
		Y:           y,
		X:           x,
		Names:       names,
		PartyLevels: levels,
		Dropped:     dropped,
	}, nil
}

func uniqueSorted[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		k := key(item)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Points are the complete (x, y) pairs of one scatter group
type Points struct {
	X []float64
	Y []float64
}

// Len returns the number of points
func (p Points) Len() int {
	return len(p.X)
}

// ScatterPoints collects the rows of table with both columns present, keyed
// by the value of group. An empty group puts every point under "".
func ScatterPoints(table *dataprocessing.Table, xCol, yCol, group string) (map[string]Points, []string, error) {
	if err := table.Require("joined table", xCol, yCol); err != nil {
		return nil, nil, err
	}
	if group != "" {
		if err := table.Require("joined table", group); err != nil {
			return nil, nil, err
		}
	}

	points := make(map[string]Points)
	var order []string
	for i := 0; i < table.Len(); i++ {
		x, err := table.Float(i, xCol)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d %s: %w", i+1, xCol, err)
		}
		y, err := table.Float(i, yCol)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d %s: %w", i+1, yCol, err)
		}
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}

		key := ""
		if group != "" {
			key = strings.TrimSpace(table.Value(i, group))
		}
		p, ok := points[key]
		if !ok {
			order = append(order, key)
		}
		p.X = append(p.X, x)
		p.Y = append(p.Y, y)
		points[key] = p
	}

	sort.Strings(order)
	return points, order, nil
}
